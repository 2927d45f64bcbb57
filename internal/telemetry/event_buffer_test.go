package telemetry

import (
	"testing"
	"time"
)

func TestEventBufferSinceReturnsOnlyNewer(t *testing.T) {
	eb := NewEventBuffer(10, time.Hour)
	for i := uint64(1); i <= 5; i++ {
		eb.Append(Event{ID: i, Time: time.Now()})
	}

	got := eb.Since(3)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != 4 || got[1].ID != 5 {
		t.Fatalf("got ids %d, %d; want 4, 5", got[0].ID, got[1].ID)
	}
}

func TestEventBufferEvictsBeyondMaxLen(t *testing.T) {
	eb := NewEventBuffer(3, time.Hour)
	for i := uint64(1); i <= 5; i++ {
		eb.Append(Event{ID: i, Time: time.Now()})
	}

	if got := eb.OldestID(); got != 3 {
		t.Fatalf("OldestID = %d, want 3", got)
	}
	if got := eb.Since(0); len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}

func TestEventBufferEvictsByAge(t *testing.T) {
	eb := NewEventBuffer(100, 10*time.Millisecond)
	eb.Append(Event{ID: 1, Time: time.Now()})
	time.Sleep(20 * time.Millisecond)
	eb.Append(Event{ID: 2, Time: time.Now()})

	got := eb.Since(0)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("got %v, want only event 2", got)
	}
}
