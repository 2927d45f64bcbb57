package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(nowhere{})
	hub := NewHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

type nowhere struct{}

func (nowhere) Write(p []byte) (int, error) { return len(p), nil }

func registerTestClient(hub *Hub) *Client {
	c := &Client{hub: hub, send: make(chan []byte, clientSendBuffer), log: hub.log}
	hub.Register(c)
	return c
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	c := registerTestClient(hub)
	waitForCount(t, hub, 1)

	hub.BroadcastEvent("pipeline_finish", json.RawMessage(`{"pipeline":"p0"}`))

	select {
	case msg := <-c.send:
		var evt Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.Type != "pipeline_finish" {
			t.Fatalf("type = %q, want pipeline_finish", evt.Type)
		}
		if evt.ID == 0 {
			t.Fatal("event ID not assigned")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	c := registerTestClient(hub)
	waitForCount(t, hub, 1)

	hub.Unregister(c)
	waitForCount(t, hub, 0)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("expected send channel to be closed, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was never closed")
	}
}

func TestHubReplayEventsSinceLastID(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	hub.BroadcastEvent("pipeline_start", json.RawMessage(`{"pipeline":"p0"}`))
	hub.BroadcastEvent("pipeline_finish", json.RawMessage(`{"pipeline":"p0"}`))
	time.Sleep(50 * time.Millisecond)

	c := registerTestClient(hub)
	waitForCount(t, hub, 1)

	ok := hub.ReplayEvents(c, 0)
	if !ok {
		t.Fatal("ReplayEvents returned false for lastEventID 0")
	}

	seen := 0
	for {
		select {
		case <-c.send:
			seen++
			if seen == 2 {
				return
			}
		case <-time.After(time.Second):
			t.Fatalf("only received %d of 2 replayed events", seen)
		}
	}
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if hub.ClientCount() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("ClientCount never reached %d, stuck at %d", want, hub.ClientCount())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
