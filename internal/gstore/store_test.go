package gstore_test

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

func newTestStore() (*gstore.Store, *gstore.TransactionManager) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	tm := gstore.NewTransactionManager()
	return gstore.New(tm, log), tm
}

func TestAddNodeVisibleToOwnTransactionBeforeCommit(t *testing.T) {
	s, tm := newTestStore()
	xid := tm.Begin()

	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, nil)
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	if _, err := s.NodeByID(xid, id); err != nil {
		t.Errorf("node should be visible to its own creating transaction: %v", err)
	}

	other := tm.Begin()
	if _, err := s.NodeByID(other, id); err == nil {
		t.Error("uncommitted node should not be visible to a different transaction")
	}

	if err := tm.Commit(xid); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	third := tm.Begin()
	if _, err := s.NodeByID(third, id); err != nil {
		t.Errorf("node should be visible after commit: %v", err)
	}
}

func TestRelationshipAppearsExactlyOnceInEachAdjacencyList(t *testing.T) {
	s, tm := newTestStore()
	xid := tm.Begin()
	label := s.GetCode("Person")
	rel := s.GetCode("knows")

	a, _ := s.AddNode(xid, label, nil)
	b, _ := s.AddNode(xid, label, nil)
	rid, err := s.AddRelationship(xid, a, b, rel, nil)
	if err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	if err := tm.Commit(xid); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reader := tm.Begin()

	var outCount int
	var outIDs []ids.RelID
	_ = s.ForeachOutgoing(reader, a, func(r graph.RelRef) bool {
		outCount++
		outIDs = append(outIDs, r.ID)
		return true
	})
	if outCount != 1 || outIDs[0] != rid {
		t.Fatalf("outgoing list of src: got %d entries %v, want exactly [%d]", outCount, outIDs, rid)
	}

	var inCount int
	_ = s.ForeachIncoming(reader, b, func(r graph.RelRef) bool {
		inCount++
		return true
	})
	if inCount != 1 {
		t.Fatalf("incoming list of dst: got %d entries, want 1", inCount)
	}
}

func TestPropertySetKeyUniqueness(t *testing.T) {
	s, tm := newTestStore()
	xid := tm.Begin()
	label := s.GetCode("Person")

	id, _ := s.AddNode(xid, label, []graph.PropertyInput{
		{Key: "name", Value: tuple.StringCell("Alice")},
		{Key: "age", Value: tuple.IntCell(30)},
	})

	// overwrite "name" rather than duplicating the key.
	if err := s.UpdateNode(xid, id, []graph.PropertyInput{
		{Key: "name", Value: tuple.StringCell("Alicia")},
	}); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	s.CommitDirtyNodes(xid)
	if err := tm.Commit(xid); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reader := tm.Begin()
	desc, err := s.NodeDescription(reader, id)
	if err != nil {
		t.Fatalf("NodeDescription: %v", err)
	}
	if len(desc.Properties) != 2 {
		t.Fatalf("Properties has %d keys, want 2 (no duplicate 'name')", len(desc.Properties))
	}
	got, _ := desc.Properties["name"].String()
	if got != "Alicia" {
		t.Fatalf("name = %q, want %q", got, "Alicia")
	}
}

func TestUpdateNodeInvisibleUntilCommit(t *testing.T) {
	s, tm := newTestStore()
	writer := tm.Begin()
	label := s.GetCode("Person")
	id, _ := s.AddNode(writer, label, []graph.PropertyInput{{Key: "age", Value: tuple.IntCell(1)}})
	if err := tm.Commit(writer); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	updater := tm.Begin()
	if err := s.UpdateNode(updater, id, []graph.PropertyInput{{Key: "age", Value: tuple.IntCell(2)}}); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}

	reader := tm.Begin()
	desc, err := s.NodeDescription(reader, id)
	if err != nil {
		t.Fatalf("NodeDescription: %v", err)
	}
	age, _ := desc.Properties["age"].Int()
	if age != 1 {
		t.Fatalf("reader should see committed age=1 before updater commits, got %d", age)
	}

	ownDesc, err := s.NodeDescription(updater, id)
	if err != nil {
		t.Fatalf("NodeDescription (own): %v", err)
	}
	ownAge, _ := ownDesc.Properties["age"].Int()
	if ownAge != 2 {
		t.Fatalf("updater should see its own dirty age=2, got %d", ownAge)
	}

	s.CommitDirtyNodes(updater)
	if err := tm.Commit(updater); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reader2 := tm.Begin()
	desc2, _ := s.NodeDescription(reader2, id)
	age2, _ := desc2.Properties["age"].Int()
	if age2 != 2 {
		t.Fatalf("age after commit = %d, want 2", age2)
	}
}

func TestDetachNodeThenRemove(t *testing.T) {
	s, tm := newTestStore()
	xid := tm.Begin()
	label := s.GetCode("Person")
	rel := s.GetCode("knows")

	a, _ := s.AddNode(xid, label, nil)
	b, _ := s.AddNode(xid, label, nil)
	_, _ = s.AddRelationship(xid, a, b, rel, nil)
	if err := tm.Commit(xid); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	d := tm.Begin()
	if err := s.DetachNode(d, a); err != nil {
		t.Fatalf("DetachNode: %v", err)
	}
	if err := s.RemoveNode(d, a); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if err := tm.Commit(d); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reader := tm.Begin()
	if _, err := s.NodeByID(reader, a); err == nil {
		t.Error("removed node should not be visible")
	}

	var count int
	_ = s.ForeachIncoming(reader, b, func(r graph.RelRef) bool {
		count++
		return true
	})
	if count != 0 {
		t.Errorf("incoming relationships of b after detach of a = %d, want 0", count)
	}
}
