package pgstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/dbpool"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/pgstore"
)

// newTestStore connects to TEST_DATABASE_URL and applies migrations,
// matching persistor/internal/store's "skip if TEST_DATABASE_URL unset"
// convention: these tests exercise a real Postgres instance and are not
// meant to run without one configured.
func newTestStore(t *testing.T) *pgstore.Store {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}
	t.Cleanup(pool.Close)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := pgstore.RunMigrations(ctx, pool, log); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	s, err := pgstore.New(ctx, pool, log)
	if err != nil {
		t.Fatalf("pgstore.New: %v", err)
	}
	return s
}

func TestAddNodeVisibleWithinOwnTransaction(t *testing.T) {
	s := newTestStore(t)

	xid := s.Begin()
	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, []graph.PropertyInput{})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	ref, err := s.NodeByID(xid, id)
	if err != nil {
		t.Fatalf("NodeByID: %v", err)
	}
	if ref.Label != label {
		t.Errorf("Label = %d, want %d", ref.Label, label)
	}

	if err := s.Commit(xid); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestAddRelationshipAndTraverse(t *testing.T) {
	s := newTestStore(t)

	xid := s.Begin()
	person := s.GetCode("Person")
	knows := s.GetCode("knows")

	a, err := s.AddNode(xid, person, nil)
	if err != nil {
		t.Fatalf("AddNode a: %v", err)
	}
	b, err := s.AddNode(xid, person, nil)
	if err != nil {
		t.Fatalf("AddNode b: %v", err)
	}
	if _, err := s.AddRelationship(xid, a, b, knows, nil); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}

	var seen int
	err = s.ForeachOutgoing(xid, a, func(r graph.RelRef) bool {
		seen++
		if r.Dst != b {
			t.Errorf("Dst = %d, want %d", r.Dst, b)
		}
		return true
	})
	if err != nil {
		t.Fatalf("ForeachOutgoing: %v", err)
	}
	if seen != 1 {
		t.Errorf("saw %d outgoing relationships, want 1", seen)
	}

	if err := s.Commit(xid); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestAbortDiscardsNode(t *testing.T) {
	s := newTestStore(t)

	xid := s.Begin()
	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, nil)
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := s.Abort(xid); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	xid2 := s.Begin()
	defer s.Abort(xid2) //nolint:errcheck
	if _, err := s.NodeByID(xid2, id); err == nil {
		t.Fatal("expected aborted node to be invisible to a later transaction")
	}
}

func TestRemoveNodeRequiresExisting(t *testing.T) {
	s := newTestStore(t)

	xid := s.Begin()
	defer s.Abort(xid) //nolint:errcheck

	if err := s.RemoveNode(xid, 999999999); err == nil {
		t.Fatal("expected an error removing a nonexistent node")
	}
}
