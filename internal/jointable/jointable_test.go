package jointable_test

import (
	"sync"
	"testing"

	"github.com/dbis-ilm/poseidon-go/internal/jointable"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

func TestMaterializeRHSConcurrent(t *testing.T) {
	tbl := jointable.New()
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tbl.MaterializeRHS(1, tuple.NewTuple().Append(tuple.IntCell(int64(i))))
		}(i)
	}
	wg.Wait()

	if got := len(tbl.RHS(1)); got != n {
		t.Fatalf("RHS(1) has %d tuples, want %d", got, n)
	}
	if got := len(tbl.RHS(2)); got != 0 {
		t.Fatalf("RHS(2) has %d tuples, want 0 (different join id)", got)
	}
}

func TestHashBucketRouting(t *testing.T) {
	tbl := jointable.New()
	keys := []string{"alice", "bob", "carol", "dave", "erin"}
	for _, k := range keys {
		tbl.MaterializeHash(1, jointable.HashKey(k), tuple.NewTuple().Append(tuple.StringCell(k)))
	}

	var total int
	for b := 0; b < tbl.BucketCount(); b++ {
		total += len(tbl.HashBucket(1, uint64(b)))
	}
	if total != len(keys) {
		t.Fatalf("total tuples across buckets = %d, want %d", total, len(keys))
	}

	for _, k := range keys {
		key := jointable.HashKey(k)
		found := false
		for _, tp := range tbl.HashBucket(1, key) {
			s, _ := tp.At(0).String()
			if s == k {
				found = true
			}
		}
		if !found {
			t.Errorf("key %q not found in its own bucket", k)
		}
	}
}

func TestHashKeyStable(t *testing.T) {
	a := jointable.HashKey("same-key")
	b := jointable.HashKey("same-key")
	if a != b {
		t.Fatalf("HashKey not stable across calls: %d != %d", a, b)
	}
}

func TestNewWithBucketsConfiguresBucketCount(t *testing.T) {
	tbl := jointable.NewWithBuckets(4)
	if got := tbl.BucketCount(); got != 4 {
		t.Fatalf("BucketCount() = %d, want 4", got)
	}
	tbl.MaterializeHash(1, 0, tuple.NewTuple().Append(tuple.IntCell(1)))
	tbl.MaterializeHash(1, 4, tuple.NewTuple().Append(tuple.IntCell(2)))
	if got := len(tbl.HashBucket(1, 0)); got != 2 {
		t.Fatalf("HashBucket(1, 0) has %d tuples, want 2 (0 and 4 collide mod 4)", got)
	}
}
