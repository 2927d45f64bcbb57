// Package jointable implements the side-tables that binary pipeline
// operators materialize their right-hand input into: plain per-join
// tuple lists for cross and nested-loop joins, and bucketed lists for
// hash joins (spec §4.4, §9 "pipelines broken at binary operators").
// Grounded on query/codegen/proc/joiner.{hpp,cpp}'s `joiner` class —
// its `std::map<int, ...>` keyed by join id becomes a Go map, and its
// `std::mutex materialize_mutex` becomes a `sync.Mutex`, since multiple
// upstream pipeline goroutines may materialize into the same join id
// concurrently (spec §5 Shared-resource policy).
package jointable

import (
	"hash/fnv"
	"sync"

	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// DefaultBucketCount is the default number of hash-join buckets, matching
// the original's `rhs_hash_input_[10]` array. Spec §4.4 "Hash-join bucket
// count is a construction parameter (default 10)"; New uses this default,
// NewWithBuckets lets a caller override it.
const DefaultBucketCount = 10

// Table is the side-table shared by every join in a single query plan,
// addressed by join id (the binary operator's position in the plan).
type Table struct {
	mu      sync.Mutex
	buckets int
	rhs     map[int][]*tuple.Tuple
	hashed  map[int][][]*tuple.Tuple
}

// New returns an empty side-table with DefaultBucketCount hash buckets.
func New() *Table {
	return NewWithBuckets(DefaultBucketCount)
}

// NewWithBuckets returns an empty side-table with n hash buckets.
func NewWithBuckets(n int) *Table {
	if n <= 0 {
		n = DefaultBucketCount
	}
	return &Table{
		buckets: n,
		rhs:     make(map[int][]*tuple.Tuple),
		hashed:  make(map[int][][]*tuple.Tuple),
	}
}

// BucketCount reports the number of hash buckets this table was
// constructed with.
func (t *Table) BucketCount() int {
	return t.buckets
}

// MaterializeRHS appends t to join id's unbucketed input, for cross and
// nested-loop joins (spec §4.4 CrossJoin/NestedLoopJoin).
func (t *Table) MaterializeRHS(joinID int, tp *tuple.Tuple) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rhs[joinID] = append(t.rhs[joinID], tp)
}

// RHS returns join id's materialized input. The slice is owned by the
// table and must not be mutated by the caller; it is only read during the
// join's probe phase, after every upstream pipeline has finished
// materializing (spec §9 "pipeline barrier").
func (t *Table) RHS(joinID int) []*tuple.Tuple {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rhs[joinID]
}

// MaterializeHash appends tp into join id's bucket at key mod the table's
// configured bucket count, for hash joins (spec §4.4 HashJoin).
func (t *Table) MaterializeHash(joinID int, key uint64, tp *tuple.Tuple) {
	t.mu.Lock()
	defer t.mu.Unlock()
	buckets := t.hashed[joinID]
	if buckets == nil {
		buckets = make([][]*tuple.Tuple, t.buckets)
		t.hashed[joinID] = buckets
	}
	b := int(key % uint64(t.buckets))
	buckets[b] = append(buckets[b], tp)
}

// HashBucket returns join id's tuples in key's bucket.
func (t *Table) HashBucket(joinID int, key uint64) []*tuple.Tuple {
	t.mu.Lock()
	defer t.mu.Unlock()
	buckets := t.hashed[joinID]
	if buckets == nil {
		return nil
	}
	return buckets[int(key%uint64(t.buckets))]
}

// HashKey hashes key (typically a Cell.Text() join-key) into a raw 64-bit
// value; callers mod it by a Table's BucketCount themselves (the table may
// not use DefaultBucketCount).
func HashKey(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
