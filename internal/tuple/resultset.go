package tuple

import (
	"sort"
	"sync"
)

// ResultSet is an ordered, append-only sequence of tuples (spec §3). It is
// written by a single pipeline and then consumed by the grouper, collect,
// or sort stages; writes are serialized by a mutex since a scan-rooted
// pipeline may append from multiple chunk-worker goroutines (spec §5).
type ResultSet struct {
	mu      sync.Mutex
	tuples  []*Tuple
	onEmpty func()
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Append adds a tuple to the end of the result set.
func (rs *ResultSet) Append(t *Tuple) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.tuples = append(rs.tuples, t)
}

// Len returns the number of tuples.
func (rs *ResultSet) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.tuples)
}

// At returns the tuple at index i.
func (rs *ResultSet) At(i int) *Tuple {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.tuples[i]
}

// Data returns the underlying tuple slice. Callers must not mutate it
// concurrently with Append; intended for use after the producing pipeline
// has closed (spec §5 "reads occur only after the right pipeline has closed").
func (rs *ResultSet) Data() []*Tuple {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.tuples
}

// Sort orders the tuples in place using less, for the OrderBy operator
// (spec §4.3, the only operator guaranteeing a final global order).
func (rs *ResultSet) Sort(less func(a, b *Tuple) bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	sort.SliceStable(rs.tuples, func(i, j int) bool {
		return less(rs.tuples[i], rs.tuples[j])
	})
}

// Truncate keeps only the first n tuples.
func (rs *ResultSet) Truncate(n int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if n < len(rs.tuples) {
		rs.tuples = rs.tuples[:n]
	}
}

// Notify is called once the producing pipeline drains (spec §6 "notify()").
func (rs *ResultSet) Notify() {
	if rs.onEmpty != nil {
		rs.onEmpty()
	}
}

// OnNotify registers a callback invoked by Notify.
func (rs *ResultSet) OnNotify(f func()) { rs.onEmpty = f }
