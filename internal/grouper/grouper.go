// Package grouper implements the multiset grouping and aggregation helper
// behind the GroupBy/Aggregate operators (spec §4.6). Grounded on
// query/codegen/proc/grouper.{hpp,cpp}: its `grpkey_map_`/`grps_` pair
// (composite key -> group index -> result_set) becomes a Go map plus a
// slice of *tuple.ResultSet, and its `group_mtx` becomes a sync.Mutex,
// since GroupBy's incoming tuples may arrive from concurrent upstream
// pipeline fan-out (spec §5).
package grouper

import (
	"sync"

	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Grouper accumulates tuples into groups keyed by a composite key string
// built from selected tuple positions (spec §4.6 GroupBy).
type Grouper struct {
	mu       sync.Mutex
	groups   []*tuple.ResultSet
	keyIndex map[string]int
	keyOrder []string
}

// New returns an empty Grouper.
func New() *Grouper {
	return &Grouper{keyIndex: make(map[string]int)}
}

// AddToGroup appends t to the group for key, creating the group if it is
// the first tuple seen for that key (spec §4.6 "append the tuple to the
// bucket for that key").
func (g *Grouper) AddToGroup(key string, t *tuple.Tuple) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx, ok := g.keyIndex[key]
	if !ok {
		idx = len(g.groups)
		g.keyIndex[key] = idx
		g.keyOrder = append(g.keyOrder, key)
		g.groups = append(g.groups, tuple.NewResultSet())
	}
	g.groups[idx].Append(t)
}

// GroupCount returns the number of distinct groups.
func (g *Grouper) GroupCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.groups)
}

// TotalCount returns the number of tuples across every group (spec §4.6
// Aggregate "total_count").
func (g *Grouper) TotalCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, rs := range g.groups {
		total += rs.Len()
	}
	return total
}

// Group returns the result set for the group at idx, in first-seen order.
func (g *Grouper) Group(idx int) *tuple.ResultSet {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx < 0 || idx >= len(g.groups) {
		return nil
	}
	return g.groups[idx]
}

// Finish emits one representative tuple per group, in first-seen order,
// holding only the cells at keyPositions (spec §4.6 "for each group emit
// one representative tuple holding the key fields").
func (g *Grouper) Finish(keyPositions []int) []*tuple.Tuple {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*tuple.Tuple, 0, len(g.groups))
	for _, key := range g.keyOrder {
		idx := g.keyIndex[key]
		rs := g.groups[idx]
		if rs.Len() == 0 {
			continue
		}
		first := rs.At(0)
		rep := tuple.NewTuple()
		for _, pos := range keyPositions {
			rep.Append(first.At(pos))
		}
		out = append(out, rep)
	}
	return out
}
