package gstore

import (
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// hashIndex is a minimal single-property equality index (spec §6
// get_index/index_lookup). Secondary-index construction algorithms are
// explicitly out of scope (spec §1); this is only enough surface to
// exercise the IndexScan operator.
type hashIndex struct {
	byValue map[string][]ids.NodeID
}

func newHashIndex() *hashIndex {
	return &hashIndex{byValue: make(map[string][]ids.NodeID)}
}

func (h *hashIndex) add(v tuple.Cell, n ids.NodeID) {
	h.byValue[v.Text()] = append(h.byValue[v.Text()], n)
}

// Lookup visits every node id indexed under value, stopping early if visit
// returns false.
func (h *hashIndex) Lookup(value tuple.Cell, visit func(ids.NodeID) bool) error {
	for _, n := range h.byValue[value.Text()] {
		if !visit(n) {
			return nil
		}
	}
	return nil
}

var _ graph.Index = (*hashIndex)(nil)
