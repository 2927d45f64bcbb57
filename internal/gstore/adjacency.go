package gstore

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// ForeachOutgoing walks n's outgoing relationships visible to xid, in
// adjacency-list order, honoring transactional visibility (spec §4.1). Stops
// early if visit returns false.
func (s *Store) ForeachOutgoing(xid ids.XID, n ids.NodeID, visit func(graph.RelRef) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nd, err := s.nodeAt(n)
	if err != nil {
		return err
	}
	for rid := nd.firstOut; rid.Valid(); {
		r := &s.rels[rid]
		next := r.nextOutOfSrc
		if r.ver.visibleTo(s.tm, xid) {
			if !visit(s.toRelRef(rid, r)) {
				return nil
			}
		}
		rid = next
	}
	return nil
}

// ForeachIncoming walks n's incoming relationships visible to xid,
// symmetric to ForeachOutgoing (spec §4.1).
func (s *Store) ForeachIncoming(xid ids.XID, n ids.NodeID, visit func(graph.RelRef) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nd, err := s.nodeAt(n)
	if err != nil {
		return err
	}
	for rid := nd.firstIn; rid.Valid(); {
		r := &s.rels[rid]
		next := r.nextInOfDst
		if r.ver.visibleTo(s.tm, xid) {
			if !visit(s.toRelRef(rid, r)) {
				return nil
			}
		}
		rid = next
	}
	return nil
}

// ForeachVariableOutgoing performs a BFS of depth [min, max] over outgoing
// relationships labeled label, invoking visit once per traversed
// relationship in BFS order (spec §4.1 variable_length_outgoing).
func (s *Store) ForeachVariableOutgoing(xid ids.XID, start ids.NodeID, label ids.DictCode, minHops, maxHops int, visit func(graph.RelRef) bool) error {
	if minHops < 0 || maxHops < minHops {
		return fmt.Errorf("invalid hop range [%d,%d]", minHops, maxHops)
	}

	type frontierEntry struct {
		node ids.NodeID
		hop  int
	}

	frontier := []frontierEntry{{node: start, hop: 0}}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		if cur.hop >= maxHops {
			continue
		}

		var next []frontierEntry
		err := s.ForeachOutgoing(xid, cur.node, func(r graph.RelRef) bool {
			if label.Valid() && r.Label != label {
				return true
			}
			hop := cur.hop + 1
			if hop >= minHops {
				if !visit(r) {
					return false
				}
			}
			next = append(next, frontierEntry{node: r.Dst, hop: hop})
			return true
		})
		if err != nil {
			return err
		}
		frontier = append(frontier, next...)
	}
	return nil
}
