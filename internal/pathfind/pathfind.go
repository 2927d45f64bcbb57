// Package pathfind implements the graph analytics kernel: unweighted
// (BFS), weighted (Dijkstra) and k-shortest-path (Yen's algorithm) search
// over a graph.GraphStore, honoring the store's transactional visibility
// rules (spec §4.1, §9). It is grounded on
// original_source/src/analytics/shortest_path.cpp, restated in the
// predecessor-map/heap idiom used by katalvlaran-lvlath/dijkstra and
// katalvlaran-lvlath/bfs.
package pathfind

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// Visitor is invoked once per node visited during a traversal, with the
// path (inclusive of the node) accumulated so far. A nil Visitor is a
// no-op.
type Visitor func(n graph.NodeRef, path []ids.NodeID)

func callVisit(v Visitor, n graph.NodeRef, path []ids.NodeID) {
	if v != nil {
		v(n, path)
	}
}

// Result carries a single shortest path: its node sequence, hop count
// (unweighted) and total weight (weighted).
type Result struct {
	Path   []ids.NodeID
	Hops   int
	Weight float64
}

func clonePath(p []ids.NodeID) []ids.NodeID {
	out := make([]ids.NodeID, len(p))
	copy(out, p)
	return out
}

// neighbor pairs a relationship with the node it leads to, abstracting
// over outgoing vs. incoming traversal direction.
type neighbor struct {
	rel graph.RelRef
	to  ids.NodeID
}

// forEachNeighbor visits every neighbor reachable from n matching rpred:
// outgoing relationships always, plus incoming ones too when bidirectional
// is set (spec §4.2 "If bidirectional is true, incoming edges are
// traversed in addition to outgoing").
func forEachNeighbor(store graph.GraphStore, xid ids.XID, n ids.NodeID, bidirectional bool, rpred graph.RelPredicate, visit func(neighbor) bool) error {
	cont := true
	err := store.ForeachOutgoing(xid, n, func(r graph.RelRef) bool {
		if rpred != nil && !rpred(r) {
			return true
		}
		cont = visit(neighbor{rel: r, to: r.Dst})
		return cont
	})
	if err != nil {
		return err
	}
	if !bidirectional || !cont {
		return nil
	}
	return store.ForeachIncoming(xid, n, func(r graph.RelRef) bool {
		if rpred != nil && !rpred(r) {
			return true
		}
		cont = visit(neighbor{rel: r, to: r.Src})
		return cont
	})
}

func nodeRef(store graph.GraphStore, xid ids.XID, id ids.NodeID) (graph.NodeRef, error) {
	n, err := store.NodeByID(xid, id)
	if err != nil {
		return graph.NodeRef{}, fmt.Errorf("pathfind: resolving node %d: %w", id, err)
	}
	return n, nil
}
