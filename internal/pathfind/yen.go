package pathfind

import (
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// deletedRel remembers enough about a relationship to recreate it with
// identical endpoints, label and properties after a spur search (spec
// §4.2 "restoration re-creates the relationship with the same endpoints,
// label, and properties").
type deletedRel struct {
	src, dst ids.NodeID
	label    ids.DictCode
	props    []graph.PropertyInput
}

// KWeightedShortestPaths is Yen's algorithm: starting from the single
// weighted shortest path, it repeatedly finds the next-cheapest path that
// is disjoint from previously found paths at each spur node, by
// temporarily deleting the relationships the prior paths share with the
// candidate's root and restoring them afterward (spec §4.2, §9).
//
// If fewer than k paths exist, KWeightedShortestPaths returns the paths it
// did find together with false (spec §8 "If fewer than k paths exist,
// return what exists and false").
func KWeightedShortestPaths(store graph.GraphStore, xid ids.XID, start, stop ids.NodeID, k int, bidirectional bool, rpred graph.RelPredicate, weight graph.WeightFunc, visit Visitor) ([]Result, bool, error) {
	first, found, err := WeightedShortestPath(store, xid, start, stop, bidirectional, rpred, weight, visit)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	spaths := []Result{first}

	for i := 1; i < k; i++ {
		prev := spaths[i-1].Path
		var candidates []Result

		if len(prev) > 2 {
			for j := 0; j < len(prev)-2; j++ {
				spurNode := prev[j]
				rootPath := prev[:j+1]

				deleted, err := deleteSharedPrefixEdges(store, xid, spaths, rootPath, bidirectional)
				if err != nil {
					return nil, false, err
				}

				spur, ok, err := WeightedShortestPath(store, xid, spurNode, stop, bidirectional, rpred, weight, visit)
				if err == nil && ok {
					candPath := append(clonePath(rootPath[:len(rootPath)-1]), spur.Path...)
					rootWeight, rwErr := pathWeight(store, xid, rootPath, bidirectional, rpred, weight)
					if rwErr == nil && !containsPath(candidates, candPath) {
						candidates = append(candidates, Result{Path: candPath, Weight: rootWeight + spur.Weight})
					}
				}

				if restoreErr := restoreEdges(store, xid, deleted); restoreErr != nil {
					return nil, false, restoreErr
				}
				if err != nil {
					return nil, false, err
				}
			}
		}

		if len(candidates) == 0 {
			return spaths, false, nil
		}
		best := minWeightIndex(candidates)
		spaths = append(spaths, candidates[best])
	}
	return spaths, true, nil
}

func minWeightIndex(candidates []Result) int {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Weight < candidates[best].Weight {
			best = i
		}
	}
	return best
}

func containsPath(existing []Result, p []ids.NodeID) bool {
	for _, e := range existing {
		if pathsEqual(e.Path, p) {
			return true
		}
	}
	return false
}

func pathsEqual(a, b []ids.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefix(path, prefix []ids.NodeID) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// deleteSharedPrefixEdges deletes, for every path in spaths whose nodes
// agree with rootPath up to rootPath's last node, the single relationship
// stepping off that prefix (spec §4.2 "temporarily delete all
// relationships that coincide with the ... already-found paths on the
// prefix up to j").
func deleteSharedPrefixEdges(store graph.GraphStore, xid ids.XID, spaths []Result, rootPath []ids.NodeID, bidirectional bool) ([]deletedRel, error) {
	j := len(rootPath) - 1
	var deleted []deletedRel
	for _, p := range spaths {
		if len(p.Path) <= j+1 || !hasPrefix(p.Path, rootPath) {
			continue
		}
		del, err := deleteEdgeBetween(store, xid, p.Path[j], p.Path[j+1], bidirectional)
		if err != nil {
			return deleted, err
		}
		deleted = append(deleted, del...)
	}
	return deleted, nil
}

// deleteEdgeBetween deletes every relationship u->v, and (if bidirectional)
// every relationship v->u as well, recording enough to recreate each.
func deleteEdgeBetween(store graph.GraphStore, xid ids.XID, u, v ids.NodeID, bidirectional bool) ([]deletedRel, error) {
	var relIDs []ids.RelID

	if err := store.ForeachOutgoing(xid, u, func(r graph.RelRef) bool {
		if r.Dst == v {
			relIDs = append(relIDs, r.ID)
		}
		return true
	}); err != nil {
		return nil, err
	}
	if bidirectional {
		if err := store.ForeachOutgoing(xid, v, func(r graph.RelRef) bool {
			if r.Dst == u {
				relIDs = append(relIDs, r.ID)
			}
			return true
		}); err != nil {
			return nil, err
		}
	}

	deleted := make([]deletedRel, 0, len(relIDs))
	for _, rid := range relIDs {
		r, err := store.RshipByID(xid, rid)
		if err != nil {
			return deleted, err
		}
		desc, err := store.RshipDescription(xid, rid)
		if err != nil {
			return deleted, err
		}
		props := make([]graph.PropertyInput, 0, len(desc.Properties))
		for key, val := range desc.Properties {
			props = append(props, graph.PropertyInput{Key: key, Value: val})
		}
		deleted = append(deleted, deletedRel{src: r.Src, dst: r.Dst, label: r.Label, props: props})
		if err := store.DeleteRelationship(xid, rid); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

func restoreEdges(store graph.GraphStore, xid ids.XID, deleted []deletedRel) error {
	for _, d := range deleted {
		if _, err := store.AddRelationship(xid, d.src, d.dst, d.label, d.props); err != nil {
			return err
		}
	}
	return nil
}

// pathWeight sums the weight of each consecutive edge in path, used to
// convert a spur path's weight (root-to-stop distance is not tracked by
// WeightedShortestPath once sliced) into a total root+spur weight. This
// corrects a bug in the original C++ source, which left candidate weights
// at their zero-initialized default and so always picked the first
// candidate regardless of actual cost (see DESIGN.md).
func pathWeight(store graph.GraphStore, xid ids.XID, path []ids.NodeID, bidirectional bool, rpred graph.RelPredicate, weight graph.WeightFunc) (float64, error) {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		w, ok, err := edgeWeightBetween(store, xid, path[i], path[i+1], bidirectional, rpred, weight)
		if err != nil {
			return 0, err
		}
		if ok {
			total += w
		}
	}
	return total, nil
}

func edgeWeightBetween(store graph.GraphStore, xid ids.XID, u, v ids.NodeID, bidirectional bool, rpred graph.RelPredicate, weight graph.WeightFunc) (float64, bool, error) {
	var w float64
	var found bool
	err := forEachNeighbor(store, xid, u, bidirectional, rpred, func(nb neighbor) bool {
		if nb.to == v {
			w = weight(nb.rel)
			found = true
			return false
		}
		return true
	})
	return w, found, err
}
