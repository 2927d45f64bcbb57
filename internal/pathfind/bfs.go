package pathfind

import (
	"math"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

const unknownDistance = math.MaxInt64

// UnweightedShortestPath is a BFS from start that follows relationships
// satisfying rpred (and, if bidirectional, incoming relationships too),
// invoking visit for every node dequeued. The first path reaching stop
// wins (spec §4.2 "Tie-break: first path found wins").
func UnweightedShortestPath(store graph.GraphStore, xid ids.XID, start, stop ids.NodeID, bidirectional bool, rpred graph.RelPredicate, visit Visitor) (Result, bool, error) {
	if start == stop {
		return Result{Path: []ids.NodeID{start}}, true, nil
	}

	distance := map[ids.NodeID]int{start: 0}
	visited := map[ids.NodeID]bool{start: true}
	frontier := [][]ids.NodeID{{start}}

	for len(frontier) > 0 {
		u := frontier[0]
		frontier = frontier[1:]
		uid := u[len(u)-1]

		n, err := nodeRef(store, xid, uid)
		if err != nil {
			return Result{}, false, err
		}
		callVisit(visit, n, u)

		var found bool
		var result Result
		err = forEachNeighbor(store, xid, uid, bidirectional, rpred, func(nb neighbor) bool {
			if visited[nb.to] {
				return true
			}
			visited[nb.to] = true
			distance[nb.to] = distance[uid] + 1
			path := append(clonePath(u), nb.to)
			frontier = append(frontier, path)

			if nb.to == stop {
				found = true
				result = Result{Path: path, Hops: distance[nb.to]}
				return false
			}
			return true
		})
		if err != nil {
			return Result{}, false, err
		}
		if found {
			return result, true, nil
		}
	}
	return Result{}, false, nil
}

// AllUnweightedShortestPaths is the all-equal-length variant: every path
// reaching stop at the minimum hop count is returned (spec §4.2).
func AllUnweightedShortestPaths(store graph.GraphStore, xid ids.XID, start, stop ids.NodeID, bidirectional bool, rpred graph.RelPredicate, visit Visitor) ([]Result, bool, error) {
	if start == stop {
		return []Result{{Path: []ids.NodeID{start}}}, true, nil
	}

	distance := map[ids.NodeID]int{start: unknownDistance}
	distance[start] = 0
	visited := map[ids.NodeID]bool{start: true}
	frontier := [][]ids.NodeID{{start}}
	var results []Result

	stopDistance := func() int {
		if d, ok := distance[stop]; ok {
			return d
		}
		return unknownDistance
	}

	for len(frontier) > 0 {
		u := frontier[0]
		frontier = frontier[1:]
		uid := u[len(u)-1]

		n, err := nodeRef(store, xid, uid)
		if err != nil {
			return nil, false, err
		}
		callVisit(visit, n, u)

		err = forEachNeighbor(store, xid, uid, bidirectional, rpred, func(nb neighbor) bool {
			already := visited[nb.to]
			eligible := !already || (nb.to == stop && distance[uid] < stopDistance())
			if !eligible {
				return true
			}
			visited[nb.to] = true
			distance[nb.to] = distance[uid] + 1
			path := append(clonePath(u), nb.to)
			frontier = append(frontier, path)

			if nb.to == stop {
				results = append(results, Result{Path: path, Hops: distance[nb.to]})
			}
			return true
		})
		if err != nil {
			return nil, false, err
		}
	}
	return results, len(results) > 0, nil
}
