package pathfind

import (
	"container/heap"
	"math"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// WeightedShortestPath is Dijkstra's algorithm from start, relaxing
// relationships satisfying rpred (plus incoming ones if bidirectional)
// with cost weight(rel). Unlike the naive O(N) minimum scan in the
// original source, this uses a binary heap (container/heap) with the
// standard lazy-decrease-key pattern: the spec permits either, since the
// minimum-selection strategy is an implementation choice, not a contract
// (spec §4.2).
func WeightedShortestPath(store graph.GraphStore, xid ids.XID, start, stop ids.NodeID, bidirectional bool, rpred graph.RelPredicate, weight graph.WeightFunc, visit Visitor) (Result, bool, error) {
	dist := map[ids.NodeID]float64{start: 0}
	parent := map[ids.NodeID]ids.NodeID{}
	visited := map[ids.NodeID]bool{}

	pq := &nodeHeap{{node: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		top := heap.Pop(pq).(nodeDist)
		u, d := top.node, top.dist
		if visited[u] {
			continue
		}
		visited[u] = true

		n, err := nodeRef(store, xid, u)
		if err != nil {
			return Result{}, false, err
		}
		callVisit(visit, n, tracePath(parent, u))

		if u == stop {
			return Result{Path: tracePath(parent, stop), Weight: d}, true, nil
		}

		err = forEachNeighbor(store, xid, u, bidirectional, rpred, func(nb neighbor) bool {
			if visited[nb.to] {
				return true
			}
			w := weight(nb.rel)
			cand := d + w
			cur, known := dist[nb.to]
			if !known || cand < cur {
				dist[nb.to] = cand
				parent[nb.to] = u
				heap.Push(pq, nodeDist{node: nb.to, dist: cand})
			}
			return true
		})
		if err != nil {
			return Result{}, false, err
		}
	}
	return Result{}, false, nil
}

// AllWeightedShortestPaths returns every path from start to stop tied for
// minimum weight (spec §4.2). It mirrors the original's dense minimum-scan
// so the tie-detection ("else if vid==stop && weight equal") carries over
// directly: each loop iteration considers every unvisited node, not just
// the heap top, which is what lets already-found ties surface during
// relaxation instead of being silently dropped by a lazy heap.
func AllWeightedShortestPaths(store graph.GraphStore, xid ids.XID, start, stop ids.NodeID, bidirectional bool, rpred graph.RelPredicate, weight graph.WeightFunc, visit Visitor) ([]Result, bool, error) {
	dist := map[ids.NodeID]float64{start: 0}
	parent := map[ids.NodeID]ids.NodeID{}
	visited := map[ids.NodeID]bool{}
	var results []Result

	for {
		minNode, minDist, any := minUnvisited(dist, visited)
		if !any {
			break
		}

		if minNode == stop {
			results = append(results, Result{Path: tracePath(parent, stop), Weight: minDist})
		}
		visited[minNode] = true

		n, err := nodeRef(store, xid, minNode)
		if err != nil {
			return nil, false, err
		}
		callVisit(visit, n, tracePath(parent, minNode))

		err = forEachNeighbor(store, xid, minNode, bidirectional, rpred, func(nb neighbor) bool {
			w := weight(nb.rel)
			cand := minDist + w
			cur, known := dist[nb.to]
			switch {
			case !visited[nb.to] && (!known || cand < cur):
				dist[nb.to] = cand
				parent[nb.to] = minNode
			case nb.to == stop && known && cand == cur:
				results = append(results, Result{Path: appendPath(tracePath(parent, minNode), stop), Weight: cand})
			}
			return true
		})
		if err != nil {
			return nil, false, err
		}
	}
	return results, len(results) > 0, nil
}

func minUnvisited(dist map[ids.NodeID]float64, visited map[ids.NodeID]bool) (ids.NodeID, float64, bool) {
	best := math.Inf(1)
	var bestNode ids.NodeID
	found := false
	for n, d := range dist {
		if visited[n] {
			continue
		}
		if d < best {
			best = d
			bestNode = n
			found = true
		}
	}
	return bestNode, best, found
}

func tracePath(parent map[ids.NodeID]ids.NodeID, to ids.NodeID) []ids.NodeID {
	var path []ids.NodeID
	for cur := to; ; {
		path = append([]ids.NodeID{cur}, path...)
		p, ok := parent[cur]
		if !ok {
			break
		}
		cur = p
	}
	return path
}

func appendPath(prefix []ids.NodeID, last ids.NodeID) []ids.NodeID {
	out := clonePath(prefix)
	return append(out, last)
}

type nodeDist struct {
	node ids.NodeID
	dist float64
}

type nodeHeap []nodeDist

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(nodeDist)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
