package pathfind_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/pathfind"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

func newTestStore(t *testing.T) (*gstore.Store, *gstore.TransactionManager, ids.XID) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	tm := gstore.NewTransactionManager()
	s := gstore.New(tm, log)
	xid := tm.Begin()
	return s, tm, xid
}

func addNode(t *testing.T, s *gstore.Store, xid ids.XID) ids.NodeID {
	t.Helper()
	id, err := s.AddNode(xid, s.GetCode("N"), nil)
	require.NoError(t, err)
	return id
}

func addEdge(t *testing.T, s *gstore.Store, xid ids.XID, src, dst ids.NodeID, label string, w float64) ids.RelID {
	t.Helper()
	var props []graph.PropertyInput
	if label != "" {
		props = []graph.PropertyInput{{Key: "weight", Value: tuple.DoubleCell(w)}}
	}
	id, err := s.AddRelationship(xid, src, dst, s.GetCode("rel"), props)
	require.NoError(t, err)
	return id
}

func weightOf(s *gstore.Store, xid ids.XID) graph.WeightFunc {
	key := s.GetCode("weight")
	return func(r graph.RelRef) float64 {
		v, ok, err := s.GetRelProperty(xid, r.ID, key)
		if err != nil || !ok {
			return 1
		}
		d, err := v.Double()
		if err != nil {
			return 1
		}
		return d
	}
}

func TestUnweightedShortestPathOneHop(t *testing.T) {
	s, _, xid := newTestStore(t)
	a := addNode(t, s, xid)
	b := addNode(t, s, xid)
	c := addNode(t, s, xid)
	addEdge(t, s, xid, a, b, "", 0)
	addEdge(t, s, xid, b, c, "", 0)

	res, found, err := pathfind.UnweightedShortestPath(s, xid, a, c, false, graph.AlwaysTrue, nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, res.Hops)
	assert.Equal(t, []ids.NodeID{a, b, c}, res.Path)
}

func TestUnweightedShortestPathBidirectional(t *testing.T) {
	s, _, xid := newTestStore(t)
	a := addNode(t, s, xid)
	b := addNode(t, s, xid)
	addEdge(t, s, xid, b, a, "", 0)

	res, found, err := pathfind.UnweightedShortestPath(s, xid, a, b, true, graph.AlwaysTrue, nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, res.Hops)
	assert.Equal(t, []ids.NodeID{a, b}, res.Path)

	_, found, err = pathfind.UnweightedShortestPath(s, xid, a, b, false, graph.AlwaysTrue, nil)
	require.NoError(t, err)
	assert.False(t, found, "without bidirectional, a reverse-only edge must not connect a to b")
}

func TestUnweightedShortestPathSameStartStop(t *testing.T) {
	s, _, xid := newTestStore(t)
	a := addNode(t, s, xid)
	b := addNode(t, s, xid)
	addEdge(t, s, xid, a, b, "", 0)

	res, found, err := pathfind.UnweightedShortestPath(s, xid, a, a, false, graph.AlwaysTrue, nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, res.Hops)
	assert.Equal(t, []ids.NodeID{a}, res.Path)

	all, found, err := pathfind.AllUnweightedShortestPaths(s, xid, a, a, false, graph.AlwaysTrue, nil)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, all, 1)
	assert.Equal(t, 0, all[0].Hops)
	assert.Equal(t, []ids.NodeID{a}, all[0].Path)
}

func TestDijkstraTie(t *testing.T) {
	s, _, xid := newTestStore(t)
	a := addNode(t, s, xid)
	b := addNode(t, s, xid)
	c := addNode(t, s, xid)
	d := addNode(t, s, xid)
	addEdge(t, s, xid, a, b, "w", 1)
	addEdge(t, s, xid, a, c, "w", 1)
	addEdge(t, s, xid, b, d, "w", 1)
	addEdge(t, s, xid, c, d, "w", 1)

	single, found, err := pathfind.WeightedShortestPath(s, xid, a, d, false, graph.AlwaysTrue, weightOf(s, xid), nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2.0, single.Weight)

	all, found, err := pathfind.AllWeightedShortestPaths(s, xid, a, d, false, graph.AlwaysTrue, weightOf(s, xid), nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, all, 2)
	for _, r := range all {
		assert.Equal(t, 2.0, r.Weight)
	}
}

func TestKShortestPathsDiamond(t *testing.T) {
	s, _, xid := newTestStore(t)
	a := addNode(t, s, xid)
	z := addNode(t, s, xid)

	build := func(weight float64) {
		m1 := addNode(t, s, xid)
		m2 := addNode(t, s, xid)
		addEdge(t, s, xid, a, m1, "w", weight/2)
		addEdge(t, s, xid, m1, m2, "w", 0)
		addEdge(t, s, xid, m2, z, "w", weight/2)
	}
	build(5)
	build(7)
	build(9)

	results, ok, err := pathfind.KWeightedShortestPaths(s, xid, a, z, 3, false, graph.AlwaysTrue, weightOf(s, xid), nil)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, results, 3)
	assert.InDelta(t, 5.0, results[0].Weight, 1e-9)
	assert.InDelta(t, 7.0, results[1].Weight, 1e-9)
	assert.InDelta(t, 9.0, results[2].Weight, 1e-9)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Weight, results[i-1].Weight)
	}
}
