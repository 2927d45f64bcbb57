package filterexpr_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/poseidon-go/internal/filterexpr"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

func newTestStore(t *testing.T) (*gstore.Store, ids.XID) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	tm := gstore.NewTransactionManager()
	s := gstore.New(tm, log)
	return s, tm.Begin()
}

func TestEvalNumberComparison(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, []graph.PropertyInput{{Key: "age", Value: tuple.IntCell(30)}})
	require.NoError(t, err)

	expr := filterexpr.GeNode(filterexpr.KeyNode("age"), filterexpr.NumberNode(18))
	result, err := filterexpr.Eval(s, xid, filterexpr.NodeEntity(id), nil, expr)
	require.NoError(t, err)
	assert.True(t, filterexpr.Bool(result))

	expr = filterexpr.LtNode(filterexpr.KeyNode("age"), filterexpr.NumberNode(18))
	result, err = filterexpr.Eval(s, xid, filterexpr.NodeEntity(id), nil, expr)
	require.NoError(t, err)
	assert.False(t, filterexpr.Bool(result))
}

func TestEvalAndOr(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, []graph.PropertyInput{
		{Key: "age", Value: tuple.IntCell(30)},
		{Key: "city", Value: tuple.StringCell("Erfurt")},
	})
	require.NoError(t, err)

	expr := filterexpr.AndNode(
		filterexpr.GeNode(filterexpr.KeyNode("age"), filterexpr.NumberNode(18)),
		filterexpr.EqNode(filterexpr.KeyNode("city"), filterexpr.StringNode("Erfurt")),
	)
	result, err := filterexpr.Eval(s, xid, filterexpr.NodeEntity(id), nil, expr)
	require.NoError(t, err)
	assert.True(t, filterexpr.Bool(result))

	expr = filterexpr.OrNode(
		filterexpr.EqNode(filterexpr.KeyNode("city"), filterexpr.StringNode("Weimar")),
		filterexpr.EqNode(filterexpr.KeyNode("city"), filterexpr.StringNode("Erfurt")),
	)
	result, err = filterexpr.Eval(s, xid, filterexpr.NodeEntity(id), nil, expr)
	require.NoError(t, err)
	assert.True(t, filterexpr.Bool(result))
}

func TestEvalMissingKeyIsNullNotError(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, nil)
	require.NoError(t, err)

	expr := filterexpr.EqNode(filterexpr.KeyNode("nickname"), filterexpr.StringNode("Bob"))
	result, err := filterexpr.Eval(s, xid, filterexpr.NodeEntity(id), nil, expr)
	require.NoError(t, err)
	assert.False(t, filterexpr.Bool(result))
}

func TestEvalCallUserFunction(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, []graph.PropertyInput{{Key: "age", Value: tuple.IntCell(16)}})
	require.NoError(t, err)

	reg := filterexpr.Registry{
		"isAdult": func(args []tuple.Cell) (tuple.Cell, error) {
			age, err := args[0].Int()
			if err != nil {
				return tuple.Null(), err
			}
			if age >= 18 {
				return tuple.IntCell(1), nil
			}
			return tuple.IntCell(0), nil
		},
	}

	expr := filterexpr.CallNode("isAdult", filterexpr.KeyNode("age"))
	result, err := filterexpr.Eval(s, xid, filterexpr.NodeEntity(id), reg, expr)
	require.NoError(t, err)
	assert.False(t, filterexpr.Bool(result))
}

func TestEvalRelationshipEntity(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	a, err := s.AddNode(xid, label, nil)
	require.NoError(t, err)
	b, err := s.AddNode(xid, label, nil)
	require.NoError(t, err)

	knows := s.GetCode("KNOWS")
	rid, err := s.AddRelationship(xid, a, b, knows, []graph.PropertyInput{{Key: "since", Value: tuple.IntCell(2020)}})
	require.NoError(t, err)

	expr := filterexpr.GtNode(filterexpr.KeyNode("since"), filterexpr.NumberNode(2019))
	result, err := filterexpr.Eval(s, xid, filterexpr.RelEntity(rid), nil, expr)
	require.NoError(t, err)
	assert.True(t, filterexpr.Bool(result))
}
