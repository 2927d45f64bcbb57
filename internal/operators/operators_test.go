package operators_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/poseidon-go/internal/filterexpr"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/grouper"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/jointable"
	"github.com/dbis-ilm/poseidon-go/internal/operators"
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

func newExecCtx(s *gstore.Store, xid ids.XID) *operators.ExecCtx {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &operators.ExecCtx{Store: s, XID: xid, Log: logrus.NewEntry(log), Joins: jointable.New()}
}

// TestScanExpandLimitPipeline is spec §8 scenario 6: Limit(2, Expand(OUT,
// ForeachRelationship(OUT, "knows", NodeScan("Person")))) over 3 persons
// each with >=1 "knows" relationship; the result set holds exactly 2
// tuples of shape (Person, knows-rel, Person).
func TestScanExpandLimitPipeline(t *testing.T) {
	s, xid := newTestStore(t)
	personLabel := s.GetCode("Person")
	knowsLabel := s.GetCode("knows")

	var people []ids.NodeID
	for i := 0; i < 3; i++ {
		id, err := s.AddNode(xid, personLabel, nil)
		require.NoError(t, err)
		people = append(people, id)
	}
	for i := 0; i < 3; i++ {
		_, err := s.AddRelationship(xid, people[i], people[(i+1)%3], knowsLabel, nil)
		require.NoError(t, err)
	}

	result := tuple.NewResultSet()
	collect := operators.NewCollect(4, result)
	limit := operators.NewLimit(3, 2, collect)
	expand := operators.NewExpand(2, operators.Out, nil, limit)
	foreach := operators.NewForeachRelationship1Hop(1, operators.Out, knowsLabel, expand)
	scan := operators.NewScan(0, []ids.DictCode{personLabel}, 0, s.NodeCount(), foreach)

	ctx := newExecCtx(s, xid)
	require.NoError(t, scan.Run(ctx))

	require.Equal(t, 2, result.Len())
	for i := 0; i < result.Len(); i++ {
		row := result.At(i)
		require.Equal(t, 3, row.Len())
		_, err := row.At(0).Node()
		assert.NoError(t, err)
		_, err = row.At(1).Rel()
		assert.NoError(t, err)
		_, err = row.At(2).Node()
		assert.NoError(t, err)
	}
}

func TestNodeHasLabelFilter(t *testing.T) {
	s, xid := newTestStore(t)
	person := s.GetCode("Person")
	city := s.GetCode("City")

	p, err := s.AddNode(xid, person, nil)
	require.NoError(t, err)
	c, err := s.AddNode(xid, city, nil)
	require.NoError(t, err)

	result := tuple.NewResultSet()
	collect := operators.NewCollect(1, result)
	hasLabel := operators.NewNodeHasLabel(0, person, collect)

	ctx := newExecCtx(s, xid)
	require.NoError(t, hasLabel.Push(ctx, tuple.NewTuple().Append(tuple.NodeCell(p))))
	require.NoError(t, hasLabel.Push(ctx, tuple.NewTuple().Append(tuple.NodeCell(c))))
	require.NoError(t, hasLabel.Close(ctx))

	assert.Equal(t, 1, result.Len())
}

func TestFilterTupleDropsNonMatching(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	adult, err := s.AddNode(xid, label, []graph.PropertyInput{{Key: "age", Value: tuple.IntCell(30)}})
	require.NoError(t, err)
	minor, err := s.AddNode(xid, label, []graph.PropertyInput{{Key: "age", Value: tuple.IntCell(10)}})
	require.NoError(t, err)

	result := tuple.NewResultSet()
	collect := operators.NewCollect(1, result)
	expr := filterexpr.GeNode(filterexpr.KeyNode("age"), filterexpr.NumberNode(18))
	filter := operators.NewFilterTuple(0, expr, nil, collect)

	ctx := newExecCtx(s, xid)
	require.NoError(t, filter.Push(ctx, tuple.NewTuple().Append(tuple.NodeCell(adult))))
	require.NoError(t, filter.Push(ctx, tuple.NewTuple().Append(tuple.NodeCell(minor))))
	require.NoError(t, filter.Close(ctx))

	require.Equal(t, 1, result.Len())
	id, err := result.At(0).At(0).Node()
	require.NoError(t, err)
	assert.Equal(t, adult, id)
}

func TestProjectionItems(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	id, err := s.AddNode(xid, label, []graph.PropertyInput{
		{Key: "age", Value: tuple.IntCell(42)},
		{Key: "name", Value: tuple.StringCell("Ada")},
	})
	require.NoError(t, err)

	result := tuple.NewResultSet()
	collect := operators.NewCollect(1, result)
	items := []operators.Item{
		operators.ForwardItem(0),
		operators.PropertyItemAt(0, "age", tuple.KindDouble),
		operators.ConditionalItemAt(0, []string{"name"}, "has-name", "no-name"),
	}
	proj := operators.NewProjection(0, items, nil, collect)

	ctx := newExecCtx(s, xid)
	require.NoError(t, proj.Push(ctx, tuple.NewTuple().Append(tuple.NodeCell(id))))

	require.Equal(t, 1, result.Len())
	row := result.At(0)
	require.Equal(t, 3, row.Len())
	age, err := row.At(1).Double()
	require.NoError(t, err)
	assert.Equal(t, 42.0, age)
	cond, err := row.At(2).String()
	require.NoError(t, err)
	assert.Equal(t, "has-name", cond)
}

func TestGroupByAndAggregate(t *testing.T) {
	g := grouper.New()
	gb := operators.NewGroupBy(0, []int{0}, g, nil)

	ctx := &operators.ExecCtx{}
	amounts := []struct {
		key    string
		amount int64
	}{{"a", 10}, {"b", 5}, {"a", 20}, {"a", 30}}
	for _, row := range amounts {
		require.NoError(t, gb.Push(ctx, tuple.NewTuple().Append(tuple.StringCell(row.key)).Append(tuple.IntCell(row.amount))))
	}

	result := tuple.NewResultSet()
	collect := operators.NewCollect(2, result)
	agg := operators.NewAggregate(1, []int{0}, g, []operators.AggregateSpec{
		{Kind: grouper.Count, Pos: 1},
		{Kind: grouper.SumInt, Pos: 1},
	}, collect)
	require.NoError(t, agg.Close(ctx))

	require.Equal(t, 2, result.Len())
	var aRow *tuple.Tuple
	for i := 0; i < result.Len(); i++ {
		k, _ := result.At(i).At(0).String()
		if k == "a" {
			aRow = result.At(i)
		}
	}
	require.NotNil(t, aRow)
	count, _ := aRow.At(1).Int()
	sum, _ := aRow.At(2).Int()
	assert.Equal(t, int64(3), count)
	assert.Equal(t, int64(60), sum)
}

func TestCrossJoinAndNestedLoopJoin(t *testing.T) {
	joins := jointable.New()
	joins.MaterializeRHS(1, tuple.NewTuple().Append(tuple.IntCell(1)))
	joins.MaterializeRHS(1, tuple.NewTuple().Append(tuple.IntCell(2)))

	result := tuple.NewResultSet()
	collect := operators.NewCollect(0, result)
	cross := operators.NewCrossJoin(0, 1, collect)
	ctx := &operators.ExecCtx{Joins: joins}

	require.NoError(t, cross.Push(ctx, tuple.NewTuple().Append(tuple.IntCell(100))))
	require.NoError(t, cross.Push(ctx, tuple.NewTuple().Append(tuple.IntCell(200))))
	assert.Equal(t, 4, result.Len())

	result2 := tuple.NewResultSet()
	collect2 := operators.NewCollect(0, result2)
	nlj := operators.NewNestedLoopJoin(0, 1, 0, 0, collect2)
	require.NoError(t, nlj.Push(ctx, tuple.NewTuple().Append(tuple.IntCell(1))))
	assert.Equal(t, 1, result2.Len())
}

func TestHashJoinRoutesByEntityIDModulo(t *testing.T) {
	joins := jointable.New()
	rightNode := ids.NodeID(23)
	joins.MaterializeHash(1, uint64(rightNode), tuple.NewTuple().Append(tuple.NodeCell(rightNode)))

	result := tuple.NewResultSet()
	collect := operators.NewCollect(0, result)
	hj := operators.NewHashJoin(0, 1, 0, 0, collect)
	ctx := &operators.ExecCtx{Joins: joins}

	require.NoError(t, hj.Push(ctx, tuple.NewTuple().Append(tuple.NodeCell(rightNode))))
	assert.Equal(t, 1, result.Len())
}

func TestLeftOuterJoinEmitsDanglingRow(t *testing.T) {
	joins := jointable.New()
	result := tuple.NewResultSet()
	collect := operators.NewCollect(0, result)
	loj := operators.NewLeftOuterJoin(0, 1, 0, 0, 1, collect)
	ctx := &operators.ExecCtx{Joins: joins}

	require.NoError(t, loj.Push(ctx, tuple.NewTuple().Append(tuple.IntCell(7))))
	require.Equal(t, 1, result.Len())
	row := result.At(0)
	dangling, err := row.Last().Int()
	require.NoError(t, err)
	assert.Equal(t, int64(1), dangling)
}

func TestDMLCreateAndRemove(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")

	result := tuple.NewResultSet()
	collect := operators.NewCollect(1, result)
	create := operators.NewCreateNode(0, label, nil, collect)

	ctx := newExecCtx(s, xid)
	require.NoError(t, create.Push(ctx, tuple.NewTuple()))
	require.Equal(t, 1, result.Len())

	id, err := result.At(0).Last().Node()
	require.NoError(t, err)

	remove := operators.NewRemoveNode(0, nil)
	require.NoError(t, remove.Push(ctx, tuple.NewTuple().Append(tuple.NodeCell(id))))

	_, err = s.NodeByID(xid, id)
	assert.Error(t, err)
}

func TestShortestPathOperator(t *testing.T) {
	s, xid := newTestStore(t)
	label := s.GetCode("Person")
	knows := s.GetCode("knows")

	a, err := s.AddNode(xid, label, nil)
	require.NoError(t, err)
	b, err := s.AddNode(xid, label, nil)
	require.NoError(t, err)
	c, err := s.AddNode(xid, label, nil)
	require.NoError(t, err)
	_, err = s.AddRelationship(xid, a, b, knows, nil)
	require.NoError(t, err)
	_, err = s.AddRelationship(xid, b, c, knows, nil)
	require.NoError(t, err)

	result := tuple.NewResultSet()
	collect := operators.NewCollect(0, result)
	sp := operators.NewShortestPath(0, knows, false, false, collect)

	ctx := newExecCtx(s, xid)
	in := tuple.NewTuple().Append(tuple.NodeCell(a)).Append(tuple.NodeCell(c))
	require.NoError(t, sp.Push(ctx, in))

	require.Equal(t, 1, result.Len())
	path, err := result.At(0).Last().NodeArray()
	require.NoError(t, err)
	assert.Equal(t, []ids.NodeID{a, b, c}, path)
}
