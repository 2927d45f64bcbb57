package operators

import (
	"github.com/dbis-ilm/poseidon-go/internal/grouper"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// GroupBy streams tuples into a Grouper keyed by the textual form of the
// cells at KeyPositions, emitting one representative tuple per group in
// its finish phase (spec §4.3, §4.6). Grounded on
// query/codegen/operators/groupby.cpp.
type GroupBy struct {
	base
	KeyPositions []int
	Grouper      *grouper.Grouper
}

// NewGroupBy builds a GroupBy over keyPositions, sharing g with any
// Aggregate operator reading the same grouping (spec §4.3 "aggregates are
// made available to the downstream via aggregate operator").
func NewGroupBy(operatorID int, keyPositions []int, g *grouper.Grouper, subscriber Operator) *GroupBy {
	return &GroupBy{base: base{OperatorID: operatorID, Subscriber: subscriber}, KeyPositions: keyPositions, Grouper: g}
}

func (g *GroupBy) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	g.Grouper.AddToGroup(t.Key(g.KeyPositions), t)
	return nil
}

// Close emits the grouper's representative tuples, then propagates Close.
func (g *GroupBy) Close(ctx *ExecCtx) error {
	for _, rep := range g.Grouper.Finish(g.KeyPositions) {
		if err := g.emit(ctx, rep); err != nil {
			return err
		}
	}
	return g.closeSubscriber(ctx)
}

// AggregateSpec is one requested aggregate over a grouped position (spec
// §4.3 Aggregate "count, pcount, sum/int|double|uint, avg").
type AggregateSpec struct {
	Kind grouper.Kind
	Pos  int
}

// Aggregate is finish-time: consumes the same Grouper a GroupBy populated
// and, for each group, appends one cell per requested aggregate onto that
// group's representative tuple before forwarding it (spec §4.3).
type Aggregate struct {
	base
	KeyPositions []int
	Grouper      *grouper.Grouper
	Specs        []AggregateSpec
}

// NewAggregate builds an Aggregate computing specs over g's groups.
func NewAggregate(operatorID int, keyPositions []int, g *grouper.Grouper, specs []AggregateSpec, subscriber Operator) *Aggregate {
	return &Aggregate{base: base{OperatorID: operatorID, Subscriber: subscriber}, KeyPositions: keyPositions, Grouper: g, Specs: specs}
}

// Push is a no-op: Aggregate only runs in the finish phase, over the
// Grouper a preceding GroupBy already populated.
func (a *Aggregate) Push(ctx *ExecCtx, t *tuple.Tuple) error { return nil }

func (a *Aggregate) Close(ctx *ExecCtx) error {
	total := a.Grouper.TotalCount()
	for i := 0; i < a.Grouper.GroupCount(); i++ {
		group := a.Grouper.Group(i)
		if group == nil || group.Len() == 0 {
			continue
		}
		rep := tuple.NewTuple()
		first := group.At(0)
		for _, pos := range a.KeyPositions {
			rep.Append(first.At(pos))
		}
		for _, spec := range a.Specs {
			cell, err := grouper.Compute(group, total, spec.Kind, spec.Pos)
			if err != nil {
				return err
			}
			rep.Append(cell)
		}
		if err := a.emit(ctx, rep); err != nil {
			return err
		}
	}
	return a.closeSubscriber(ctx)
}
