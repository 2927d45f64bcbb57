package operators

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Direction selects which adjacency list ForeachRelationship walks.
type Direction int

const (
	Out Direction = iota
	In
)

// ForeachRelationship enumerates relationships incident to the tuple's last
// node (spec §4.3 "ForeachRelationship(dir, label[, hops])"). Grounded on
// query/codegen/operators/foreach_rship.cpp and, for the variable-length
// case, graph.GraphStore.ForeachVariableOutgoing (internal/gstore's BFS).
type ForeachRelationship struct {
	base
	Dir      Direction
	Label    ids.DictCode
	Variable bool
	Min, Max int
}

// NewForeachRelationship1Hop builds the 1-hop form, pushing (…, rship) for
// every matching relationship of the tuple's last node.
func NewForeachRelationship1Hop(operatorID int, dir Direction, label ids.DictCode, subscriber Operator) *ForeachRelationship {
	return &ForeachRelationship{base: base{OperatorID: operatorID, Subscriber: subscriber}, Dir: dir, Label: label}
}

// NewForeachRelationshipVariable builds the variable-length form (min..max
// hops), pushing (…, final_relationship) once per reached relationship;
// only dir=Out is supported, matching graph.GraphStore's
// ForeachVariableOutgoing (spec §4.1).
func NewForeachRelationshipVariable(operatorID int, label ids.DictCode, min, max int, subscriber Operator) *ForeachRelationship {
	return &ForeachRelationship{base: base{OperatorID: operatorID, Subscriber: subscriber}, Dir: Out, Label: label, Variable: true, Min: min, Max: max}
}

// Push resolves the tuple's last node and enumerates its relationships,
// pushing one output tuple per surviving relationship.
func (f *ForeachRelationship) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	n, err := t.Last().Node()
	if err != nil {
		return qerrors.NewOperatorError(f.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("foreach_relationship: last cell is not a node: %v", err))
	}

	var visitErr error
	visit := func(r graph.RelRef) bool {
		if r.Label != f.Label {
			return true
		}
		out := t.Clone().Append(tuple.RelCell(r.ID))
		if e := f.emit(ctx, out); e != nil {
			visitErr = e
			return false
		}
		return true
	}

	if f.Variable {
		if err := ctx.Store.ForeachVariableOutgoing(ctx.XID, n, f.Label, f.Min, f.Max, visit); err != nil && visitErr == nil {
			return qerrors.NewOperatorError(f.OperatorID, qerrors.ErrTypeMismatch, err.Error())
		}
		return visitErr
	}

	var err2 error
	switch f.Dir {
	case Out:
		err2 = ctx.Store.ForeachOutgoing(ctx.XID, n, visit)
	case In:
		err2 = ctx.Store.ForeachIncoming(ctx.XID, n, visit)
	}
	if visitErr != nil {
		return visitErr
	}
	if err2 != nil {
		return qerrors.NewOperatorError(f.OperatorID, qerrors.ErrTypeMismatch, err2.Error())
	}
	return nil
}

func (f *ForeachRelationship) Close(ctx *ExecCtx) error { return f.closeSubscriber(ctx) }

// Expand resolves the relationship's opposite endpoint node and pushes it
// (spec §4.3 "Expand(dir, optional label)").
type Expand struct {
	base
	Dir    Direction
	Labels []ids.DictCode
}

// NewExpand builds an Expand resolving the opposite endpoint in dir,
// optionally filtered to a set of alternative labels.
func NewExpand(operatorID int, dir Direction, labels []ids.DictCode, subscriber Operator) *Expand {
	return &Expand{base: base{OperatorID: operatorID, Subscriber: subscriber}, Dir: dir, Labels: labels}
}

func (e *Expand) matches(label ids.DictCode) bool {
	if len(e.Labels) == 0 {
		return true
	}
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Push resolves the tuple's last relationship's opposite endpoint relative
// to Dir (OUT: the relationship's own direction was src->dst, so the node
// already traversed to is dst; Expand resolves dst when walking forward
// from an outgoing relationship, src when walking an incoming one).
func (e *Expand) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	r, err := t.Last().Rel()
	if err != nil {
		return qerrors.NewOperatorError(e.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("expand: last cell is not a relationship: %v", err))
	}
	rel, err := ctx.Store.RshipByID(ctx.XID, r)
	if err != nil {
		return qerrors.NewOperatorError(e.OperatorID, qerrors.ErrUnknownProperty, err.Error())
	}

	var endpoint ids.NodeID
	switch e.Dir {
	case Out:
		endpoint = rel.Dst
	case In:
		endpoint = rel.Src
	}

	node, err := ctx.Store.NodeByID(ctx.XID, endpoint)
	if err != nil {
		return qerrors.NewOperatorError(e.OperatorID, qerrors.ErrUnknownProperty, err.Error())
	}
	if !e.matches(node.Label) {
		return nil
	}
	return e.emit(ctx, t.Clone().Append(tuple.NodeCell(node.ID)))
}

func (e *Expand) Close(ctx *ExecCtx) error { return e.closeSubscriber(ctx) }
