package operators

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/filterexpr"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// NodeHasLabel drops tuples whose last node's label does not match (spec
// §4.3). Grounded on query/codegen/operators/has_label.cpp's
// cond-branch-to-consume-or-return shape, restated as a boolean guard.
type NodeHasLabel struct {
	base
	Label ids.DictCode
}

// NewNodeHasLabel builds a NodeHasLabel predicate over label.
func NewNodeHasLabel(operatorID int, label ids.DictCode, subscriber Operator) *NodeHasLabel {
	return &NodeHasLabel{base: base{OperatorID: operatorID, Subscriber: subscriber}, Label: label}
}

func (n *NodeHasLabel) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	id, err := t.Last().Node()
	if err != nil {
		return qerrors.NewOperatorError(n.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("node_has_label: last cell is not a node: %v", err))
	}
	node, err := ctx.Store.NodeByID(ctx.XID, id)
	if err != nil {
		return qerrors.NewOperatorError(n.OperatorID, qerrors.ErrUnknownProperty, err.Error())
	}
	if node.Label != n.Label {
		return nil
	}
	return n.emit(ctx, t)
}

func (n *NodeHasLabel) Close(ctx *ExecCtx) error { return n.closeSubscriber(ctx) }

// entityAt resolves the entity a FilterTuple/Projection property lookup
// runs against: the cell at pos, which must be a node or relationship.
func entityAt(t *tuple.Tuple, pos int) (filterexpr.Entity, error) {
	c := t.At(pos)
	if id, err := c.Node(); err == nil {
		return filterexpr.NodeEntity(id), nil
	}
	if id, err := c.Rel(); err == nil {
		return filterexpr.RelEntity(id), nil
	}
	return filterexpr.Entity{}, fmt.Errorf("cell at position %d is neither a node nor a relationship", pos)
}

// FilterTuple interprets expr over the tuple's last node/relationship,
// dropping tuples where the result is false (spec §4.3, §4.5).
type FilterTuple struct {
	base
	Expr *filterexpr.Node
	Reg  filterexpr.Registry
}

// NewFilterTuple builds a FilterTuple evaluating expr against the tuple's
// last entity, with reg available for any `call` predicate.
func NewFilterTuple(operatorID int, expr *filterexpr.Node, reg filterexpr.Registry, subscriber Operator) *FilterTuple {
	return &FilterTuple{base: base{OperatorID: operatorID, Subscriber: subscriber}, Expr: expr, Reg: reg}
}

func (f *FilterTuple) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	entity, err := entityAt(t, t.Len()-1)
	if err != nil {
		return qerrors.NewOperatorError(f.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("filter_tuple: %v", err))
	}
	result, err := filterexpr.Eval(ctx.Store, ctx.XID, entity, f.Reg, f.Expr)
	if err != nil {
		return qerrors.NewOperatorError(f.OperatorID, qerrors.ErrUnknownProperty, err.Error())
	}
	if !filterexpr.Bool(result) {
		return nil
	}
	return f.emit(ctx, t)
}

func (f *FilterTuple) Close(ctx *ExecCtx) error { return f.closeSubscriber(ctx) }
