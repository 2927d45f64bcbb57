package operators

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// CreateNode creates a node under the current transaction and emits it as
// a new tuple cell (spec §4.3 DML). Grounded on
// query/codegen/operators/create.cpp.
type CreateNode struct {
	base
	Label      ids.DictCode
	Properties []graph.PropertyInput
}

// NewCreateNode builds a CreateNode operator.
func NewCreateNode(operatorID int, label ids.DictCode, properties []graph.PropertyInput, subscriber Operator) *CreateNode {
	return &CreateNode{base: base{OperatorID: operatorID, Subscriber: subscriber}, Label: label, Properties: properties}
}

func (c *CreateNode) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	id, err := ctx.Store.AddNode(ctx.XID, c.Label, c.Properties)
	if err != nil {
		return qerrors.NewOperatorError(c.OperatorID, qerrors.ErrTransactionAborted, err.Error())
	}
	return c.emit(ctx, t.Clone().Append(tuple.NodeCell(id)))
}

func (c *CreateNode) Close(ctx *ExecCtx) error { return c.closeSubscriber(ctx) }

// CreateRelationship creates a relationship between the nodes at from_pos
// and to_pos and emits it as a new tuple cell (spec §4.3 DML).
type CreateRelationship struct {
	base
	Label          ids.DictCode
	FromPos, ToPos int
	Properties     []graph.PropertyInput
}

// NewCreateRelationship builds a CreateRelationship operator.
func NewCreateRelationship(operatorID int, label ids.DictCode, fromPos, toPos int, properties []graph.PropertyInput, subscriber Operator) *CreateRelationship {
	return &CreateRelationship{base: base{OperatorID: operatorID, Subscriber: subscriber}, Label: label, FromPos: fromPos, ToPos: toPos, Properties: properties}
}

func (c *CreateRelationship) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	from, err := t.At(c.FromPos).Node()
	if err != nil {
		return qerrors.NewOperatorError(c.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("create_relationship: from_pos: %v", err))
	}
	to, err := t.At(c.ToPos).Node()
	if err != nil {
		return qerrors.NewOperatorError(c.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("create_relationship: to_pos: %v", err))
	}
	id, err := ctx.Store.AddRelationship(ctx.XID, from, to, c.Label, c.Properties)
	if err != nil {
		return qerrors.NewOperatorError(c.OperatorID, qerrors.ErrTransactionAborted, err.Error())
	}
	return c.emit(ctx, t.Clone().Append(tuple.RelCell(id)))
}

func (c *CreateRelationship) Close(ctx *ExecCtx) error { return c.closeSubscriber(ctx) }

// UpdateNode merges properties into the tuple's last node (spec §4.3 DML).
type UpdateNode struct {
	base
	Properties []graph.PropertyInput
}

// NewUpdateNode builds an UpdateNode operator.
func NewUpdateNode(operatorID int, properties []graph.PropertyInput, subscriber Operator) *UpdateNode {
	return &UpdateNode{base: base{OperatorID: operatorID, Subscriber: subscriber}, Properties: properties}
}

func (u *UpdateNode) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	id, err := t.Last().Node()
	if err != nil {
		return qerrors.NewOperatorError(u.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("update_node: last cell is not a node: %v", err))
	}
	if err := ctx.Store.UpdateNode(ctx.XID, id, u.Properties); err != nil {
		return qerrors.NewOperatorError(u.OperatorID, qerrors.ErrTransactionAborted, err.Error())
	}
	return u.emit(ctx, t)
}

func (u *UpdateNode) Close(ctx *ExecCtx) error { return u.closeSubscriber(ctx) }

// DetachNode deletes every relationship incident to the tuple's last node
// (spec §4.3 DML).
type DetachNode struct {
	base
}

// NewDetachNode builds a DetachNode operator.
func NewDetachNode(operatorID int, subscriber Operator) *DetachNode {
	return &DetachNode{base: base{OperatorID: operatorID, Subscriber: subscriber}}
}

func (d *DetachNode) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	id, err := t.Last().Node()
	if err != nil {
		return qerrors.NewOperatorError(d.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("detach_node: last cell is not a node: %v", err))
	}
	if err := ctx.Store.DetachNode(ctx.XID, id); err != nil {
		return qerrors.NewOperatorError(d.OperatorID, qerrors.ErrTransactionAborted, err.Error())
	}
	return d.emit(ctx, t)
}

func (d *DetachNode) Close(ctx *ExecCtx) error { return d.closeSubscriber(ctx) }

// RemoveNode deletes the tuple's last node; it must already be detached
// (spec §4.3 DML, §3 Node lifecycle "never deleted directly — logically
// detached first").
type RemoveNode struct {
	base
}

// NewRemoveNode builds a RemoveNode operator.
func NewRemoveNode(operatorID int, subscriber Operator) *RemoveNode {
	return &RemoveNode{base: base{OperatorID: operatorID, Subscriber: subscriber}}
}

func (r *RemoveNode) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	id, err := t.Last().Node()
	if err != nil {
		return qerrors.NewOperatorError(r.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("remove_node: last cell is not a node: %v", err))
	}
	if err := ctx.Store.RemoveNode(ctx.XID, id); err != nil {
		return qerrors.NewOperatorError(r.OperatorID, qerrors.ErrTransactionAborted, err.Error())
	}
	return r.emit(ctx, t)
}

func (r *RemoveNode) Close(ctx *ExecCtx) error { return r.closeSubscriber(ctx) }

// RemoveRelationship deletes the tuple's last relationship (spec §4.3 DML).
type RemoveRelationship struct {
	base
}

// NewRemoveRelationship builds a RemoveRelationship operator.
func NewRemoveRelationship(operatorID int, subscriber Operator) *RemoveRelationship {
	return &RemoveRelationship{base: base{OperatorID: operatorID, Subscriber: subscriber}}
}

func (r *RemoveRelationship) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	id, err := t.Last().Rel()
	if err != nil {
		return qerrors.NewOperatorError(r.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("remove_relationship: last cell is not a relationship: %v", err))
	}
	if err := ctx.Store.DeleteRelationship(ctx.XID, id); err != nil {
		return qerrors.NewOperatorError(r.OperatorID, qerrors.ErrTransactionAborted, err.Error())
	}
	return r.emit(ctx, t)
}

func (r *RemoveRelationship) Close(ctx *ExecCtx) error { return r.closeSubscriber(ctx) }
