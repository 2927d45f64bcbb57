package operators

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/filterexpr"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// ItemKind identifies one Projection item's shape (spec §4.3 Projection).
type ItemKind int

const (
	Forward ItemKind = iota
	PropertyItem
	UDFItem
	ConditionalItem
)

// Item is one rewritten output cell of a Projection (spec §4.3).
type Item struct {
	Kind ItemKind

	// Forward, Property, UDF args: source tuple position(s).
	Pos  int
	Args []int

	// Property: property key and the type to coerce the value to.
	Key        string
	ResultType tuple.Kind

	// UDF: registered function name.
	Func string

	// Conditional: property keys that must all exist on the entity at Pos,
	// and the literal strings emitted for the true/false outcome.
	HasProperties []string
	Then, Else    string
}

// ForwardItem copies the cell at pos.
func ForwardItem(pos int) Item { return Item{Kind: Forward, Pos: pos} }

// PropertyItemAt fetches property key from the entity at pos, coerced to
// resultType.
func PropertyItemAt(pos int, key string, resultType tuple.Kind) Item {
	return Item{Kind: PropertyItem, Pos: pos, Key: key, ResultType: resultType}
}

// UDFItemAt calls fn with the cells at argPositions.
func UDFItemAt(fn string, argPositions ...int) Item {
	return Item{Kind: UDFItem, Func: fn, Args: argPositions}
}

// ConditionalItemAt emits thenStr if every property in hasProperties exists
// on the entity at pos, elseStr otherwise.
func ConditionalItemAt(pos int, hasProperties []string, thenStr, elseStr string) Item {
	return Item{Kind: ConditionalItem, Pos: pos, HasProperties: hasProperties, Then: thenStr, Else: elseStr}
}

// Projection rewrites the tuple into a new shape (spec §4.3). Grounded on
// query/codegen/operators/project.cpp's per-item codegen switch.
type Projection struct {
	base
	Items []Item
	Reg   filterexpr.Registry
}

// NewProjection builds a Projection emitting items, in order, as the
// downstream tuple's cells.
func NewProjection(operatorID int, items []Item, reg filterexpr.Registry, subscriber Operator) *Projection {
	return &Projection{base: base{OperatorID: operatorID, Subscriber: subscriber}, Items: items, Reg: reg}
}

func coerce(c tuple.Cell, want tuple.Kind) (tuple.Cell, error) {
	if c.Kind() == want {
		return c, nil
	}
	switch want {
	case tuple.KindInt:
		v, err := c.Int()
		if err != nil {
			return tuple.Null(), err
		}
		return tuple.IntCell(v), nil
	case tuple.KindDouble:
		v, err := c.Double()
		if err != nil {
			return tuple.Null(), err
		}
		return tuple.DoubleCell(v), nil
	case tuple.KindUint:
		v, err := c.Uint()
		if err != nil {
			return tuple.Null(), err
		}
		return tuple.UintCell(v), nil
	case tuple.KindString:
		return tuple.StringCell(c.Text()), nil
	default:
		return c, nil
	}
}

func (p *Projection) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	out := tuple.NewTuple()
	for _, item := range p.Items {
		switch item.Kind {
		case Forward:
			out.Append(t.At(item.Pos))
		case PropertyItem:
			entity, err := entityAt(t, item.Pos)
			if err != nil {
				return qerrors.NewOperatorError(p.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("projection: %v", err))
			}
			v, err := filterexpr.Property(ctx.Store, ctx.XID, entity, item.Key)
			if err != nil {
				return qerrors.NewOperatorError(p.OperatorID, qerrors.ErrUnknownProperty, err.Error())
			}
			coerced, err := coerce(v, item.ResultType)
			if err != nil {
				return qerrors.NewOperatorError(p.OperatorID, qerrors.ErrTypeMismatch, err.Error())
			}
			out.Append(coerced)
		case UDFItem:
			fn, ok := p.Reg[item.Func]
			if !ok {
				return qerrors.NewOperatorError(p.OperatorID, qerrors.ErrInvalidPlan, fmt.Sprintf("projection: unknown udf %q", item.Func))
			}
			args := make([]tuple.Cell, len(item.Args))
			for i, pos := range item.Args {
				args[i] = t.At(pos)
			}
			v, err := fn(args)
			if err != nil {
				return qerrors.NewOperatorError(p.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("projection: udf %q: %v", item.Func, err))
			}
			out.Append(v)
		case ConditionalItem:
			entity, err := entityAt(t, item.Pos)
			if err != nil {
				return qerrors.NewOperatorError(p.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("projection: %v", err))
			}
			allPresent := true
			for _, key := range item.HasProperties {
				v, err := filterexpr.Property(ctx.Store, ctx.XID, entity, key)
				if err != nil || v.IsNull() {
					allPresent = false
					break
				}
			}
			if allPresent {
				out.Append(tuple.StringCell(item.Then))
			} else {
				out.Append(tuple.StringCell(item.Else))
			}
		default:
			return qerrors.NewOperatorError(p.OperatorID, qerrors.ErrInvalidPlan, fmt.Sprintf("projection: unknown item kind %d", item.Kind))
		}
	}
	return p.emit(ctx, out)
}

func (p *Projection) Close(ctx *ExecCtx) error { return p.closeSubscriber(ctx) }
