package filterexpr

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Func is a user function registered under a name, consumed by Call nodes
// (spec §4.5 "user function call"; shared with the Projection udf(fn, args)
// item, spec §4.3).
type Func func(args []tuple.Cell) (tuple.Cell, error)

// Registry resolves function names to their implementation.
type Registry map[string]Func

// flatten appends n's post-order traversal to out (spec §4.5 "evaluation is
// a post-order walk").
func flatten(n *Node, out []*Node) []*Node {
	for _, c := range n.Children {
		out = flatten(c, out)
	}
	return append(out, n)
}

// Eval walks expr post-order over an explicit operand stack, resolving Key
// leaves against entity and Call nodes against reg, and returns the single
// value left on the stack (spec §4.5). FilterTuple (spec §4.3) additionally
// requires the result to coerce to a boolean via Bool.
func Eval(store graph.GraphStore, xid ids.XID, entity Entity, reg Registry, expr *Node) (tuple.Cell, error) {
	order := flatten(expr, nil)
	stack := make([]tuple.Cell, 0, len(order))

	pop := func() tuple.Cell {
		last := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return last
	}

	for _, n := range order {
		switch n.Kind {
		case Number:
			stack = append(stack, tuple.DoubleCell(n.Number))
		case String:
			stack = append(stack, tuple.StringCell(n.Text))
		case Time:
			stack = append(stack, tuple.TimeCell(n.When))
		case Key:
			v, err := entity.property(store, xid, n.Key)
			if err != nil {
				return tuple.Null(), fmt.Errorf("filterexpr: key %q: %w", n.Key, err)
			}
			stack = append(stack, v)
		case Eq, Le, Lt, Ge, Gt:
			right := pop()
			left := pop()
			if left.IsNull() || right.IsNull() {
				// A missing property is null; every comparison with it is false.
				stack = append(stack, tuple.IntCell(0))
				continue
			}
			cmp, err := compare(left, right)
			if err != nil {
				return tuple.Null(), fmt.Errorf("filterexpr: compare: %w", err)
			}
			stack = append(stack, tuple.IntCell(boolInt(predicate(n.Kind, cmp))))
		case And:
			right := pop()
			left := pop()
			stack = append(stack, tuple.IntCell(boolInt(asBool(left) && asBool(right))))
		case Or:
			right := pop()
			left := pop()
			stack = append(stack, tuple.IntCell(boolInt(asBool(left) || asBool(right))))
		case Call:
			args := make([]tuple.Cell, len(n.Children))
			for i := len(n.Children) - 1; i >= 0; i-- {
				args[i] = pop()
			}
			fn, ok := reg[n.Func]
			if !ok {
				return tuple.Null(), fmt.Errorf("filterexpr: unknown function %q", n.Func)
			}
			v, err := fn(args)
			if err != nil {
				return tuple.Null(), fmt.Errorf("filterexpr: call %q: %w", n.Func, err)
			}
			stack = append(stack, v)
		default:
			return tuple.Null(), fmt.Errorf("filterexpr: unknown node kind %d", n.Kind)
		}
	}

	if len(stack) != 1 {
		return tuple.Null(), fmt.Errorf("filterexpr: malformed expression, %d values left on stack", len(stack))
	}
	return stack[0], nil
}

// Bool coerces a FilterTuple result to a boolean: nonzero ints are true,
// matching predicate results pushed as 1/0 by Eval.
func Bool(c tuple.Cell) bool {
	v, err := c.Int()
	if err != nil {
		return false
	}
	return v != 0
}

func asBool(c tuple.Cell) bool { return Bool(c) }

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func predicate(k Kind, cmp int) bool {
	switch k {
	case Eq:
		return cmp == 0
	case Le:
		return cmp <= 0
	case Lt:
		return cmp < 0
	case Ge:
		return cmp >= 0
	case Gt:
		return cmp > 0
	default:
		return false
	}
}

// compare implements the "type-specific comparator (integer, double)" (spec
// §4.5), extended to string and time tokens since those are also leaf
// kinds: same-kind string/time operands compare lexicographically/
// chronologically, everything else compares as double (Cell.Double already
// coerces int/uint/double uniformly).
func compare(a, b tuple.Cell) (int, error) {
	if a.Kind() == tuple.KindString && b.Kind() == tuple.KindString {
		as, _ := a.String()
		bs, _ := b.String()
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind() == tuple.KindTime && b.Kind() == tuple.KindTime {
		at, _ := a.Time()
		bt, _ := b.Time()
		switch {
		case at.Before(bt):
			return -1, nil
		case at.After(bt):
			return 1, nil
		default:
			return 0, nil
		}
	}
	ad, err := a.Double()
	if err != nil {
		return 0, err
	}
	bd, err := b.Double()
	if err != nil {
		return 0, err
	}
	switch {
	case ad < bd:
		return -1, nil
	case ad > bd:
		return 1, nil
	default:
		return 0, nil
	}
}
