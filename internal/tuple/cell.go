// Package tuple implements the tagged-variant tuple cell and the ordered
// result set that operators push rows into and read rows from (spec §3,
// §4.3). A tuple is the current row flowing through a pipeline: producers
// append new cells onto its tail, consumers read positional fields.
package tuple

import (
	"fmt"
	"time"

	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// Kind tags which variant a Cell holds.
type Kind int

const (
	// KindNull holds no value.
	KindNull Kind = iota
	// KindNode holds a node id.
	KindNode
	// KindRel holds a relationship id.
	KindRel
	// KindInt holds a signed integer.
	KindInt
	// KindDouble holds a double-precision float.
	KindDouble
	// KindUint holds an unsigned 64-bit integer.
	KindUint
	// KindString holds a string.
	KindString
	// KindTime holds a date-time.
	KindTime
	// KindNodeArray holds an array of node ids (a path).
	KindNodeArray
	// KindSubresult holds a nested result set (e.g. a subquery).
	KindSubresult
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNode:
		return "node"
	case KindRel:
		return "relationship"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindUint:
		return "uint"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindNodeArray:
		return "node_array"
	case KindSubresult:
		return "subresult"
	default:
		return "unknown"
	}
}

// Cell is a sum type over the values a tuple position can hold.
type Cell struct {
	kind Kind

	node      ids.NodeID
	rel       ids.RelID
	i         int64
	d         float64
	u         uint64
	s         string
	t         time.Time
	nodes     []ids.NodeID
	subresult *ResultSet
}

// Null returns the null cell.
func Null() Cell { return Cell{kind: KindNull} }

// NodeCell wraps a node id.
func NodeCell(n ids.NodeID) Cell { return Cell{kind: KindNode, node: n} }

// RelCell wraps a relationship id.
func RelCell(r ids.RelID) Cell { return Cell{kind: KindRel, rel: r} }

// IntCell wraps a signed integer.
func IntCell(v int64) Cell { return Cell{kind: KindInt, i: v} }

// DoubleCell wraps a double.
func DoubleCell(v float64) Cell { return Cell{kind: KindDouble, d: v} }

// UintCell wraps an unsigned 64-bit integer.
func UintCell(v uint64) Cell { return Cell{kind: KindUint, u: v} }

// StringCell wraps a string.
func StringCell(v string) Cell { return Cell{kind: KindString, s: v} }

// TimeCell wraps a date-time.
func TimeCell(v time.Time) Cell { return Cell{kind: KindTime, t: v} }

// NodeArrayCell wraps a path (array of node ids).
func NodeArrayCell(v []ids.NodeID) Cell { return Cell{kind: KindNodeArray, nodes: v} }

// SubresultCell wraps a nested result set.
func SubresultCell(rs *ResultSet) Cell { return Cell{kind: KindSubresult, subresult: rs} }

// Kind reports which variant c holds.
func (c Cell) Kind() Kind { return c.kind }

// IsNull reports whether c holds the null variant.
func (c Cell) IsNull() bool { return c.kind == KindNull }

// Node returns the node id, or an error if c is not a node cell.
func (c Cell) Node() (ids.NodeID, error) {
	if c.kind != KindNode {
		return ids.UnknownNode, fmt.Errorf("cell is %s, not node", c.kind)
	}
	return c.node, nil
}

// Rel returns the relationship id, or an error if c is not a relationship cell.
func (c Cell) Rel() (ids.RelID, error) {
	if c.kind != KindRel {
		return ids.UnknownRel, fmt.Errorf("cell is %s, not relationship", c.kind)
	}
	return c.rel, nil
}

// Int returns the signed integer, or an error if c is not an int cell.
func (c Cell) Int() (int64, error) {
	if c.kind != KindInt {
		return 0, fmt.Errorf("cell is %s, not int", c.kind)
	}
	return c.i, nil
}

// Double returns the double, coercing from int/uint when possible.
func (c Cell) Double() (float64, error) {
	switch c.kind {
	case KindDouble:
		return c.d, nil
	case KindInt:
		return float64(c.i), nil
	case KindUint:
		return float64(c.u), nil
	default:
		return 0, fmt.Errorf("cell is %s, not double", c.kind)
	}
}

// Uint returns the unsigned integer, or an error if c is not a uint cell.
func (c Cell) Uint() (uint64, error) {
	if c.kind != KindUint {
		return 0, fmt.Errorf("cell is %s, not uint", c.kind)
	}
	return c.u, nil
}

// String returns the string, or an error if c is not a string cell.
func (c Cell) String() (string, error) {
	if c.kind != KindString {
		return "", fmt.Errorf("cell is %s, not string", c.kind)
	}
	return c.s, nil
}

// Time returns the date-time, or an error if c is not a time cell.
func (c Cell) Time() (time.Time, error) {
	if c.kind != KindTime {
		return time.Time{}, fmt.Errorf("cell is %s, not time", c.kind)
	}
	return c.t, nil
}

// NodeArray returns the path, or an error if c is not a node-array cell.
func (c Cell) NodeArray() ([]ids.NodeID, error) {
	if c.kind != KindNodeArray {
		return nil, fmt.Errorf("cell is %s, not node_array", c.kind)
	}
	return c.nodes, nil
}

// Subresult returns the nested result set, or an error if c is not a subresult cell.
func (c Cell) Subresult() (*ResultSet, error) {
	if c.kind != KindSubresult {
		return nil, fmt.Errorf("cell is %s, not subresult", c.kind)
	}
	return c.subresult, nil
}

// Text renders c in the textual form used by GroupBy's composite-key
// construction (spec §4.3 GroupBy): a format stable enough to compare for
// equality, not meant for display.
func (c Cell) Text() string {
	switch c.kind {
	case KindNull:
		return "\x00"
	case KindNode:
		return fmt.Sprintf("N%d", c.node)
	case KindRel:
		return fmt.Sprintf("R%d", c.rel)
	case KindInt:
		return fmt.Sprintf("i%d", c.i)
	case KindDouble:
		return fmt.Sprintf("d%v", c.d)
	case KindUint:
		return fmt.Sprintf("u%d", c.u)
	case KindString:
		return "s" + c.s
	case KindTime:
		return "t" + c.t.UTC().Format(time.RFC3339Nano)
	case KindNodeArray:
		s := "a"
		for _, n := range c.nodes {
			s += fmt.Sprintf(",%d", n)
		}
		return s
	case KindSubresult:
		return fmt.Sprintf("q%p", c.subresult)
	default:
		return ""
	}
}

// Equal reports structural equality between two cells, used by the
// Distinct operator (spec §4.3).
func (c Cell) Equal(other Cell) bool {
	if c.kind != other.kind {
		return false
	}
	return c.Text() == other.Text()
}
