// Package filterexpr implements the FilterTuple predicate evaluator (spec
// §4.5): an expression tree of tokens and predicates, walked post-order over
// an explicit operand stack to produce a boolean (or any cell, for the leaf
// value itself when used outside a predicate context).
//
// The original's filter_expression.hpp/.cpp visitor only survives in its
// LLVM-IR JIT codegen form (fep_visitor_inline walks the tree emitting
// basic blocks and branches instead of evaluating it); no interpreted AST
// header for it was retrieved. The node-kind vocabulary below (number, key,
// str, time tokens; eq/le/lt/ge/gt/and/or/call predicates) is taken from
// that codegen visitor's overload set, restated here as a plain tree that a
// tree walker evaluates directly, since the spec itself notes "the source
// uses JIT-style short-circuit; a tree walker is equivalent".
package filterexpr

import "time"

// Kind identifies which token or predicate a Node represents.
type Kind int

const (
	// Number is a numeric literal (double-valued).
	Number Kind = iota
	// String is a string literal.
	String
	// Time is a date-time literal.
	Time
	// Key is a property-key leaf: resolves to the property item for the
	// given key on the current entity (spec §4.5).
	Key
	// Eq, Le, Lt, Ge, Gt are binary comparison predicates.
	Eq
	Le
	Lt
	Ge
	Gt
	// And, Or are binary logical predicates.
	And
	Or
	// Call is an n-ary user-function predicate (spec §4.5 "user function
	// call"; also the udf(fn, args) Projection item, spec §4.3).
	Call
)

// Node is one expression-tree node. Leaves (Number, String, Time, Key) carry
// their literal value and no children; predicates carry Children and no
// literal value (except Call, which also carries Func).
type Node struct {
	Kind     Kind
	Number   float64
	Text     string
	When     time.Time
	Key      string
	Func     string
	Children []*Node
}

// NumberNode builds a numeric literal leaf.
func NumberNode(v float64) *Node { return &Node{Kind: Number, Number: v} }

// StringNode builds a string literal leaf.
func StringNode(v string) *Node { return &Node{Kind: String, Text: v} }

// TimeNode builds a date-time literal leaf.
func TimeNode(v time.Time) *Node { return &Node{Kind: Time, When: v} }

// KeyNode builds a property-key leaf resolved against the current entity.
func KeyNode(key string) *Node { return &Node{Kind: Key, Key: key} }

func binary(k Kind, left, right *Node) *Node {
	return &Node{Kind: k, Children: []*Node{left, right}}
}

// EqNode, LeNode, LtNode, GeNode, GtNode build the five comparison
// predicates (spec §4.5 "eq, le, lt, ge, gt").
func EqNode(left, right *Node) *Node { return binary(Eq, left, right) }
func LeNode(left, right *Node) *Node { return binary(Le, left, right) }
func LtNode(left, right *Node) *Node { return binary(Lt, left, right) }
func GeNode(left, right *Node) *Node { return binary(Ge, left, right) }
func GtNode(left, right *Node) *Node { return binary(Gt, left, right) }

// AndNode, OrNode build the two logical predicates.
func AndNode(left, right *Node) *Node { return binary(And, left, right) }
func OrNode(left, right *Node) *Node  { return binary(Or, left, right) }

// CallNode builds a user-function application over args, in order.
func CallNode(fn string, args ...*Node) *Node {
	return &Node{Kind: Call, Func: fn, Children: args}
}
