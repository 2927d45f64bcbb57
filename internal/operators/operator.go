// Package operators implements the physical operator algebra (spec §4.3):
// a left-deep chain of unary operators broken by binary operators, driven
// by a push model — each operator computes what it needs from an incoming
// tuple and calls its subscriber's Push for every surviving output row.
//
// Grounded on query/codegen/operators/*.cpp (one file per operator in the
// source, one `codegen_inline_visitor::visit` overload per operator type)
// and query/plan_op/algorithms.cpp (the non-codegen ShortestPath/
// WeightedShortestPath/NumLinks/OldestTweet algorithm operators, the
// closest surviving reference for a tree-walking, non-JIT operator). The
// codegen visitor emits LLVM basic blocks per operator; this package is the
// interpreted baseline the spec requires (§9 "an interpreted tree walker is
// the mandatory baseline; code-gen is an orthogonal optimization sharing
// the exact operator contracts").
package operators

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/jointable"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// ExecCtx is the per-thread scratch the spec calls for (§9 "pass a
// per-thread ExecCtx struct through each operator's push path" in place of
// the source's thread-local maps).
type ExecCtx struct {
	Store graph.GraphStore
	XID   ids.XID
	Log   *logrus.Entry
	Joins *jointable.Table
}

// Operator is a physical operator in a pipeline. Push delivers one input
// row; Close runs the operator's finish phase (spec §4.3 "open → push →
// close"; Open carries no per-operator state in this baseline, so it is
// folded into construction).
type Operator interface {
	Push(ctx *ExecCtx, t *tuple.Tuple) error
	Close(ctx *ExecCtx) error
}

// Source is a pipeline-driving operator: it pulls rows from the store
// itself (Scan, IndexScan) rather than being pushed into.
type Source interface {
	Run(ctx *ExecCtx) error
}

// ErrLimitReached unwinds the push chain to the driving scan loop once
// Limit has forwarded its n tuples (spec §4.3 Limit "signals end-of-
// pipeline to its upstream, causes the scan loop to terminate"; §5
// Cancellation). Scan's Run treats it as a normal stop, not a fatal error.
var ErrLimitReached = errors.New("operators: limit reached")

// base holds the operator_id/subscriber pair every operator carries (spec
// §4.3, §6 "Plan surface ... operator_id, type_, subscriber").
type base struct {
	OperatorID int
	Subscriber Operator
}

func (b *base) emit(ctx *ExecCtx, t *tuple.Tuple) error {
	if b.Subscriber == nil {
		return nil
	}
	return b.Subscriber.Push(ctx, t)
}

// closeSubscriber forwards Close to the subscriber; most unary operators
// have no finish-phase state of their own and simply propagate it.
func (b *base) closeSubscriber(ctx *ExecCtx) error {
	if b.Subscriber == nil {
		return nil
	}
	return b.Subscriber.Close(ctx)
}
