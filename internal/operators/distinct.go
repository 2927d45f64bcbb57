package operators

import (
	"sync"

	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Distinct deduplicates tuples by structural equality (spec §4.3). Kept
// simple (linear scan of seen tuples) since the source's equivalent
// `collect.cpp` dedup is also a small per-pipeline accumulator, not an
// indexed structure. seen is guarded by a mutex since a scan-rooted
// pipeline may push into the same Distinct instance from multiple
// chunk-worker goroutines (spec §5 Shared-resource policy).
type Distinct struct {
	base
	mu   sync.Mutex
	seen []*tuple.Tuple
}

// NewDistinct builds a Distinct operator.
func NewDistinct(operatorID int, subscriber Operator) *Distinct {
	return &Distinct{base: base{OperatorID: operatorID, Subscriber: subscriber}}
}

func (d *Distinct) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	d.mu.Lock()
	for _, s := range d.seen {
		if s.Equal(t) {
			d.mu.Unlock()
			return nil
		}
	}
	d.seen = append(d.seen, t)
	d.mu.Unlock()
	return d.emit(ctx, t)
}

func (d *Distinct) Close(ctx *ExecCtx) error { return d.closeSubscriber(ctx) }

// UnionAll concatenates its left and right pipelines' tuples (spec §4.3).
// Both upstream pipelines push directly into the same UnionAll instance;
// it performs no deduplication or reordering of its own. Grounded on
// query/codegen/operators/union.cpp.
type UnionAll struct {
	base
}

// NewUnionAll builds a UnionAll forwarding every pushed tuple unchanged.
func NewUnionAll(operatorID int, subscriber Operator) *UnionAll {
	return &UnionAll{base: base{OperatorID: operatorID, Subscriber: subscriber}}
}

func (u *UnionAll) Push(ctx *ExecCtx, t *tuple.Tuple) error { return u.emit(ctx, t) }
func (u *UnionAll) Close(ctx *ExecCtx) error                { return u.closeSubscriber(ctx) }
