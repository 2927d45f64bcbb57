package operators

import (
	"sync"

	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Limit forwards the first n tuples then signals end-of-pipeline upstream
// (spec §4.3, §5 Cancellation). Grounded on
// query/codegen/operators/limit.cpp's counter-and-branch-to-main-return
// shape. count is guarded by a mutex since a scan-rooted pipeline may push
// into the same Limit instance from multiple chunk-worker goroutines
// (spec §5 Shared-resource policy).
type Limit struct {
	base
	N     int
	mu    sync.Mutex
	count int
}

// NewLimit builds a Limit forwarding at most n tuples.
func NewLimit(operatorID, n int, subscriber Operator) *Limit {
	return &Limit{base: base{OperatorID: operatorID, Subscriber: subscriber}, N: n}
}

func (l *Limit) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	l.mu.Lock()
	if l.count >= l.N {
		l.mu.Unlock()
		return ErrLimitReached
	}
	l.count++
	reached := l.count >= l.N
	l.mu.Unlock()

	if err := l.emit(ctx, t); err != nil {
		return err
	}
	if reached {
		return ErrLimitReached
	}
	return nil
}

func (l *Limit) Close(ctx *ExecCtx) error { return l.closeSubscriber(ctx) }
