package operators

import "github.com/dbis-ilm/poseidon-go/internal/tuple"

// OrderBy is a blocking operator: it collects every incoming tuple during
// the push phase and sorts the accumulated result set in its finish phase
// (spec §4.3 "OrderBy(comparator) — a blocking operator registered in the
// finish phase"). Grounded on query/codegen/operators/sort.cpp.
type OrderBy struct {
	base
	Less      func(a, b *tuple.Tuple) bool
	collected *tuple.ResultSet
}

// NewOrderBy builds an OrderBy sorting with less.
func NewOrderBy(operatorID int, less func(a, b *tuple.Tuple) bool, subscriber Operator) *OrderBy {
	return &OrderBy{base: base{OperatorID: operatorID, Subscriber: subscriber}, Less: less, collected: tuple.NewResultSet()}
}

func (o *OrderBy) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	o.collected.Append(t)
	return nil
}

// Close sorts the collected tuples and forwards each downstream in order,
// then propagates Close (spec §5 Ordering "OrderBy is the only operator
// guaranteeing a final global order").
func (o *OrderBy) Close(ctx *ExecCtx) error {
	o.collected.Sort(o.Less)
	for i := 0; i < o.collected.Len(); i++ {
		if err := o.emit(ctx, o.collected.At(i)); err != nil {
			return err
		}
	}
	return o.closeSubscriber(ctx)
}
