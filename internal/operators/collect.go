package operators

import "github.com/dbis-ilm/poseidon-go/internal/tuple"

// Collect is the terminal sink of a left pipeline: it appends every pushed
// tuple to a result set and calls Notify once the pipeline drains (spec §6
// "Result set surface: append(tuple), data, notify()"). Grounded on
// query/codegen/operators/collect.cpp.
type Collect struct {
	base
	Result *tuple.ResultSet
}

// NewCollect builds a Collect operator appending into result.
func NewCollect(operatorID int, result *tuple.ResultSet) *Collect {
	return &Collect{base: base{OperatorID: operatorID}, Result: result}
}

func (c *Collect) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	c.Result.Append(t)
	return nil
}

func (c *Collect) Close(ctx *ExecCtx) error {
	c.Result.Notify()
	return nil
}
