package operators

import (
	"github.com/dbis-ilm/poseidon-go/internal/jointable"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// hashKey returns the raw hash(x) = x for the 64-bit entity id at pos (spec
// §4.4 "Keys are 64-bit entity ids"); non-entity cells fall back to
// jointable.HashKey's string hash. The table mods this by its own
// configured bucket count.
func hashKey(t *tuple.Tuple, pos int) uint64 {
	c := t.At(pos)
	if id, err := c.Node(); err == nil {
		return uint64(id)
	}
	if id, err := c.Rel(); err == nil {
		return uint64(id)
	}
	return jointable.HashKey(c.Text())
}

func keysEqual(t *tuple.Tuple, pos int, other *tuple.Tuple, otherPos int) bool {
	return t.At(pos).Equal(other.At(otherPos))
}

// CrossJoin emits every (left, right) concatenation (spec §4.3, §4.4).
type CrossJoin struct {
	base
	JoinID int
}

// NewCrossJoin builds a CrossJoin probing joinID's materialized right side.
func NewCrossJoin(operatorID, joinID int, subscriber Operator) *CrossJoin {
	return &CrossJoin{base: base{OperatorID: operatorID, Subscriber: subscriber}, JoinID: joinID}
}

func (j *CrossJoin) Push(ctx *ExecCtx, left *tuple.Tuple) error {
	for _, right := range ctx.Joins.RHS(j.JoinID) {
		if err := j.emit(ctx, left.Concat(right)); err != nil {
			return err
		}
	}
	return nil
}

func (j *CrossJoin) Close(ctx *ExecCtx) error { return j.closeSubscriber(ctx) }

// NestedLoopJoin emits a pair iff the key ids at left_pos/right_pos are
// equal, scanning the entire materialized right side per left tuple (spec
// §4.3, §4.4). Grounded on
// query/codegen/operators/join/nested_loop_join.cpp.
type NestedLoopJoin struct {
	base
	JoinID            int
	LeftPos, RightPos int
}

// NewNestedLoopJoin builds a NestedLoopJoin comparing leftPos against
// rightPos.
func NewNestedLoopJoin(operatorID, joinID, leftPos, rightPos int, subscriber Operator) *NestedLoopJoin {
	return &NestedLoopJoin{base: base{OperatorID: operatorID, Subscriber: subscriber}, JoinID: joinID, LeftPos: leftPos, RightPos: rightPos}
}

func (j *NestedLoopJoin) Push(ctx *ExecCtx, left *tuple.Tuple) error {
	for _, right := range ctx.Joins.RHS(j.JoinID) {
		if keysEqual(left, j.LeftPos, right, j.RightPos) {
			if err := j.emit(ctx, left.Concat(right)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (j *NestedLoopJoin) Close(ctx *ExecCtx) error { return j.closeSubscriber(ctx) }

// HashJoin probes the right side's bucket at hash(left_key) mod the join
// table's configured bucket count (default 10),
// emitting matches with equal ids (spec §4.3, §4.4). Grounded on
// query/codegen/operators/join/hash_join.cpp.
type HashJoin struct {
	base
	JoinID            int
	LeftPos, RightPos int
}

// NewHashJoin builds a HashJoin probing joinID's bucketed right side.
func NewHashJoin(operatorID, joinID, leftPos, rightPos int, subscriber Operator) *HashJoin {
	return &HashJoin{base: base{OperatorID: operatorID, Subscriber: subscriber}, JoinID: joinID, LeftPos: leftPos, RightPos: rightPos}
}

func (j *HashJoin) Push(ctx *ExecCtx, left *tuple.Tuple) error {
	key := hashKey(left, j.LeftPos)
	for _, right := range ctx.Joins.HashBucket(j.JoinID, key) {
		if keysEqual(left, j.LeftPos, right, j.RightPos) {
			if err := j.emit(ctx, left.Concat(right)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (j *HashJoin) Close(ctx *ExecCtx) error { return j.closeSubscriber(ctx) }

// LeftOuterJoin is like NestedLoopJoin, but if no right tuple matches a
// left tuple it emits one output with a dangling=true marker and null
// right fields (spec §4.3). Grounded on
// query/codegen/operators/join/outer_join.cpp. RightWidth is the number of
// cells a matching right tuple would contribute, so the dangling row's
// shape is consistent with a matched row.
type LeftOuterJoin struct {
	base
	JoinID            int
	LeftPos, RightPos int
	RightWidth        int
}

// NewLeftOuterJoin builds a LeftOuterJoin comparing leftPos against
// rightPos, padding dangling rows to rightWidth null cells.
func NewLeftOuterJoin(operatorID, joinID, leftPos, rightPos, rightWidth int, subscriber Operator) *LeftOuterJoin {
	return &LeftOuterJoin{base: base{OperatorID: operatorID, Subscriber: subscriber}, JoinID: joinID, LeftPos: leftPos, RightPos: rightPos, RightWidth: rightWidth}
}

// Push emits the dangling marker as the output tuple's final cell
// (0 = matched, 1 = dangling), after the (possibly null-padded) right
// fields.
func (j *LeftOuterJoin) Push(ctx *ExecCtx, left *tuple.Tuple) error {
	matched := false
	for _, right := range ctx.Joins.RHS(j.JoinID) {
		if keysEqual(left, j.LeftPos, right, j.RightPos) {
			matched = true
			out := left.Concat(right).Append(tuple.IntCell(0))
			if err := j.emit(ctx, out); err != nil {
				return err
			}
		}
	}
	if !matched {
		out := left.Clone()
		for i := 0; i < j.RightWidth; i++ {
			out.Append(tuple.Null())
		}
		out.Append(tuple.IntCell(1))
		if err := j.emit(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

func (j *LeftOuterJoin) Close(ctx *ExecCtx) error { return j.closeSubscriber(ctx) }
