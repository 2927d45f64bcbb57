package operators

import "github.com/dbis-ilm/poseidon-go/internal/tuple"

// EndPipeline terminates a right pipeline by materializing each tuple into
// the side-table of the owning join (spec §4.3, §4.4). Grounded on
// query/codegen/proc/joiner.{hpp,cpp}'s materialize entry points.
type EndPipeline struct {
	base
	JoinID int
	Hash   bool
	KeyPos int
}

// NewEndPipeline builds an EndPipeline materializing into joinID's
// unbucketed side-table.
func NewEndPipeline(operatorID, joinID int) *EndPipeline {
	return &EndPipeline{base: base{OperatorID: operatorID}, JoinID: joinID}
}

// NewHashEndPipeline builds an EndPipeline that additionally buckets each
// tuple by hash(key at keyPos) mod the join's configured bucket count (spec
// §4.3 "for hash join, the pipeline also computes bucket = key_id mod 10").
func NewHashEndPipeline(operatorID, joinID, keyPos int) *EndPipeline {
	return &EndPipeline{base: base{OperatorID: operatorID}, JoinID: joinID, Hash: true, KeyPos: keyPos}
}

func (e *EndPipeline) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	ctx.Joins.MaterializeRHS(e.JoinID, t)
	if e.Hash {
		key := hashKey(t, e.KeyPos)
		ctx.Joins.MaterializeHash(e.JoinID, key, t)
	}
	return nil
}

func (e *EndPipeline) Close(ctx *ExecCtx) error { return nil }
