package operators

import (
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/pathfind"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// ShortestPath is the binary shortest-path family of operators (spec §4.3
// "ShortestPath / WeightedShortestPath / KWeightedShortestPath operators"):
// the left input's last-but-one cell is the source node, the last cell is
// the target (via a preceding CrossJoin), and one tuple is emitted per
// path found. Grounded directly on query/plan_op/algorithms.cpp's
// shortest_path_algorithm/weighted_shortest_path_algorithm — the one
// surviving non-codegen operator reference, which reads start/stop the
// same way ("v[v.size()-2]", "v[v.size()-1]").
type ShortestPath struct {
	base
	Label         ids.DictCode
	Bidirectional bool
	AllPaths      bool
	Weighted      bool
	WeightKey     string
	K             int
}

// NewShortestPath builds the unweighted ShortestPath/all-paths operator.
func NewShortestPath(operatorID int, label ids.DictCode, bidirectional, allPaths bool, subscriber Operator) *ShortestPath {
	return &ShortestPath{base: base{OperatorID: operatorID, Subscriber: subscriber}, Label: label, Bidirectional: bidirectional, AllPaths: allPaths}
}

// NewWeightedShortestPath builds the weighted single/all-paths operator,
// reading edge weights from the weightKey property.
func NewWeightedShortestPath(operatorID int, label ids.DictCode, weightKey string, bidirectional, allPaths bool, subscriber Operator) *ShortestPath {
	return &ShortestPath{base: base{OperatorID: operatorID, Subscriber: subscriber}, Label: label, Bidirectional: bidirectional, AllPaths: allPaths, Weighted: true, WeightKey: weightKey}
}

// NewKWeightedShortestPath builds the Yen's k-shortest-paths operator.
func NewKWeightedShortestPath(operatorID int, label ids.DictCode, weightKey string, bidirectional bool, k int, subscriber Operator) *ShortestPath {
	return &ShortestPath{base: base{OperatorID: operatorID, Subscriber: subscriber}, Label: label, Bidirectional: bidirectional, Weighted: true, WeightKey: weightKey, K: k}
}

func (s *ShortestPath) rpred() graph.RelPredicate {
	return func(r graph.RelRef) bool { return r.Label == s.Label }
}

func (s *ShortestPath) weight(ctx *ExecCtx) graph.WeightFunc {
	code := ctx.Store.GetCode(s.WeightKey)
	return func(r graph.RelRef) float64 {
		v, ok, err := ctx.Store.GetRelProperty(ctx.XID, r.ID, code)
		if err != nil || !ok {
			return 0
		}
		d, err := v.Double()
		if err != nil {
			return 0
		}
		return d
	}
}

func (s *ShortestPath) Push(ctx *ExecCtx, t *tuple.Tuple) error {
	if t.Len() < 2 {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrInvalidPlan, "shortest_path: tuple has fewer than 2 cells")
	}
	start, err := t.At(t.Len() - 2).Node()
	if err != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("shortest_path: start cell: %v", err))
	}
	stop, err := t.Last().Node()
	if err != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("shortest_path: stop cell: %v", err))
	}

	switch {
	case s.K > 0:
		return s.pushK(ctx, t, start, stop)
	case s.Weighted && s.AllPaths:
		return s.pushWeightedAll(ctx, t, start, stop)
	case s.Weighted:
		return s.pushWeightedOne(ctx, t, start, stop)
	case s.AllPaths:
		return s.pushUnweightedAll(ctx, t, start, stop)
	default:
		return s.pushUnweightedOne(ctx, t, start, stop)
	}
}

func (s *ShortestPath) pushUnweightedOne(ctx *ExecCtx, t *tuple.Tuple, start, stop ids.NodeID) error {
	result, found, err := pathfind.UnweightedShortestPath(ctx.Store, ctx.XID, start, stop, s.Bidirectional, s.rpred(), nil)
	if err != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, err.Error())
	}
	if !found {
		return nil
	}
	return s.emit(ctx, t.Clone().Append(tuple.NodeArrayCell(result.Path)))
}

func (s *ShortestPath) pushUnweightedAll(ctx *ExecCtx, t *tuple.Tuple, start, stop ids.NodeID) error {
	results, _, err := pathfind.AllUnweightedShortestPaths(ctx.Store, ctx.XID, start, stop, s.Bidirectional, s.rpred(), nil)
	if err != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, err.Error())
	}
	for _, r := range results {
		if err := s.emit(ctx, t.Clone().Append(tuple.NodeArrayCell(r.Path))); err != nil {
			return err
		}
	}
	return nil
}

func (s *ShortestPath) pushWeightedOne(ctx *ExecCtx, t *tuple.Tuple, start, stop ids.NodeID) error {
	result, found, err := pathfind.WeightedShortestPath(ctx.Store, ctx.XID, start, stop, s.Bidirectional, s.rpred(), s.weight(ctx), nil)
	if err != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, err.Error())
	}
	if !found {
		return nil
	}
	return s.emit(ctx, t.Clone().Append(tuple.NodeArrayCell(result.Path)).Append(tuple.DoubleCell(result.Weight)))
}

func (s *ShortestPath) pushWeightedAll(ctx *ExecCtx, t *tuple.Tuple, start, stop ids.NodeID) error {
	results, _, err := pathfind.AllWeightedShortestPaths(ctx.Store, ctx.XID, start, stop, s.Bidirectional, s.rpred(), s.weight(ctx), nil)
	if err != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, err.Error())
	}
	for _, r := range results {
		if err := s.emit(ctx, t.Clone().Append(tuple.NodeArrayCell(r.Path)).Append(tuple.DoubleCell(r.Weight))); err != nil {
			return err
		}
	}
	return nil
}

func (s *ShortestPath) pushK(ctx *ExecCtx, t *tuple.Tuple, start, stop ids.NodeID) error {
	results, _, err := pathfind.KWeightedShortestPaths(ctx.Store, ctx.XID, start, stop, s.K, s.Bidirectional, s.rpred(), s.weight(ctx), nil)
	if err != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, err.Error())
	}
	for _, r := range results {
		if err := s.emit(ctx, t.Clone().Append(tuple.NodeArrayCell(r.Path)).Append(tuple.DoubleCell(r.Weight))); err != nil {
			return err
		}
	}
	return nil
}

func (s *ShortestPath) Close(ctx *ExecCtx) error { return s.closeSubscriber(ctx) }
