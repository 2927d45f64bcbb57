package operators

import (
	"errors"
	"fmt"

	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// Scan iterates the node vector over a chunk range, filtering by label
// (spec §4.3 "Scan (by labels)"). Grounded on
// query/codegen/operators/scan.cpp's chunk-range loop.
type Scan struct {
	base
	Labels []ids.DictCode
	First  int
	Last   int
}

// NewScan returns a Scan over node-vector slots [first, last), surviving
// nodes whose label is any of labels, pushing to subscriber.
func NewScan(operatorID int, labels []ids.DictCode, first, last int, subscriber Operator) *Scan {
	return &Scan{base: base{OperatorID: operatorID, Subscriber: subscriber}, Labels: labels, First: first, Last: last}
}

func (s *Scan) matches(label ids.DictCode) bool {
	if len(s.Labels) == 0 {
		return true
	}
	for _, l := range s.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Run drives the scan: visits every visible node in [First, Last), pushing
// a fresh one-cell tuple for each surviving node (spec §4.3 "push (…, node)
// for each surviving node. Visibility enforced via the transactional
// view"). An ErrLimitReached from downstream is a normal early stop.
func (s *Scan) Run(ctx *ExecCtx) error {
	var pushErr error
	rangeErr := ctx.Store.NodeRange(ctx.XID, s.First, s.Last, func(n graph.NodeRef) bool {
		if !s.matches(n.Label) {
			return true
		}
		t := tuple.NewTuple().Append(tuple.NodeCell(n.ID))
		if e := s.emit(ctx, t); e != nil {
			pushErr = e
			return false
		}
		return true
	})
	if pushErr != nil {
		if errors.Is(pushErr, ErrLimitReached) {
			return s.closeSubscriber(ctx)
		}
		return pushErr
	}
	if rangeErr != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrTypeMismatch, fmt.Sprintf("scan: %v", rangeErr))
	}
	return s.closeSubscriber(ctx)
}

// Push exists so Scan satisfies Operator for plans embedding it mid-tree
// (e.g. as the right side of a CrossJoin feeding a ShortestPath operator);
// it simply re-runs from the supplied chunk range, ignoring t.
func (s *Scan) Push(ctx *ExecCtx, _ *tuple.Tuple) error { return s.Run(ctx) }

// Close is a no-op: Run already closes the subscriber when the scan ends.
func (s *Scan) Close(ctx *ExecCtx) error { return nil }

// IndexScan looks up a single property value in an index and pushes zero
// or one tuple (spec §4.3 "IndexScan(label, property, value)").
type IndexScan struct {
	base
	Index graph.Index
	Value tuple.Cell
}

// NewIndexScan builds an IndexScan over idx for value.
func NewIndexScan(operatorID int, idx graph.Index, value tuple.Cell, subscriber Operator) *IndexScan {
	return &IndexScan{base: base{OperatorID: operatorID, Subscriber: subscriber}, Index: idx, Value: value}
}

// Run looks up Value in Index and pushes a one-cell tuple for the first
// matching node id, if any; further matches are not pushed.
func (s *IndexScan) Run(ctx *ExecCtx) error {
	if s.Index == nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrIndexMiss, "no index bound")
	}
	var err error
	lookupErr := s.Index.Lookup(s.Value, func(id ids.NodeID) bool {
		t := tuple.NewTuple().Append(tuple.NodeCell(id))
		if pushErr := s.emit(ctx, t); pushErr != nil {
			err = pushErr
		}
		return false
	})
	if err != nil {
		if errors.Is(err, ErrLimitReached) {
			return s.closeSubscriber(ctx)
		}
		return err
	}
	if lookupErr != nil {
		return qerrors.NewOperatorError(s.OperatorID, qerrors.ErrIndexMiss, lookupErr.Error())
	}
	return s.closeSubscriber(ctx)
}

func (s *IndexScan) Push(ctx *ExecCtx, _ *tuple.Tuple) error { return s.Run(ctx) }
func (s *IndexScan) Close(ctx *ExecCtx) error                { return nil }
