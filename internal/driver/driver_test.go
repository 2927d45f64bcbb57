package driver_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/operators"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

func newTestStore(t *testing.T) (*gstore.Store, *gstore.TransactionManager) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	tm := gstore.NewTransactionManager()
	return gstore.New(tm, log), tm
}

// TestRunScanRootedPipelineFansOutOverChunks seeds 40 Person nodes and
// verifies a chunked scan pipeline collects all of them regardless of how
// many chunk workers the driver splits the node range across (spec §5
// "parallel threads over disjoint chunks of the node vector").
func TestRunScanRootedPipelineFansOutOverChunks(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	tm := gstore.NewTransactionManager()
	store := gstore.New(tm, log)

	setupXID := tm.Begin()
	personLabel := store.GetCode("Person")
	for i := 0; i < 40; i++ {
		_, err := store.AddNode(setupXID, personLabel, nil)
		require.NoError(t, err)
	}
	require.NoError(t, tm.Commit(setupXID))

	result := tuple.NewResultSet()
	collect := operators.NewCollect(1, result)
	scan := operators.NewScan(0, []ids.DictCode{personLabel}, 0, store.NodeCount(), collect)

	d := driver.New(store, tm, log)
	plan := &driver.Plan{Pipelines: []driver.Pipeline{
		{ID: "scan-people", Root: scan, Chunks: 4},
	}}

	prof, err := d.Run(context.Background(), plan, true)
	require.NoError(t, err)
	require.NotNil(t, prof)
	require.Len(t, prof.Pipelines, 1)
	require.Equal(t, 40, result.Len())
}

// TestRunLimitStopsEarlyAcrossPipeline exercises Limit downstream of a
// single-chunk scan: exactly n tuples survive regardless of scan order.
func TestRunLimitStopsEarlyAcrossPipeline(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	tm := gstore.NewTransactionManager()
	store := gstore.New(tm, log)

	xid := tm.Begin()
	label := store.GetCode("Person")
	for i := 0; i < 10; i++ {
		_, err := store.AddNode(xid, label, nil)
		require.NoError(t, err)
	}
	require.NoError(t, tm.Commit(xid))

	result := tuple.NewResultSet()
	collect := operators.NewCollect(2, result)
	limit := operators.NewLimit(1, 3, collect)
	scan := operators.NewScan(0, []ids.DictCode{label}, 0, store.NodeCount(), limit)

	d := driver.New(store, tm, log)
	plan := &driver.Plan{Pipelines: []driver.Pipeline{{ID: "limited-scan", Root: scan, Chunks: 1}}}

	_, err := d.Run(context.Background(), plan, false)
	require.NoError(t, err)
	require.Equal(t, 3, result.Len())
}

// singleTuplePush is a minimal operators.Source that pushes one tuple into
// its subscriber then closes, for driving a pipeline whose root isn't a
// real Scan (spec §6 "Plan surface ... constructed externally" permits any
// operator tree shape).
type singleTuplePush struct {
	t          *tuple.Tuple
	subscriber operators.Operator
}

func (s *singleTuplePush) Run(ctx *operators.ExecCtx) error {
	if err := s.subscriber.Push(ctx, s.t); err != nil {
		return err
	}
	return s.subscriber.Close(ctx)
}

// TestRunAbortsTransactionOnOperatorError ensures a failing DML operator
// surfaces its error and aborts the transaction rather than committing a
// partial result (spec §4.7 Failure).
func TestRunAbortsTransactionOnOperatorError(t *testing.T) {
	store, tm := newTestStore(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	result := tuple.NewResultSet()
	collect := operators.NewCollect(2, result)
	// RemoveNode on an id the store never allocated is a genuine failure,
	// which the operator surfaces and the driver must propagate and abort
	// on rather than commit a partial result.
	remove := operators.NewRemoveNode(1, collect)
	badTuple := tuple.NewTuple().Append(tuple.NodeCell(ids.NodeID(9999)))
	root := &singleTuplePush{t: badTuple, subscriber: remove}

	d := driver.New(store, tm, log)
	plan := &driver.Plan{Pipelines: []driver.Pipeline{{ID: "bad-remove", Root: root, Chunks: 1}}}

	_, err := d.Run(context.Background(), plan, false)
	require.Error(t, err)
	require.Equal(t, 0, result.Len())
}

// TestRunUpdateNodeIsVisibleAfterCommit runs UpdateNode through the real
// driver and then reads the node back under a brand new transaction: the
// updated property must be visible, not permanently hidden by a dangling
// write-lock left over from the DML operator's xid (spec §3 "versions
// mutated only by their owning transaction until commit").
func TestRunUpdateNodeIsVisibleAfterCommit(t *testing.T) {
	store, tm := newTestStore(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	setupXID := tm.Begin()
	label := store.GetCode("Person")
	nameKey := store.GetCode("name")
	id, err := store.AddNode(setupXID, label, nil)
	require.NoError(t, err)
	require.NoError(t, tm.Commit(setupXID))

	result := tuple.NewResultSet()
	collect := operators.NewCollect(1, result)
	update := operators.NewUpdateNode(0, []graph.PropertyInput{{Key: "name", Value: tuple.StringCell("ada")}}, collect)
	root := &singleTuplePush{t: tuple.NewTuple().Append(tuple.NodeCell(id)), subscriber: update}

	d := driver.New(store, tm, log)
	plan := &driver.Plan{Pipelines: []driver.Pipeline{{ID: "update-name", Root: root, Chunks: 1}}}

	_, err = d.Run(context.Background(), plan, false)
	require.NoError(t, err)

	readXID := tm.Begin()
	cell, ok, err := store.GetNodeProperty(readXID, id, nameKey)
	require.NoError(t, err)
	require.True(t, ok, "updated property must be visible to a fresh transaction after commit")
	s, err := cell.String()
	require.NoError(t, err)
	require.Equal(t, "ada", s)
	require.NoError(t, tm.Commit(readXID))
}
