package api_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/poseidon-go/internal/api"
	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func seedStore(t *testing.T) (*gstore.Store, *gstore.TransactionManager) {
	t.Helper()
	tm := gstore.NewTransactionManager()
	store := gstore.New(tm, discardLogger())

	xid := tm.Begin()
	person := store.GetCode("Person")
	if _, err := store.AddNode(xid, person, nil); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := store.AddNode(xid, person, nil); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	require.NoError(t, tm.Commit(xid))
	return store, tm
}

func TestBuildPlanScanProjectCollect(t *testing.T) {
	store, tm := seedStore(t)

	planJSON := `{
		"pipelines": [{
			"id": "p0",
			"root": {
				"type": "scan",
				"id": 1,
				"labels": ["Person"],
				"subscriber": {
					"type": "projection",
					"id": 2,
					"items": [{"kind": "forward", "pos": 0}],
					"subscriber": {"type": "collect", "id": 3}
				}
			}
		}]
	}`

	plan, profile, results, err := api.BuildPlan(store, []byte(planJSON))
	require.NoError(t, err)
	require.False(t, profile)
	require.Len(t, plan.Pipelines, 1)
	require.Contains(t, results, 3)

	d := driver.New(store, tm, discardLogger())
	_, err = d.Run(context.Background(), plan, false)
	require.NoError(t, err)

	rows := results[3].Data()
	require.Len(t, rows, 2)
}

func TestBuildPlanRejectsUnknownOperatorType(t *testing.T) {
	store, _ := seedStore(t)
	_, _, _, err := api.BuildPlan(store, []byte(`{"pipelines":[{"id":"p0","root":{"type":"bogus","id":1}}]}`))
	require.Error(t, err)
}

func TestBuildPlanRejectsNonSourceRoot(t *testing.T) {
	store, _ := seedStore(t)
	_, _, _, err := api.BuildPlan(store, []byte(`{"pipelines":[{"id":"p0","root":{"type":"collect","id":1}}]}`))
	require.Error(t, err)
}

func TestBuildPlanRejectsMalformedJSON(t *testing.T) {
	store, _ := seedStore(t)
	_, _, _, err := api.BuildPlan(store, []byte(`not json`))
	require.Error(t, err)
}
