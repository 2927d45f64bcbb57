package main

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/operators"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSeedGraphProducesRequestedNodeCount(t *testing.T) {
	g := seedGraph(50, testLogger())
	require.Len(t, g.people, 50)
	require.Equal(t, 50, g.store.NodeCount())
}

func TestSeedGraphScanPlanVisitsEverySeededNode(t *testing.T) {
	g := seedGraph(25, testLogger())
	result := tuple.NewResultSet()

	collect := operators.NewCollect(2, result)
	scan := operators.NewScan(1, nil, 0, g.store.NodeCount(), collect)

	plan := &driver.Plan{Pipelines: []driver.Pipeline{{ID: "p0", Root: scan, Chunks: 1}}}
	d := driver.New(g.store, g.tm, testLogger())
	runPlan("test-scan", d, plan, result.Len)

	require.Equal(t, 25, result.Len())
}
