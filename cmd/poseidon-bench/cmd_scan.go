package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/operators"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// newScanCmd builds scan -> projection -> collect, the simplest possible
// pipeline, fanned out over --chunks scan workers.
func newScanCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan every Person node and project its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := seedGraph(flagNodes, log)
			result := tuple.NewResultSet()

			collect := operators.NewCollect(3, result)
			proj := operators.NewProjection(2, []operators.Item{operators.ForwardItem(0)}, nil, collect)
			scan := operators.NewScan(1, []ids.DictCode{g.personL}, 0, g.store.NodeCount(), proj)

			plan := &driver.Plan{Pipelines: []driver.Pipeline{{ID: "scan", Root: scan, Chunks: flagChunks}}}
			d := driver.New(g.store, g.tm, log)
			runPlan("scan", d, plan, result.Len)
			return nil
		},
	}
}
