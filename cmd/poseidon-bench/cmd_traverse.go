package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
	"github.com/dbis-ilm/poseidon-go/internal/operators"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

// newTraverseCmd builds scan -> foreach_relationship(out, "knows") ->
// projection -> collect, exercising one-hop traversal over the seeded
// "knows" edges.
func newTraverseCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "traverse",
		Short: "Scan Person nodes and follow their outgoing knows edges",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := seedGraph(flagNodes, log)
			result := tuple.NewResultSet()

			collect := operators.NewCollect(4, result)
			proj := operators.NewProjection(3, []operators.Item{operators.ForwardItem(0), operators.ForwardItem(1)}, nil, collect)
			hop := operators.NewForeachRelationship1Hop(2, operators.Out, g.knows, proj)
			scan := operators.NewScan(1, []ids.DictCode{g.personL}, 0, g.store.NodeCount(), hop)

			plan := &driver.Plan{Pipelines: []driver.Pipeline{{ID: "traverse", Root: scan, Chunks: flagChunks}}}
			d := driver.New(g.store, g.tm, log)
			runPlan("traverse", d, plan, result.Len)
			return nil
		},
	}
}
