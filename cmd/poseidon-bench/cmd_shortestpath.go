package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/operators"
	"github.com/dbis-ilm/poseidon-go/internal/tuple"
)

const shortestPathJoinID = 1

// newShortestPathCmd builds the two-pipeline shape a binary shortest-path
// operator requires: a right pipeline materializing the target node into
// the join side-table, and a left pipeline crossing a single source node
// against it before running ShortestPath (spec §4.3/§4.4).
func newShortestPathCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "shortest-path",
		Short: "Find the shortest knows-path between the first and last seeded nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := seedGraph(flagNodes, log)
			result := tuple.NewResultSet()

			sourceIdx := 0
			targetIdx := len(g.people) - 1

			rightEnd := operators.NewEndPipeline(10, shortestPathJoinID)
			rightScan := operators.NewScan(9, nil, targetIdx, targetIdx+1, rightEnd)
			rightPipeline := driver.Pipeline{ID: "target", Root: rightScan, Chunks: 1}

			collect := operators.NewCollect(4, result)
			proj := operators.NewProjection(3, []operators.Item{operators.ForwardItem(2)}, nil, collect)
			sp := operators.NewShortestPath(2, g.knows, false, false, proj)
			cross := operators.NewCrossJoin(1, shortestPathJoinID, sp)
			leftScan := operators.NewScan(0, nil, sourceIdx, sourceIdx+1, cross)
			leftPipeline := driver.Pipeline{ID: "source", Root: leftScan, Chunks: 1}

			plan := &driver.Plan{Pipelines: []driver.Pipeline{rightPipeline, leftPipeline}}
			d := driver.New(g.store, g.tm, log)
			runPlan("shortest-path", d, plan, result.Len)
			return nil
		},
	}
}
