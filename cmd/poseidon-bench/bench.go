package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/gstore"
	"github.com/dbis-ilm/poseidon-go/internal/ids"
)

// seededGraph is a freshly built in-memory graph: n Person nodes, each
// connected by a "knows" relationship to a handful of later-indexed nodes
// (a simple forward-only random graph, enough to exercise scan, traversal,
// and shortest-path plans without needing a real dataset).
type seededGraph struct {
	store   *gstore.Store
	tm      *gstore.TransactionManager
	people  []ids.NodeID
	knows   ids.DictCode
	personL ids.DictCode
}

func seedGraph(n int, log *logrus.Logger) *seededGraph {
	tm := gstore.NewTransactionManager()
	store := gstore.New(tm, log)

	xid := tm.Begin()
	person := store.GetCode("Person")
	knows := store.GetCode("knows")

	people := make([]ids.NodeID, n)
	for i := 0; i < n; i++ {
		id, err := store.AddNode(xid, person, nil)
		if err != nil {
			panic(err)
		}
		people[i] = id
	}

	const fanout = 3
	for i := range people {
		for k := 0; k < fanout; k++ {
			if i+1 >= n {
				break
			}
			j := i + 1 + rand.Intn(n-i-1) //nolint:gosec // benchmark data, not security sensitive
			if _, err := store.AddRelationship(xid, people[i], people[j], knows, nil); err != nil {
				continue
			}
		}
	}
	if err := tm.Commit(xid); err != nil {
		panic(err)
	}

	return &seededGraph{store: store, tm: tm, people: people, knows: knows, personL: person}
}

// runPlan executes plan and prints a one-line summary per pipeline plus
// total wall time.
func runPlan(name string, d *driver.Driver, plan *driver.Plan, rowsOf func() int) {
	prof, err := d.Run(context.Background(), plan, true)
	if err != nil {
		fmt.Printf("%s: FAILED: %v\n", name, err)
		return
	}
	fmt.Printf("%s: %d rows, %s total\n", name, rowsOf(), prof.Total)
	for _, p := range prof.Pipelines {
		fmt.Printf("  pipeline %s: %s\n", p.ID, p.Duration)
	}
}
