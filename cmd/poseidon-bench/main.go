// Command poseidon-bench seeds an in-memory graph and runs a few canned
// plans through internal/driver, printing row counts and per-pipeline
// timing. It is ambient CLI tooling (spec's Non-goals exclude a
// query-language REPL, not a demo/benchmark harness), adapted from
// persistor/cmd/persistor-cli/main.go's cobra.Command wiring style.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	flagNodes  int
	flagChunks int
)

func main() {
	log := logrus.StandardLogger()
	log.SetLevel(logrus.WarnLevel)

	rootCmd := &cobra.Command{
		Use:     "poseidon-bench",
		Short:   "Seed an in-memory graph and run canned query plans against it",
		Version: version,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.PersistentFlags().IntVar(&flagNodes, "nodes", 2000, "number of Person nodes to seed")
	rootCmd.PersistentFlags().IntVar(&flagChunks, "chunks", 4, "scan chunk fan-out")

	rootCmd.AddCommand(newScanCmd(log))
	rootCmd.AddCommand(newTraverseCmd(log))
	rootCmd.AddCommand(newShortestPathCmd(log))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
