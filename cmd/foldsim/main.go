package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "foldsim",
	Short: "Stochastic kinetic simulator for nucleic-acid folding",
	Long: `foldsim runs Gillespie-style stochastic trajectories over two-strand
folding systems described by a config file (JSON or YAML). Each trajectory
selects elementary moves weighted by rate and advances the clock by
exponentially distributed waiting times until an absorbing state or a limit
is reached.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
