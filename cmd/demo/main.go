package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/strandlab/foldsim/internal/kinetics"
)

func main() {
	var (
		sites    = flag.Int("sites", 20, "number of sites on the walk")
		upRate   = flag.Float64("up-rate", 2.0, "rate of stepping up")
		downRate = flag.Float64("down-rate", 1.0, "rate of stepping down")
		seed     = flag.Int64("seed", 1, "random seed")
		runs     = flag.Int("runs", 10, "number of independent trajectories")
	)
	flag.Parse()

	var totalSteps int64
	var totalTime float64
	for i := 0; i < *runs; i++ {
		walker, err := NewWalkerModel(*sites, *upRate, *downRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		sim := kinetics.NewSimulation(
			fmt.Sprintf("walker-%d", i+1), "walker", walker,
			kinetics.SimulationOptions{Seed: *seed + int64(i)},
		)
		res, err := sim.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "trajectory %d failed: %v\n", i+1, err)
			os.Exit(1)
		}
		fmt.Printf("trajectory %2d: steps=%-6d sim_time=%.4g stop=%s state=%s\n",
			i+1, res.Steps, res.FinalTime, res.StopReason, res.FinalState)
		totalSteps += res.Steps
		totalTime += res.FinalTime
	}

	fmt.Printf("\nmean steps=%.1f mean sim_time=%.4g over %d runs\n",
		float64(totalSteps)/float64(*runs), totalTime/float64(*runs), *runs)
}
