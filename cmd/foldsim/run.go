package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strandlab/foldsim/internal/kinetics"
)

var runFlags struct {
	trajectories int
	seed         int64
	dbPath       string
	verbose      bool
}

var runCmd = &cobra.Command{
	Use:   "run <config>",
	Short: "Run trajectories for a system config and print a summary",
	Long: `Run loads a system config, runs the requested number of independent
trajectories (seeds are derived from the base seed) and prints per-trajectory
outcomes plus an aggregate summary. With --db, finished results are also
persisted to a SQLite file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := kinetics.LoadSystemConfig(args[0])
		if err != nil {
			return err
		}
		if runFlags.trajectories > 0 {
			cfg.Options.NumSimulations = runFlags.trajectories
		}
		if runFlags.seed != 0 {
			cfg.Options.Seed = runFlags.seed
		}

		var store *kinetics.ResultStore
		if runFlags.dbPath != "" {
			store, err = kinetics.OpenResultStore(runFlags.dbPath)
			if err != nil {
				return fmt.Errorf("opening result store: %w", err)
			}
			defer store.Close()
		}

		results, err := runTrajectories(cfg, store)
		if err != nil {
			return err
		}
		printSummary(cfg, results)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVarP(&runFlags.trajectories, "trajectories", "n", 0,
		"number of trajectories to run (overrides the config)")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 0,
		"base random seed (overrides the config)")
	runCmd.Flags().StringVar(&runFlags.dbPath, "db", "",
		"SQLite file to persist results to")
	runCmd.Flags().BoolVarP(&runFlags.verbose, "verbose", "v", false,
		"print every trajectory instead of just the summary")
	rootCmd.AddCommand(runCmd)
}

// runTrajectories runs the configured number of independent trajectories,
// deriving per-trajectory seeds from the base seed.
func runTrajectories(cfg kinetics.SystemConfig, store *kinetics.ResultStore) ([]kinetics.TrajectoryResult, error) {
	cfg.ApplyDefaults()
	baseSeed := cfg.Options.Seed
	if baseSeed == 0 {
		baseSeed = 1
	}

	results := make([]kinetics.TrajectoryResult, 0, cfg.Options.NumSimulations)
	for i := 0; i < cfg.Options.NumSimulations; i++ {
		id := fmt.Sprintf("%s-%d", cfg.Name, i+1)
		sim, err := kinetics.BuildSimulation(id, cfg, baseSeed+int64(i), nil)
		if err != nil {
			return nil, err
		}
		res, err := sim.Run()
		if err != nil {
			return nil, fmt.Errorf("trajectory %s: %w", id, err)
		}
		if store != nil {
			if err := store.Save(res); err != nil {
				return nil, fmt.Errorf("persisting %s: %w", id, err)
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// printSummary renders per-trajectory lines (verbose) and aggregate counts.
func printSummary(cfg kinetics.SystemConfig, results []kinetics.TrajectoryResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	if runFlags.verbose {
		fmt.Fprintln(w, "ID\tSEED\tSTEPS\tSIM TIME\tSTOP\tFINAL STATE")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.6g\t%s\t%s\n",
				r.ID, r.Seed, r.Steps, r.FinalTime, r.StopReason, r.FinalState)
		}
		fmt.Fprintln(w)
	}

	byReason := make(map[kinetics.StopReason]int)
	var totalSteps int64
	var totalTime float64
	for _, r := range results {
		byReason[r.StopReason]++
		totalSteps += r.Steps
		totalTime += r.FinalTime
	}

	reasons := make([]string, 0, len(byReason))
	for reason := range byReason {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)

	fmt.Fprintf(w, "system\t%s\n", cfg.Name)
	fmt.Fprintf(w, "trajectories\t%d\n", len(results))
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %s\t%d\n", reason, byReason[kinetics.StopReason(reason)])
	}
	if n := len(results); n > 0 {
		fmt.Fprintf(w, "mean steps\t%.1f\n", float64(totalSteps)/float64(n))
		fmt.Fprintf(w, "mean sim time\t%.6g s\n", totalTime/float64(n))
	}
	_ = w.Flush()
}
