package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strandlab/foldsim/internal/kinetics"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Validate a system config file without running anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := kinetics.LoadSystemConfig(args[0])
		if err != nil {
			return err
		}
		pairs := len(cfg.PairEnergies)
		if pairs == 0 {
			pairs = len(cfg.Sequence)
		}
		fmt.Printf("ok: system %q, %d base pairs, rate method %s\n",
			cfg.Name, pairs, cfg.Options.RateMethod)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
