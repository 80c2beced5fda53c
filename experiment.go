package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment <2x2|4x3>",
	Short: "Solve an environment over a range of discount factors",
	Long: `Runs Value Iteration and Policy Iteration for every discount given with
--gammas and writes run, sweep and utility records as CSV under --output-dir.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("gammas") {
			cfg.Gammas, err = cmd.Flags().GetFloat64Slice("gammas")
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		r, err := selectEnvironment(cfg)
		if err != nil {
			return err
		}
		dir, err := r.Experiment(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "records written to %s\n", dir)
		return nil
	},
}

func init() {
	experimentCmd.Flags().Float64Slice("gammas", nil, "Discount factors to compare (default from config)")
	rootCmd.AddCommand(experimentCmd)
}
