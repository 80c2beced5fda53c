package main

import (
	"github.com/spf13/cobra"

	"mdp/metrics"
)

var valueCmd = &cobra.Command{
	Use:   "value <2x2|4x3>",
	Short: "Solve an environment with Value Iteration",
	Long: `Runs Value Iteration until no utility changes by more than --delta, or for
--iterations sweeps, and prints each state's utility and greedy action.

With --gamma 1, states of a --file environment that cannot reach a terminal
state never settle; such runs stop after 10000 sweeps unless --iterations is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		r, err := selectEnvironment(cfg)
		if err != nil {
			return err
		}
		return solve(cfg, func(collector metrics.Collector) error {
			return r.Value(cfg, cmd.OutOrStdout(), collector)
		})
	},
}

func init() {
	rootCmd.AddCommand(valueCmd)
}
