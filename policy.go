package main

import (
	"github.com/spf13/cobra"

	"mdp/metrics"
)

var policyCmd = &cobra.Command{
	Use:   "policy <2x2|4x3>",
	Short: "Solve an environment with Policy Iteration",
	Long: `Runs Policy Iteration from the environment's starting policy, evaluating each
policy with --viterations sweeps for at most --viterations rounds, and prints
the action chosen in each non-terminal state.`,
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
			return r.Policy(cfg, cmd.OutOrStdout(), collector)
		})
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
}
