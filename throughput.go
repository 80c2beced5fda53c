package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var throughputCmd = &cobra.Command{
	Use:   "throughput <2x2|4x3>",
	Short: "Time Value Iteration with different numbers of goroutines",
	Long: `Solves an environment with Value Iteration for every count given with
--goroutine-counts, --repeats times each, and writes one run record per solve
as CSV under --output-dir.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		counts, err := cmd.Flags().GetIntSlice("goroutine-counts")
		if err != nil {
			return err
		}
		repeats, err := cmd.Flags().GetInt("repeats")
		if err != nil {
			return err
		}

		r, err := selectEnvironment(cfg)
		if err != nil {
			return err
		}
		dir, err := r.Throughput(cfg, counts, repeats)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "records written to %s\n", dir)
		return nil
	},
}

func init() {
	throughputCmd.Flags().IntSlice("goroutine-counts", []int{1, 2, 4, 8}, "Goroutine counts to compare")
	throughputCmd.Flags().Int("repeats", 3, "Runs per goroutine count")
	rootCmd.AddCommand(throughputCmd)
}
