package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mdp/config"
	"mdp/solver"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "mdp",
	Short: "Solve finite Markov Decision Processes",
	Long: `Computes optimal utilities and policies of finite MDPs with Value Iteration
and Policy Iteration. Environments are the built-in 2x2 and 4x3 worlds or a
YAML description given with --file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	defaults := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.String("file", "", "YAML environment file (instead of 2x2 or 4x3)")
	flags.Float64("gamma", defaults.Gamma, "Discount factor")
	flags.Float64("delta", defaults.Delta, "Value Iteration convergence threshold")
	flags.Int("iterations", defaults.Iterations, fmt.Sprintf("Value Iteration sweep cap (%d for unlimited)", solver.NoLimit))
	flags.Int("viterations", defaults.VIterations, "Policy Iteration evaluation sweeps per round and round cap")
	flags.Int("goroutines", defaults.Goroutines, "Goroutines per Value Iteration sweep")
	flags.Bool("quiet", defaults.Quiet, "Do not print results")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("metrics-addr", defaults.MetricsAddr, "Serve Prometheus metrics on this address after solving")
	flags.String("output-dir", defaults.OutputDir, "Directory for experiment records")
}

// loadConfig merges flags, MDP_* environment variables and the config file.
// The first positional argument selects the environment.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	v, err := config.NewViper(cmd.Flags(), configFile)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		v.Set("environment", args[0])
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Level())
	return cfg, nil
}

func setupLogging(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

func main() {
	Execute()
}
