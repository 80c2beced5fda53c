// Package config holds the run configuration of the mdp command.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything a solver run needs besides the environment itself.
type Config struct {
	// Environment selection
	Environment string `mapstructure:"environment"` // "2x2" or "4x3"
	File        string `mapstructure:"file"`        // YAML environment, overrides Environment

	// Solver settings
	Gamma       float64 `mapstructure:"gamma"`
	Delta       float64 `mapstructure:"delta"`
	Iterations  int     `mapstructure:"iterations"`
	VIterations int     `mapstructure:"viterations"`
	Goroutines  int     `mapstructure:"goroutines"`

	// Experiment settings
	Gammas    []float64 `mapstructure:"gammas"`
	OutputDir string    `mapstructure:"output_dir"`

	// Output
	Quiet       bool   `mapstructure:"quiet"`
	LogLevel    string `mapstructure:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// FileSweepCap bounds undiscounted Value Iteration on environment files when
// no iteration cap is set. A file may contain states that never reach a
// terminal state, and their utilities then never settle.
const FileSweepCap = 10000

// Keys bound from command-line flags; flag names use dashes instead of underscores.
var flagKeys = []string{
	"environment", "file", "gamma", "delta", "iterations", "viterations",
	"goroutines", "output_dir", "quiet", "log_level", "metrics_addr",
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Environment: "4x3",
		Gamma:       1.0,
		Delta:       1e-4,
		Iterations:  -1, // unlimited
		VIterations: 20,
		Goroutines:  1,
		Gammas:      []float64{0.5, 0.9, 0.99, 1.0},
		OutputDir:   "experiments",
		LogLevel:    "info",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error
	if c.File == "" && c.Environment != "2x2" && c.Environment != "4x3" {
		errs = append(errs, fmt.Errorf("environment must be 2x2 or 4x3, got %q", c.Environment))
	}
	if !validDiscount(c.Gamma) {
		errs = append(errs, fmt.Errorf("gamma must be in [0, 1], got %v", c.Gamma))
	}
	if math.IsNaN(c.Delta) || c.Delta <= 0 {
		errs = append(errs, fmt.Errorf("delta must be positive"))
	}
	if c.Iterations == 0 {
		errs = append(errs, fmt.Errorf("iterations must be positive or -1"))
	}
	if c.VIterations <= 0 {
		errs = append(errs, fmt.Errorf("viterations must be positive"))
	}
	if c.Goroutines <= 0 {
		errs = append(errs, fmt.Errorf("goroutines must be positive"))
	}
	for _, gamma := range c.Gammas {
		if !validDiscount(gamma) {
			errs = append(errs, fmt.Errorf("gammas must be in [0, 1], got %v", gamma))
		}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, info if it cannot be parsed.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// SweepCap returns the Value Iteration sweep cap to use with discount gamma.
// It is Iterations, except that an unlimited, undiscounted run on an
// environment file is capped at FileSweepCap.
func (c *Config) SweepCap(gamma float64) int {
	if c.File != "" && gamma == 1 && c.Iterations < 0 {
		return FileSweepCap
	}
	return c.Iterations
}

func validDiscount(gamma float64) bool {
	return !math.IsNaN(gamma) && gamma >= 0 && gamma <= 1
}

// NewViper binds the known flags of flags to a viper instance that also reads
// MDP_* environment variables and, when configFile is set, a config file.
func NewViper(flags *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("MDP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range flagKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
		if flag := flags.Lookup(strings.ReplaceAll(key, "_", "-")); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes v on top of the defaults and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if v.IsSet("gammas") {
		cfg.Gammas = nil // replace the default list rather than merge into it
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
