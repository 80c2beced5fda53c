package experiments

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"

	"mdp/config"
	"mdp/metrics"
	"mdp/model"
	"mdp/solver"
)

// RunThroughputSweep times Value Iteration on env with each goroutine count,
// repeats times per count, and stores one run record per solve. Every run
// must reproduce the sequential utilities exactly.
func RunThroughputSweep[S comparable](env model.Environment[S], cfg *config.Config, goroutines []int, repeats int) (string, error) {
	if repeats <= 0 {
		return "", fmt.Errorf("repeats must be positive, got %d", repeats)
	}

	reference, err := solver.ValueIteration(env.MDP, cfg.Gamma, env.Reward, cfg.Delta, cfg.SweepCap(cfg.Gamma))
	if err != nil {
		return "", fmt.Errorf("sequential value iteration: %w", err)
	}

	runs := []metrics.RunRecord{}

	log.Info().Msgf("starting throughput experiment on %s...", env.Name)

	for _, n := range goroutines {
		log.Info().Msgf("starting %d runs with %d goroutines...", repeats, n)

		for i := 0; i < repeats; i++ {
			vi := solver.NewValueIterator[S](
				solver.WithDelta(cfg.Delta),
				solver.WithMaxIterations(cfg.SweepCap(cfg.Gamma)),
				solver.WithGoroutines(n),
				solver.WithMetrics(metrics.NewCollector()),
			)
			u, metric, err := vi.Solve(env.MDP, cfg.Gamma, env.Reward)
			if err != nil {
				return "", fmt.Errorf("value iteration with %d goroutines: %w", n, err)
			}
			if !maps.Equal(u, reference) {
				return "", fmt.Errorf("utilities with %d goroutines differ from the sequential run", n)
			}
			runs = append(runs, metrics.RunRecord{ID: len(runs) + 1, Gamma: cfg.Gamma, SolveMetric: metric})
		}
		log.Info().Msgf("completed runs with %d goroutines", n)
	}

	log.Info().Msg("completed throughput experiment")

	writer, err := metrics.NewWriter(cfg.OutputDir, "throughput_"+env.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	err = writer.WriteRuns(runs)
	if err != nil {
		return "", fmt.Errorf("failed to store run records: %w", err)
	}
	log.Info().Msg("stored run records")

	return writer.Dir(), nil
}
