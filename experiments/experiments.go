package experiments

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"mdp/config"
	"mdp/metrics"
	"mdp/model"
	"mdp/solver"
)

// RunDiscountSweep solves env with Value Iteration and Policy Iteration for
// every discount in cfg.Gammas and stores the run records, the per-sweep
// utility changes and the resulting utilities and policies as CSV files.
// It returns the directory the files were written to.
func RunDiscountSweep[S comparable](env model.Environment[S], cfg *config.Config) (string, error) {
	var (
		runs      []metrics.RunRecord
		sweeps    []metrics.SweepRecord
		utilities []metrics.UtilityRecord
	)

	log.Info().Msgf("starting discount sweep on %s over gammas %v...", env.Name, cfg.Gammas)

	for gi, gamma := range cfg.Gammas {
		log.Info().Msgf("starting discount %d of %d (gamma=%v)...", gi+1, len(cfg.Gammas), gamma)

		// Value Iteration, with the greedy policy it implies
		collector := metrics.NewCollector()
		vi := solver.NewValueIterator[S](
			solver.WithDelta(cfg.Delta),
			solver.WithMaxIterations(cfg.SweepCap(gamma)),
			solver.WithGoroutines(cfg.Goroutines),
			solver.WithMetrics(collector),
		)
		u, metric, err := vi.Solve(env.MDP, gamma, env.Reward)
		if err != nil {
			return "", fmt.Errorf("value iteration with gamma %v: %w", gamma, err)
		}
		greedy, err := solver.GreedyPolicy(env.MDP, u)
		if err != nil {
			return "", fmt.Errorf("greedy policy with gamma %v: %w", gamma, err)
		}
		id := len(runs) + 1
		runs = append(runs, metrics.RunRecord{ID: id, Gamma: gamma, SolveMetric: metric})
		sweeps = append(sweeps, sweepRecords(id, metric)...)
		utilities = append(utilities, utilityRecords(id, env.MDP, u, greedy)...)

		// Policy Iteration from the environment's starting policy
		collector = metrics.NewCollector()
		pi := solver.NewPolicyIterator[S](
			solver.WithEvaluationSweeps(cfg.VIterations),
			solver.WithMaxRounds(cfg.VIterations),
			solver.WithMetrics(collector),
		)
		policy, metric, err := pi.Solve(env.MDP, gamma, env.Reward, env.Policy.Clone())
		if err != nil {
			return "", fmt.Errorf("policy iteration with gamma %v: %w", gamma, err)
		}
		values, err := solver.EvaluatePolicy(env.MDP, policy, env.Reward, gamma, rewardTable(env), cfg.VIterations)
		if err != nil {
			return "", fmt.Errorf("policy evaluation with gamma %v: %w", gamma, err)
		}
		id = len(runs) + 1
		runs = append(runs, metrics.RunRecord{ID: id, Gamma: gamma, SolveMetric: metric})
		sweeps = append(sweeps, sweepRecords(id, metric)...)
		utilities = append(utilities, utilityRecords(id, env.MDP, values, policy)...)

		log.Info().Msgf("completed discount %d of %d", gi+1, len(cfg.Gammas))
	}

	log.Info().Msgf("completed discount sweep on %s", env.Name)

	writer, err := metrics.NewWriter(cfg.OutputDir, "discount_"+env.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	err = writer.WriteRuns(runs)
	if err != nil {
		return "", fmt.Errorf("failed to store run records: %w", err)
	}
	log.Info().Msg("stored run records")

	err = writer.WriteSweeps(sweeps)
	if err != nil {
		return "", fmt.Errorf("failed to store sweep records: %w", err)
	}
	log.Info().Msg("stored sweep records")

	err = writer.WriteUtilities(utilities)
	if err != nil {
		return "", fmt.Errorf("failed to store utility records: %w", err)
	}
	log.Info().Msg("stored utility records")

	return writer.Dir(), nil
}

func sweepRecords(run int, metric metrics.SolveMetric) []metrics.SweepRecord {
	records := make([]metrics.SweepRecord, len(metric.Changes))
	for i, change := range metric.Changes {
		records[i] = metrics.SweepRecord{Run: run, Sweep: i + 1, Change: change}
	}
	return records
}

// rewardTable seeds a utility table with the immediate rewards.
func rewardTable[S comparable](env model.Environment[S]) model.Utility[S] {
	u := make(model.Utility[S], env.MDP.Len())
	for _, s := range env.MDP.States() {
		u[s] = env.Reward(s)
	}
	return u
}

// utilityRecords lists every state in canonical order.
func utilityRecords[S comparable](run int, m *model.MDP[S], u model.Utility[S], policy model.Policy[S]) []metrics.UtilityRecord {
	records := make([]metrics.UtilityRecord, 0, m.Len())
	for _, s := range m.States() {
		record := metrics.UtilityRecord{Run: run, State: fmt.Sprint(s), Utility: u[s]}
		if !m.IsTerminal(s) {
			record.Action = string(policy[s])
		}
		records = append(records, record)
	}
	return records
}
