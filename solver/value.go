package solver

import (
	"math"
	"sync"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"mdp/metrics"
	"mdp/model"
)

// ValueIterator runs Value Iteration. Every sweep reads the utilities of the
// previous sweep only, so the per-state backups of a sweep are independent
// and may run on several goroutines.
type ValueIterator[S comparable] struct {
	options
}

func NewValueIterator[S comparable](opts ...Option) *ValueIterator[S] {
	return &ValueIterator[S]{options: newOptions(opts)}
}

// ValueIteration computes state utilities for m. It stops once no utility
// changes by more than delta in a sweep, or after n sweeps when n > 0.
// n = -1 leaves only the delta test.
func ValueIteration[S comparable](m *model.MDP[S], gamma float64, reward model.Reward[S], delta float64, n int) (model.Utility[S], error) {
	u, _, err := NewValueIterator[S](WithDelta(delta), WithMaxIterations(n)).Solve(m, gamma, reward)
	return u, err
}

func (v *ValueIterator[S]) validate(gamma float64) error {
	if err := checkDiscount(gamma); err != nil {
		return err
	}
	if math.IsNaN(v.delta) || v.delta <= 0 {
		return invalid("delta must be positive, got %v", v.delta)
	}
	if v.maxIterations == 0 {
		return invalid("iteration cap of 0 never sweeps; use a positive cap or %d", NoLimit)
	}
	if v.goroutines <= 0 {
		return invalid("goroutines must be positive, got %d", v.goroutines)
	}
	return nil
}

// Solve returns the utility of every state, terminal states included.
// Utilities start at the states' rewards.
func (v *ValueIterator[S]) Solve(m *model.MDP[S], gamma float64, reward model.Reward[S]) (model.Utility[S], metrics.SolveMetric, error) {
	if err := v.validate(gamma); err != nil {
		return nil, metrics.SolveMetric{}, err
	}
	r, err := rewards(m, reward)
	if err != nil {
		return nil, metrics.SolveMetric{}, err
	}

	goroutines := min(v.goroutines, m.Len())
	workspaces := make([]*workspace, goroutines)
	for i := range workspaces {
		workspaces[i] = newWorkspace(m)
	}

	u := make([]float64, len(r))
	copy(u, r)
	next := make([]float64, len(r))

	v.metrics.Start(ValueMethod, goroutines)
	converged := false
	iterations := 1
	for {
		v.sweep(workspaces, m, gamma, r, u, next)
		change := floats.Distance(next, u, math.Inf(1))
		v.metrics.AddSweep(change)
		log.Debug().Int("iteration", iterations).Float64("change", change).Msg("value iteration sweep")

		u, next = next, u
		if change <= v.delta {
			converged = true
			break
		}
		if v.maxIterations > 0 && iterations == v.maxIterations {
			break
		}
		iterations++
	}
	metric := v.metrics.Complete(converged)

	log.Info().Msgf("value iteration finished after %d sweeps (converged=%t)", iterations, converged)
	return m.Table(u), metric, nil
}

// sweep writes R(s) + gamma * backup(s) for every state into next, reading u.
func (v *ValueIterator[S]) sweep(workspaces []*workspace, m *model.MDP[S], gamma float64, r, u, next []float64) {
	if len(workspaces) == 1 {
		sweepRange(workspaces[0], m, gamma, r, u, next, 0, len(u))
		return
	}

	size := (len(u) + len(workspaces) - 1) / len(workspaces)
	tasks := make(chan int, len(workspaces))
	for lo := 0; lo < len(u); lo += size {
		tasks <- lo
	}
	close(tasks)

	var wg sync.WaitGroup
	for _, w := range workspaces {
		wg.Add(1)
		go func(w *workspace) {
			defer wg.Done()

			for lo := range tasks {
				sweepRange(w, m, gamma, r, u, next, lo, min(lo+size, len(u)))
			}
		}(w)
	}

	wg.Wait()
}

func sweepRange[S comparable](w *workspace, m *model.MDP[S], gamma float64, r, u, next []float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		best, _ := backup(w, m, m.Transitions(i), u)
		next[i] = r[i] + gamma*best
	}
}
