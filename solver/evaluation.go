package solver

import (
	"math"

	"mdp/model"
)

// EvaluatePolicy refines u in place towards the utility of following policy
// for the given number of sweeps, and returns it. Unlike Value Iteration the
// sweep reuses utilities already updated earlier in the same sweep. Terminal
// states are left untouched.
func EvaluatePolicy[S comparable](m *model.MDP[S], policy model.Policy[S], reward model.Reward[S], gamma float64, u model.Utility[S], sweeps int) (model.Utility[S], error) {
	if err := checkDiscount(gamma); err != nil {
		return nil, err
	}
	if sweeps < 0 {
		return nil, invalid("negative sweep count %d", sweeps)
	}
	r, err := rewards(m, reward)
	if err != nil {
		return nil, err
	}
	choices, err := m.Choices(policy)
	if err != nil {
		return nil, err
	}
	values, err := m.Values(u)
	if err != nil {
		return nil, err
	}

	w := newWorkspace(m)
	for i := 0; i < sweeps; i++ {
		evaluationSweep(w, m, choices, gamma, r, values)
	}

	for i, a := range choices {
		if a >= 0 {
			u[m.State(i)] = values[i]
		}
	}
	return u, nil
}

// evaluationSweep performs one in-place sweep of the fixed-policy backup and
// returns the largest utility change it made.
func evaluationSweep[S comparable](w *workspace, m *model.MDP[S], choices []int, gamma float64, r, u []float64) float64 {
	change := 0.0
	for i, a := range choices {
		if a < 0 {
			continue
		}
		updated := r[i] + gamma*w.expectation(m.OutcomesAt(a), m.Transitions(i), u)
		change = math.Max(change, math.Abs(updated-u[i]))
		u[i] = updated
	}
	return change
}
