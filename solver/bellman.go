package solver

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"mdp/model"
)

// workspace holds per-goroutine scratch buffers so backups do not allocate.
type workspace struct {
	q         []float64 // Expected continuation value per action
	neighbors []float64 // Utilities of the current state's neighbors, per slot
}

func newWorkspace[S comparable](m *model.MDP[S]) *workspace {
	return &workspace{
		q:         make([]float64, len(m.Actions())),
		neighbors: make([]float64, m.Slots()),
	}
}

// expectation is the expected utility of the neighbors in next under the
// outcome distribution probs.
func (w *workspace) expectation(probs []float64, next []int, u []float64) float64 {
	for slot, n := range next {
		w.neighbors[slot] = u[n]
	}
	return floats.Dot(probs, w.neighbors)
}

// actionValues fills w.q with the expected continuation value of every action.
func actionValues[S comparable](w *workspace, m *model.MDP[S], next []int, u []float64) {
	for ai := range w.q {
		w.q[ai] = w.expectation(m.OutcomesAt(ai), next, u)
	}
}

// backup returns the best expected continuation value from a state, and the
// first action reaching it. Terminal states back up 0 with no action.
func backup[S comparable](w *workspace, m *model.MDP[S], next []int, u []float64) (float64, int) {
	if next == nil {
		return 0, -1
	}
	actionValues(w, m, next, u)
	best := floats.MaxIdx(w.q)
	return w.q[best], best
}

// Backup returns the maximum over actions of the expected utility of the
// successors of s under u, or 0 when s is terminal.
func Backup[S comparable](m *model.MDP[S], s S, u model.Utility[S]) (float64, error) {
	i, values, err := lookup(m, s, u)
	if err != nil {
		return 0, err
	}
	v, _ := backup(newWorkspace(m), m, m.Transitions(i), values)
	return v, nil
}

// ActionValues returns the expected continuation value of every action at s,
// in canonical action order. Terminal states have none.
func ActionValues[S comparable](m *model.MDP[S], s S, u model.Utility[S]) ([]float64, error) {
	i, values, err := lookup(m, s, u)
	if err != nil {
		return nil, err
	}
	next := m.Transitions(i)
	if next == nil {
		return nil, nil
	}
	w := newWorkspace(m)
	actionValues(w, m, next, values)
	return w.q, nil
}

// GreedyPolicy picks, for every non-terminal state, the first action in
// canonical order with the highest expected continuation value under u.
func GreedyPolicy[S comparable](m *model.MDP[S], u model.Utility[S]) (model.Policy[S], error) {
	if m == nil {
		return nil, invalid("nil MDP")
	}
	values, err := m.Values(u)
	if err != nil {
		return nil, err
	}
	actions := m.Actions()
	w := newWorkspace(m)
	policy := make(model.Policy[S], m.Len())
	for i := 0; i < m.Len(); i++ {
		if _, best := backup(w, m, m.Transitions(i), values); best >= 0 {
			policy[m.State(i)] = actions[best]
		}
	}
	return policy, nil
}

func lookup[S comparable](m *model.MDP[S], s S, u model.Utility[S]) (int, []float64, error) {
	if m == nil {
		return 0, nil, invalid("nil MDP")
	}
	i, ok := m.Index(s)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %v", model.ErrUnknownState, s)
	}
	values, err := m.Values(u)
	if err != nil {
		return 0, nil, err
	}
	return i, values, nil
}
