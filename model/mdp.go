package model

import (
	"errors"

	"golang.org/x/exp/slices"
)

// MDP is a validated, immutable Markov Decision Process over states of type S.
// States keep the order in which they were added to the Builder; that order
// is the sweep order of every solver.
type MDP[S comparable] struct {
	states   []S
	index    map[S]int
	next     [][]int // Neighbor indices per transition slot; nil for terminal states
	actions  []Action
	outcomes [][]float64 // Outcome distribution per action, aligned with actions
	slots    int
}

// Len returns the number of states.
func (m *MDP[S]) Len() int {
	return len(m.states)
}

// Slots returns the number of transition slots K shared by every neighbor
// sequence and outcome vector.
func (m *MDP[S]) Slots() int {
	return m.slots
}

func (m *MDP[S]) States() []S {
	return slices.Clone(m.states)
}

func (m *MDP[S]) Actions() []Action {
	return slices.Clone(m.actions)
}

func (m *MDP[S]) Has(s S) bool {
	_, ok := m.index[s]
	return ok
}

func (m *MDP[S]) HasAction(a Action) bool {
	return slices.Contains(m.actions, a)
}

// Index returns the position of s in the canonical state order.
func (m *MDP[S]) Index(s S) (int, bool) {
	i, ok := m.index[s]
	return i, ok
}

// State returns the i-th state in canonical order.
func (m *MDP[S]) State(i int) S {
	return m.states[i]
}

// ActionIndex returns the position of a in the canonical action order, or -1.
func (m *MDP[S]) ActionIndex(a Action) int {
	return slices.Index(m.actions, a)
}

// IsTerminal reports whether s has no outgoing transitions. Unknown states
// are not terminal.
func (m *MDP[S]) IsTerminal(s S) bool {
	i, ok := m.index[s]
	return ok && m.next[i] == nil
}

// Neighbors returns the states reachable through each transition slot of s,
// or nil if s is terminal or unknown.
func (m *MDP[S]) Neighbors(s S) []S {
	i, ok := m.index[s]
	if !ok || m.next[i] == nil {
		return nil
	}
	neighbors := make([]S, len(m.next[i]))
	for slot, n := range m.next[i] {
		neighbors[slot] = m.states[n]
	}
	return neighbors
}

// Outcomes returns a copy of the outcome distribution of a, or nil if a is
// unknown.
func (m *MDP[S]) Outcomes(a Action) []float64 {
	ai := m.ActionIndex(a)
	if ai < 0 {
		return nil
	}
	return slices.Clone(m.outcomes[ai])
}

// Transitions returns the neighbor indices of the i-th state, nil when it is
// terminal. The slice is shared and must not be modified.
func (m *MDP[S]) Transitions(i int) []int {
	return m.next[i]
}

// OutcomesAt returns the outcome distribution of the ai-th action. The slice
// is shared and must not be modified.
func (m *MDP[S]) OutcomesAt(ai int) []float64 {
	return m.outcomes[ai]
}

// Values flattens u into canonical state order. Every state must be present.
func (m *MDP[S]) Values(u Utility[S]) ([]float64, error) {
	values := make([]float64, len(m.states))
	var errs []error
	for i, s := range m.states {
		v, ok := u[s]
		if !ok {
			errs = append(errs, stateError(s, ErrUnknownState, "missing from utility table"))
			continue
		}
		values[i] = v
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values, nil
}

// Table builds a utility table from values in canonical state order.
func (m *MDP[S]) Table(values []float64) Utility[S] {
	u := make(Utility[S], len(m.states))
	for i, s := range m.states {
		u[s] = values[i]
	}
	return u
}

// Choices resolves p into action indices in canonical state order, -1 for
// terminal states. Every non-terminal state needs a known action; keys that
// are not states of m are rejected.
func (m *MDP[S]) Choices(p Policy[S]) ([]int, error) {
	var errs []error
	for s := range p {
		if !m.Has(s) {
			errs = append(errs, stateError(s, ErrUnknownState, "policy entry for a state outside the graph"))
		}
	}

	choices := make([]int, len(m.states))
	for i, s := range m.states {
		if m.next[i] == nil {
			choices[i] = -1
			continue
		}
		a, ok := p[s]
		if !ok {
			errs = append(errs, stateError(s, ErrUnknownState, "no policy entry for non-terminal state"))
			continue
		}
		ai := m.ActionIndex(a)
		if ai < 0 {
			errs = append(errs, stateError(s, ErrUnknownAction, "policy chooses unknown action %q", a))
			continue
		}
		choices[i] = ai
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return choices, nil
}
