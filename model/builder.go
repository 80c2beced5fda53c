package model

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// ProbabilityTolerance bounds how far an outcome distribution may sum away from 1.
const ProbabilityTolerance = 1e-9

// Builder assembles an MDP. Problems are collected as the builder is used and
// reported together by Build.
type Builder[S comparable] struct {
	actions  []Action
	outcomes map[Action][]float64
	states   []S
	next     map[S][]S
	errs     []error
}

// NewBuilder starts an MDP with the given ordered action names.
func NewBuilder[S comparable](actions ...Action) *Builder[S] {
	b := &Builder[S]{
		outcomes: make(map[Action][]float64),
		next:     make(map[S][]S),
	}
	for _, a := range actions {
		if slices.Contains(b.actions, a) {
			b.errs = append(b.errs, actionError(a, ErrMalformedModel, "declared more than once"))
			continue
		}
		b.actions = append(b.actions, a)
	}
	return b
}

// SetOutcomes sets the probability of realizing each transition slot when a
// is intended.
func (b *Builder[S]) SetOutcomes(a Action, probs ...float64) *Builder[S] {
	if !slices.Contains(b.actions, a) {
		b.errs = append(b.errs, actionError(a, ErrUnknownAction, "outcomes given for an undeclared action"))
		return b
	}
	b.outcomes[a] = slices.Clone(probs)
	return b
}

// AddState adds a non-terminal state whose i-th neighbor is reached through
// transition slot i.
func (b *Builder[S]) AddState(s S, neighbors ...S) *Builder[S] {
	if !b.add(s) {
		return b
	}
	if len(neighbors) == 0 {
		b.errs = append(b.errs, stateError(s, ErrMalformedModel, "non-terminal state without neighbors"))
		return b
	}
	b.next[s] = slices.Clone(neighbors)
	return b
}

// AddTerminal adds a state with no outgoing transitions.
func (b *Builder[S]) AddTerminal(s S) *Builder[S] {
	b.add(s)
	return b
}

func (b *Builder[S]) add(s S) bool {
	if slices.Contains(b.states, s) {
		b.errs = append(b.errs, stateError(s, ErrMalformedModel, "added more than once"))
		return false
	}
	b.states = append(b.states, s)
	return true
}

// Build validates the collected definition and returns the MDP.
func (b *Builder[S]) Build() (*MDP[S], error) {
	errs := slices.Clone(b.errs)

	if len(b.actions) == 0 {
		errs = append(errs, fmt.Errorf("%w: no actions declared", ErrMalformedModel))
	}
	if len(b.states) == 0 {
		errs = append(errs, fmt.Errorf("%w: no states added", ErrMalformedModel))
	}

	// K is taken from the first declared action
	slots := -1
	outcomes := make([][]float64, len(b.actions))
	for ai, a := range b.actions {
		probs, ok := b.outcomes[a]
		if !ok {
			errs = append(errs, actionError(a, ErrMalformedModel, "no outcome distribution"))
			continue
		}
		if slots < 0 {
			slots = len(probs)
		}
		if err := checkDistribution(a, probs, slots); err != nil {
			errs = append(errs, err)
			continue
		}
		outcomes[ai] = probs
	}

	index := make(map[S]int, len(b.states))
	for i, s := range b.states {
		index[s] = i
	}

	next := make([][]int, len(b.states))
	for i, s := range b.states {
		neighbors, ok := b.next[s]
		if !ok {
			continue // Terminal
		}
		if slots >= 0 && len(neighbors) != slots {
			errs = append(errs, stateError(s, ErrMalformedModel,
				"%d neighbors but outcome distributions have %d slots", len(neighbors), slots))
			continue
		}
		next[i] = make([]int, len(neighbors))
		for slot, n := range neighbors {
			ni, ok := index[n]
			if !ok {
				errs = append(errs, stateError(s, ErrUnknownState, "neighbor %v in slot %d is not a state", n, slot))
				continue
			}
			next[i][slot] = ni
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &MDP[S]{
		states:   slices.Clone(b.states),
		index:    index,
		next:     next,
		actions:  slices.Clone(b.actions),
		outcomes: outcomes,
		slots:    slots,
	}, nil
}

// MustBuild is like Build but panics on an invalid definition. Intended for
// fixed, known-good environments.
func (b *Builder[S]) MustBuild() *MDP[S] {
	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("invalid MDP definition: %v", err))
	}
	return m
}

func checkDistribution(a Action, probs []float64, slots int) error {
	if len(probs) == 0 {
		return actionError(a, ErrMalformedModel, "empty outcome distribution")
	}
	if len(probs) != slots {
		return actionError(a, ErrMalformedModel, "%d outcomes, expected %d", len(probs), slots)
	}
	for slot, p := range probs {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return actionError(a, ErrMalformedModel, "invalid probability %v in slot %d", p, slot)
		}
	}
	if sum := floats.Sum(probs); !scalar.EqualWithinAbs(sum, 1, ProbabilityTolerance) {
		return actionError(a, ErrMalformedModel, "probabilities sum to %v", sum)
	}
	return nil
}
