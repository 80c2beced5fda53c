package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func compassBuilder() *Builder[int] {
	return addNoisyCompass(NewBuilder[int](Left, Right, Up, Down))
}

func TestBuild(t *testing.T) {
	t.Run("building a well-formed model", func(t *testing.T) {
		m, err := compassBuilder().
			AddState(1, 1, 4, 2, 1).
			AddState(2, 2, 3, 2, 1).
			AddTerminal(3).
			AddTerminal(4).
			Build()

		require.NoError(t, err)
		require.Equal(t, 4, m.Len(), "Every added state should be kept")
		require.Equal(t, 4, m.Slots(), "Slots should match the outcome vector length")
		require.Equal(t, []int{1, 2, 3, 4}, m.States(), "States should keep insertion order")
		require.Equal(t, []Action{Left, Right, Up, Down}, m.Actions(), "Actions should keep declaration order")
	})

	t.Run("rejecting a neighbor sequence of the wrong length", func(t *testing.T) {
		_, err := compassBuilder().
			AddState(1, 1, 2, 1).
			AddTerminal(2).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("rejecting outcome vectors of different lengths", func(t *testing.T) {
		_, err := NewBuilder[int](Left, Right).
			SetOutcomes(Left, 1, 0).
			SetOutcomes(Right, 0, 0, 1).
			AddTerminal(1).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("rejecting probabilities that do not sum to one", func(t *testing.T) {
		_, err := NewBuilder[int](Left).
			SetOutcomes(Left, .8, .1).
			AddState(1, 1, 1).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("accepting probabilities within tolerance of one", func(t *testing.T) {
		_, err := NewBuilder[int](Left).
			SetOutcomes(Left, 1.0/3, 1.0/3, 1.0/3).
			AddState(1, 1, 1, 1).
			Build()

		require.NoError(t, err)
	})

	t.Run("rejecting probabilities just outside the tolerance", func(t *testing.T) {
		_, err := NewBuilder[int](Left).
			SetOutcomes(Left, .5, .5+1e-6).
			AddState(1, 1, 1).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("rejecting negative probabilities", func(t *testing.T) {
		_, err := NewBuilder[int](Left).
			SetOutcomes(Left, 1.2, -.2).
			AddState(1, 1, 1).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("rejecting an action without outcomes", func(t *testing.T) {
		_, err := NewBuilder[int](Left, Right).
			SetOutcomes(Left, 1).
			AddState(1, 1).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("rejecting outcomes for an undeclared action", func(t *testing.T) {
		_, err := NewBuilder[int](Left).
			SetOutcomes(Left, 1).
			SetOutcomes(Right, 1).
			AddState(1, 1).
			Build()

		require.ErrorIs(t, err, ErrUnknownAction)
	})

	t.Run("rejecting a neighbor outside the graph", func(t *testing.T) {
		_, err := NewBuilder[int](Left).
			SetOutcomes(Left, 1).
			AddState(1, 7).
			Build()

		require.ErrorIs(t, err, ErrUnknownState)
	})

	t.Run("rejecting duplicate states and actions", func(t *testing.T) {
		_, err := NewBuilder[int](Left, Left).
			SetOutcomes(Left, 1).
			AddState(1, 1).
			AddTerminal(1).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("rejecting an empty model", func(t *testing.T) {
		_, err := NewBuilder[int]().Build()

		require.ErrorIs(t, err, ErrMalformedModel)
	})

	t.Run("reporting every problem at once", func(t *testing.T) {
		_, err := NewBuilder[int](Left).
			SetOutcomes(Left, .5, .4).
			AddState(1, 1, 9).
			Build()

		require.ErrorIs(t, err, ErrMalformedModel, "Should report the bad distribution")
		require.ErrorIs(t, err, ErrUnknownState, "Should report the unknown neighbor")

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.NotEmpty(t, verr.Subject)
		require.Contains(t, err.Error(), `action "L"`)
	})
}

func TestMustBuild(t *testing.T) {
	require.Panics(t, func() {
		NewBuilder[int]().MustBuild()
	}, "Should panic on an invalid definition")
}
