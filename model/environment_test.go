package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTwoByTwo(t *testing.T) {
	env := TwoByTwo()

	require.Equal(t, "2x2", env.Name)
	require.Equal(t, 1, env.Start)
	require.Equal(t, []int{1, 2, 3, 4}, env.MDP.States())
	require.True(t, env.MDP.IsTerminal(3))
	require.True(t, env.MDP.IsTerminal(4))
	require.Equal(t, []int{2, 3, 2, 1}, env.MDP.Neighbors(2))
	require.Equal(t, Policy[int]{1: Right, 2: Down}, env.Policy)

	for s, want := range map[int]float64{1: -.04, 2: -.04, 3: 1, 4: -1} {
		require.Equal(t, want, env.Reward(s), "Reward of state %d", s)
	}
}

func TestFourByThree(t *testing.T) {
	env := FourByThree()

	t.Run("laying out the grid", func(t *testing.T) {
		require.Equal(t, 12, env.MDP.Len())
		require.Equal(t, Cell{1, 1}, env.Start)

		var terminal []Cell
		for _, s := range env.MDP.States() {
			if env.MDP.IsTerminal(s) {
				terminal = append(terminal, s)
			}
		}
		require.ElementsMatch(t, []Cell{{2, 2}, {4, 2}, {4, 3}}, terminal)
	})

	t.Run("bumping into walls and the obstacle", func(t *testing.T) {
		require.Equal(t, []Cell{{1, 1}, {2, 1}, {1, 2}, {1, 1}}, env.MDP.Neighbors(Cell{1, 1}))
		require.Equal(t, []Cell{{1, 2}, {1, 2}, {1, 3}, {1, 1}}, env.MDP.Neighbors(Cell{1, 2}))
	})

	t.Run("rewarding the exits", func(t *testing.T) {
		require.Equal(t, 1.0, env.Reward(Cell{4, 3}))
		require.Equal(t, -1.0, env.Reward(Cell{4, 2}))
		require.Equal(t, StepReward, env.Reward(Cell{3, 1}))
	})

	t.Run("starting from an all-left policy", func(t *testing.T) {
		for _, s := range env.MDP.States() {
			require.Equal(t, Left, env.Policy[s], "Action of %v", s)
		}
	})

	require.Equal(t, "(4,3)", Cell{4, 3}.String())
}
