package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const lineWorld = `
actions: [L, R]
outcomes:
  L: [1, 0]
  R: [0, 1]
default_reward: -0.1
states:
  - id: a
    next: [a, b]
  - id: b
    next: [a, goal]
  - id: goal
    terminal: true
    reward: 1
`

func TestLoadEnvironment(t *testing.T) {
	t.Run("loading a file equivalent to the 2x2 world", func(t *testing.T) {
		env, err := LoadEnvironment(filepath.Join("testdata", "two_by_two.yaml"))
		require.NoError(t, err)

		builtin := TwoByTwo()
		require.Equal(t, "two-by-two", env.Name)
		require.Equal(t, "1", env.Start)
		require.Equal(t, []string{"1", "2", "3", "4"}, env.MDP.States())
		require.Equal(t, []string{"1", "4", "2", "1"}, env.MDP.Neighbors("1"))
		require.Equal(t, Policy[string]{"1": Right, "2": Down}, env.Policy)
		for _, a := range builtin.MDP.Actions() {
			require.Equal(t, builtin.MDP.Outcomes(a), env.MDP.Outcomes(a), "Outcomes of %s", a)
		}
		require.Equal(t, -.04, env.Reward("2"))
		require.Equal(t, -1.0, env.Reward("4"))
	})

	t.Run("failing on a missing file", func(t *testing.T) {
		_, err := LoadEnvironment(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("wrapping decode errors with the path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("actions: [L]\nstates: []\n"), 0644))

		_, err := LoadEnvironment(path)

		require.ErrorIs(t, err, ErrMalformedModel)
		require.Contains(t, err.Error(), path)
	})
}

func TestDecodeEnvironment(t *testing.T) {
	t.Run("filling in defaults", func(t *testing.T) {
		env, err := DecodeEnvironment(strings.NewReader(lineWorld))
		require.NoError(t, err)

		require.Equal(t, "custom", env.Name)
		require.Equal(t, "a", env.Start, "Should start from the first state")
		require.Equal(t, Policy[string]{"a": "L", "b": "L"}, env.Policy, "Should choose the first action everywhere")
		require.Equal(t, -.1, env.Reward("a"))
		require.Equal(t, 1.0, env.Reward("goal"))
	})

	t.Run("defaulting terminal rewards to zero", func(t *testing.T) {
		doc := strings.Replace(lineWorld, "    reward: 1\n", "", 1)

		env, err := DecodeEnvironment(strings.NewReader(doc))

		require.NoError(t, err)
		require.Equal(t, 0.0, env.Reward("goal"))
	})

	t.Run("rejecting unknown fields", func(t *testing.T) {
		_, err := DecodeEnvironment(strings.NewReader(lineWorld + "discount: 0.9\n"))
		require.Error(t, err)
	})

	t.Run("rejecting an unknown start state", func(t *testing.T) {
		_, err := DecodeEnvironment(strings.NewReader(lineWorld + "start: nowhere\n"))
		require.ErrorIs(t, err, ErrUnknownState)
	})

	t.Run("rejecting outcomes for an undeclared action", func(t *testing.T) {
		doc := strings.Replace(lineWorld, "  R: [0, 1]\n", "  R: [0, 1]\n  U: [1, 0]\n", 1)

		_, err := DecodeEnvironment(strings.NewReader(doc))

		require.ErrorIs(t, err, ErrUnknownAction)
	})

	t.Run("rejecting a policy with an unknown action", func(t *testing.T) {
		_, err := DecodeEnvironment(strings.NewReader(lineWorld + "policy: {a: L, b: jump}\n"))
		require.ErrorIs(t, err, ErrUnknownAction)
	})

	t.Run("rejecting a neighbor outside the graph", func(t *testing.T) {
		doc := strings.Replace(lineWorld, "next: [a, goal]", "next: [a, exit]", 1)

		_, err := DecodeEnvironment(strings.NewReader(doc))

		require.ErrorIs(t, err, ErrUnknownState)
	})
}
