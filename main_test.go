package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args. Flag values persist between
// calls, so tests only set flags whose later values do not matter.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Run("printing the version", func(t *testing.T) {
		out, err := execute(t, "version")
		require.NoError(t, err)
		require.Equal(t, "mdp version "+Version+"\n", out)
	})

	t.Run("solving the 2x2 world with Value Iteration", func(t *testing.T) {
		out, err := execute(t, "value", "2x2", "--log-level", "error")
		require.NoError(t, err)
		require.Equal(t, "1: 0.660 U\n2: 0.918 R\n3: 1.000\n4: -1.000\n", out)
	})

	t.Run("solving the 2x2 world with Policy Iteration", func(t *testing.T) {
		out, err := execute(t, "policy", "2x2")
		require.NoError(t, err)
		require.Equal(t, "1: U\n2: R\n", out)
	})

	t.Run("solving the 4x3 world with Policy Iteration", func(t *testing.T) {
		out, err := execute(t, "policy", "4x3")
		require.NoError(t, err)
		require.Equal(t, "(1,1): U\n(1,2): U\n(1,3): R\n(2,1): L\n(2,3): R\n(3,1): L\n(3,2): U\n(3,3): R\n(4,1): L\n", out)
	})

	t.Run("solving an environment file", func(t *testing.T) {
		out, err := execute(t, "value", "--file", filepath.Join("model", "testdata", "two_by_two.yaml"))
		require.NoError(t, err)
		require.Contains(t, out, "1: 0.660 U\n")
	})

	t.Run("stopping a file environment that never settles", func(t *testing.T) {
		out, err := execute(t, "value", "--file", filepath.Join("model", "testdata", "loop.yaml"))
		require.NoError(t, err)
		require.Contains(t, out, "a: -1000.100 stay\n", "Should stop after the file sweep cap")
		require.Contains(t, out, "goal: 1.000\n")
	})

	t.Run("rejecting an unknown environment", func(t *testing.T) {
		_, err := execute(t, "value", "5x5", "--file", "")
		require.Error(t, err)
	})

	t.Run("writing experiment records", func(t *testing.T) {
		root := t.TempDir()

		out, err := execute(t, "experiment", "2x2", "--output-dir", root, "--gammas", "0.9,1")

		require.NoError(t, err)
		require.Contains(t, out, "records written to ")
		dirs, err := filepath.Glob(filepath.Join(root, "discount_2x2", "*", "runs.csv"))
		require.NoError(t, err)
		require.Len(t, dirs, 1)
	})

	t.Run("timing goroutine counts", func(t *testing.T) {
		root := t.TempDir()

		out, err := execute(t, "throughput", "4x3", "--output-dir", root, "--goroutine-counts", "1,2", "--repeats", "1")

		require.NoError(t, err)
		require.Contains(t, out, "records written to ")
		dirs, err := filepath.Glob(filepath.Join(root, "throughput_4x3", "*", "runs.csv"))
		require.NoError(t, err)
		require.Len(t, dirs, 1)
	})

	t.Run("rejecting a zero repeat count", func(t *testing.T) {
		_, err := execute(t, "throughput", "4x3", "--output-dir", t.TempDir(), "--repeats", "0")
		require.Error(t, err)
	})

	t.Run("rejecting invalid discounts", func(t *testing.T) {
		_, err := execute(t, "experiment", "2x2", "--output-dir", os.TempDir(), "--gammas", "2")
		require.Error(t, err)
	})

	t.Run("printing nothing when quiet", func(t *testing.T) {
		out, err := execute(t, "value", "2x2", "--quiet")
		require.NoError(t, err)
		require.Empty(t, out)
	})
}
