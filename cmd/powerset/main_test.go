package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilonStep = "0 1 2/a/0,ε,1;1,a,2/0/2"

// resetFlags restores every flag of the command tree to its default so that
// runs do not leak into each other through the global commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	out, err := run(t, "convert", epsilonStep)
	require.NoError(t, err)
	assert.Equal(t, "0 1 2/a/0,a,1;1,a,2;2,a,2/0/1\n", out)

	out, err = run(t, "convert", "-o", "json", epsilonStep)
	require.NoError(t, err)
	assert.Contains(t, out, `"initial": "{0,1}"`)

	_, err = run(t, "convert", "0 1/a")
	assert.Error(t, err)
}

func TestAcceptsCommand(t *testing.T) {
	out, err := run(t, "accepts", epsilonStep, "a", "aa")
	require.NoError(t, err)
	assert.Equal(t, "accept \"a\"\nreject \"aa\"\n", out)

	out, err = run(t, "accepts", "--trace", epsilonStep, "a")
	require.NoError(t, err)
	assert.Equal(t, "accept \"a\": {0,1} -> {2}\n", out)
}

func TestClosureEqualCommands(t *testing.T) {
	out, err := run(t, "closure", epsilonStep, "0")
	require.NoError(t, err)
	assert.Equal(t, "{0,1}\n", out)

	_, err = run(t, "closure", epsilonStep, "x")
	assert.Error(t, err)

	out, err = run(t, "equal", "5 7/a/7,a,5/7/5", "0 1/a/0,a,1/0/1")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestPruneCanonicalCommands(t *testing.T) {
	out, err := run(t, "prune", "0 1 2/a/0,a,1/0/1")
	require.NoError(t, err)
	assert.Equal(t, "0 1/a/0,a,1/0/1\n", out)

	out, err = run(t, "canonical", "5 7/a/7,a,5/7/5")
	require.NoError(t, err)
	assert.Equal(t, "0 1/a/0,a,1/0/1\n", out)
}

func TestGraphDescribeValidate(t *testing.T) {
	out, err := run(t, "graph", "--trace", "a", epsilonStep)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR"))
	assert.Contains(t, out, "classDef current")

	out, err = run(t, "describe", epsilonStep)
	require.NoError(t, err)
	assert.Contains(t, out, "- K = `{0, 1, 2}`")

	out, err = run(t, "describe", "--table", epsilonStep)
	require.NoError(t, err)
	assert.Contains(t, out, "→ 0")

	out, err = run(t, "validate", epsilonStep)
	require.NoError(t, err)
	assert.Contains(t, out, "epsilon")

	_, err = run(t, "validate", "--dfa", epsilonStep)
	assert.Error(t, err)
}

func TestStoreCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "machines.db")
	cfg := filepath.Join(dir, "powerset.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("store:\n  backend: buntdb\n  path: "+db+"\n"), 0o644))

	_, err := run(t, "--config", cfg, "store", "save", "step", epsilonStep)
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "store", "list")
	require.NoError(t, err)
	assert.Equal(t, "step\n", out)

	out, err = run(t, "--config", cfg, "store", "get", "step")
	require.NoError(t, err)
	assert.Equal(t, epsilonStep+"\n", out)

	_, err = run(t, "--config", cfg, "store", "delete", "step")
	require.NoError(t, err)

	_, err = run(t, "--config", cfg, "store", "get", "step")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "powerset version "))
}
