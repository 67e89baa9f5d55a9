package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/algoscope/internal/simulation"
)

// execute runs the root command with a config path that does not exist, so
// every run starts from defaults.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseInts(t *testing.T) {
	got, err := parseInts(" 1, 2 ,-3 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, -3}, got)

	got, err = parseInts("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseInts("1,x")
	assert.Error(t, err)
}

func TestTraceCommand(t *testing.T) {
	out, err := execute(t, "trace", "--variant", simulation.VariantBinarySearch, "--array", "1,3,5,7", "--target", "5")
	require.NoError(t, err)

	var trace simulation.Trace
	require.NoError(t, json.Unmarshal([]byte(out), &trace))
	assert.Equal(t, simulation.VariantBinarySearch, trace.Variant)

	last, ok := trace.Last()
	require.True(t, ok)
	require.NotNil(t, last.FoundIndex)
	assert.Equal(t, 2, *last.FoundIndex)
}

func TestTraceCommand_UnsupportedVariant(t *testing.T) {
	_, err := execute(t, "trace", "--variant", "bogo_sort", "--array", "3,1")
	require.ErrorIs(t, err, simulation.ErrUnsupportedVariant)
	assert.Contains(t, err.Error(), simulation.VariantPartition)
}

func TestValidateProblemsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problems.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "p1", "title": "Two Sum", "patternLevel": "expert"}]`), 0o644))

	out, err := execute(t, "validate", "problems", path)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "Validation failed with 1 errors:")
	assert.Contains(t, out, "Problem p1 (Two Sum): Invalid patternLevel 'expert'")
}

func TestMigrateCommand_RejectsNonSQLDriver(t *testing.T) {
	t.Setenv("ALGOSCOPE_DB_DRIVER", "memory")

	_, err := execute(t, "migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema migrations")
}
