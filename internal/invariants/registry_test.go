package invariants

import (
	"testing"

	"github.com/example/algoscope/internal/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_ProblemIDs(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"two_sum_sorted":       "left < right",
		"container_most_water": "min(h[l], h[r]) * (r - l)",
		"move_zeroes":          "slow <= fast",
		"partition_array":      "arr[fast] < pivot",
		"cycle_detection":      "slow == fast (collision)",
		"dnf_partition":        "0s < l, 1s [l..m], 2s > h",
		"fixed_window":         "right - left + 1 === K",
		"exact_k":              "at_most(K) - at_most(K-1)",
	}

	for id, formula := range tests {
		d, ok := Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, formula, d.Formula, id)
		assert.NotEmpty(t, d.Explanation, id)
		assert.NotEmpty(t, d.Color, id)
	}
}

func TestLookup_EveryGeneratorVariantHasDescriptor(t *testing.T) {
	t.Parallel()

	for _, variant := range simulation.Variants() {
		_, ok := Lookup(variant)
		assert.True(t, ok, "no invariant for %s", variant)
	}
}

func TestLookup_AliasesShareDescriptor(t *testing.T) {
	t.Parallel()

	alias, ok := Lookup(simulation.VariantOppositeDirection)
	require.True(t, ok)
	target, _ := Lookup("two_sum_sorted")
	assert.Equal(t, target, alias)
}

func TestLookup_Unknown(t *testing.T) {
	t.Parallel()

	_, ok := Lookup("does_not_exist")
	assert.False(t, ok)
}

func TestDefault_ParsedOnce(t *testing.T) {
	t.Parallel()

	assert.Same(t, Default(), Default())
}

func TestParse_RejectsDanglingAlias(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("descriptors:\n  a:\n    formula: x\naliases:\n  b: missing\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown invariant")
}

func TestParse_RejectsMissingFormula(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("descriptors:\n  a:\n    color: red\n"))
	require.Error(t, err)
}

func TestIDs_Sorted(t *testing.T) {
	t.Parallel()

	ids := Default().IDs()
	require.NotEmpty(t, ids)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}
