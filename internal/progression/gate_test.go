package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/algoscope/pkg/models"
)

var abc = models.Track{ID: "t", Title: "T", Steps: []string{"A", "B", "C"}}

func TestIsUnlocked_SequentialGate(t *testing.T) {
	t.Parallel()

	lookup := MapLookup(map[string]float64{"A": 85})
	assert.True(t, IsUnlocked(abc, 0, lookup))
	assert.True(t, IsUnlocked(abc, 1, lookup))
	assert.False(t, IsUnlocked(abc, 2, lookup))
}

func TestIsUnlocked_IgnoresOwnConfidence(t *testing.T) {
	t.Parallel()

	lookup := MapLookup(map[string]float64{"A": 85, "C": 100})
	assert.False(t, IsUnlocked(abc, 2, lookup))
}

func TestIsUnlocked_FirstStepAlwaysOpen(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUnlocked(abc, 0, nil))
	assert.True(t, IsUnlocked(abc, 0, MapLookup(nil)))
	assert.False(t, IsUnlocked(abc, 1, nil))
}

func TestIsUnlocked_OutOfRange(t *testing.T) {
	t.Parallel()

	lookup := MapLookup(map[string]float64{"A": 100, "B": 100, "C": 100})
	assert.False(t, IsUnlocked(abc, -1, lookup))
	assert.False(t, IsUnlocked(abc, 3, lookup))
}

func TestIsMastered_Threshold(t *testing.T) {
	t.Parallel()

	lookup := MapLookup(map[string]float64{"low": 79.99, "edge": 80, "high": 100})
	assert.False(t, IsMastered("low", lookup))
	assert.True(t, IsMastered("edge", lookup))
	assert.True(t, IsMastered("high", lookup))
	assert.False(t, IsMastered("missing", lookup))
}

func TestTracksAreIndependent(t *testing.T) {
	t.Parallel()

	tracks := DefaultTracks()
	lookup := MapLookup(map[string]float64{
		"selection_sort": 100, "insertion_sort": 100, "merge_sort": 100,
		"quick_sort": 100, "heap_sort": 100, "radix_sort": 100,
	})

	status := Evaluate(tracks, lookup)
	require.Len(t, status, 3)

	for _, st := range status[0].Steps {
		assert.True(t, st.Unlocked)
		assert.True(t, st.Mastered)
		assert.False(t, st.Current)
	}
	searching := status[1]
	assert.True(t, searching.Steps[0].Unlocked)
	assert.True(t, searching.Steps[0].Current)
	for _, st := range searching.Steps[1:] {
		assert.False(t, st.Unlocked, st.ModuleID)
	}
}

func TestEvaluate_CurrentStep(t *testing.T) {
	t.Parallel()

	status := Evaluate([]models.Track{abc}, MapLookup(map[string]float64{"A": 90, "B": 40}))
	require.Len(t, status, 1)

	steps := status[0].Steps
	assert.Equal(t, StepStatus{ModuleID: "A", Confidence: 90, Unlocked: true, Mastered: true}, steps[0])
	assert.Equal(t, StepStatus{ModuleID: "B", Confidence: 40, Unlocked: true, Current: true}, steps[1])
	assert.Equal(t, StepStatus{ModuleID: "C"}, steps[2])
}

func TestDefaultTracks(t *testing.T) {
	t.Parallel()

	tracks := DefaultTracks()
	require.NoError(t, ValidateTracks(tracks))
	assert.Equal(t, []string{"linear_search", "binary_search", "lower_bound", "search_on_answer"}, tracks[1].Steps)
	assert.Equal(t, "01_bfs", tracks[2].Steps[3])
}

func TestValidateTracks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tracks []models.Track
	}{
		{"no id", []models.Track{{Steps: []string{"a"}}}},
		{"duplicate id", []models.Track{{ID: "x", Steps: []string{"a"}}, {ID: "x", Steps: []string{"b"}}}},
		{"no steps", []models.Track{{ID: "x"}}},
		{"blank step", []models.Track{{ID: "x", Steps: []string{"a", " "}}}},
		{"repeated step", []models.Track{{ID: "x", Steps: []string{"a", "a"}}}},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, ValidateTracks(tt.tracks), ErrInvalidTrack, tt.name)
	}
}
