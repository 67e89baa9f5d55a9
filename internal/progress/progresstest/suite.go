// Package progresstest holds the behavior every progress.Store must share.
package progresstest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/pkg/models"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) progress.Store

var base = time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)

// Run executes the store suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("LazyCreate", func(t *testing.T) { testLazyCreate(t, newStore(t)) })
	t.Run("LastWriteWins", func(t *testing.T) { testLastWriteWins(t, newStore(t)) })
	t.Run("SubPatternMerge", func(t *testing.T) { testSubPatternMerge(t, newStore(t)) })
	t.Run("DeriveConfidence", func(t *testing.T) { testDeriveConfidence(t, newStore(t)) })
	t.Run("ListByUser", func(t *testing.T) { testListByUser(t, newStore(t)) })
	t.Run("KeysDoNotCollide", func(t *testing.T) { testKeysDoNotCollide(t, newStore(t)) })
	t.Run("ConcurrentFieldUpdates", func(t *testing.T) { testConcurrentFieldUpdates(t, newStore(t)) })
}

func closeStore(t *testing.T, s progress.Store) {
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
}

func testLazyCreate(t *testing.T, s progress.Store) {
	closeStore(t, s)
	ctx := context.Background()

	missing, err := s.Get(ctx, "u1", "two_pointers")
	require.NoError(t, err)
	assert.Nil(t, missing)

	rec, err := s.Merge(ctx, "u1", "two_pointers", models.ProgressUpdate{}, base, progress.MergeOptions{})
	require.NoError(t, err)

	got, err := s.Get(ctx, "u1", "two_pointers")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "two_pointers", got.ModuleID)
	assert.NotNil(t, got.SubPatternConfidence)

	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "two_pointers", rec.ModuleID)
	assert.Zero(t, rec.DrillScore)
	assert.Zero(t, rec.Confidence)
	assert.Empty(t, rec.SubPatternConfidence)
	assert.True(t, base.Equal(rec.LastPracticed), "lastPracticed %v", rec.LastPracticed)
	assert.True(t, base.Equal(rec.CreatedAt), "createdAt %v", rec.CreatedAt)
}

func testLastWriteWins(t *testing.T, s progress.Store) {
	closeStore(t, s)
	ctx := context.Background()

	_, err := s.Merge(ctx, "u1", "m1", models.ProgressUpdate{
		Scores: &models.ScoreUpdate{Drill: models.Float(50), Edge: models.Float(35)},
	}, base, progress.MergeOptions{})
	require.NoError(t, err)

	later := base.Add(time.Hour)
	rec, err := s.Merge(ctx, "u1", "m1", models.ProgressUpdate{
		Scores: &models.ScoreUpdate{Drill: models.Float(80)},
	}, later, progress.MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 80.0, rec.DrillScore)
	assert.Equal(t, 35.0, rec.EdgeCaseScore)
	assert.Zero(t, rec.VisualizerScore)
	assert.Zero(t, rec.Confidence)
	assert.True(t, later.Equal(rec.LastPracticed))
	assert.True(t, base.Equal(rec.CreatedAt))

	rec, err = s.Merge(ctx, "u1", "m1", models.ProgressUpdate{Confidence: models.Float(66)}, later, progress.MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 66.0, rec.Confidence)
	assert.Equal(t, 80.0, rec.DrillScore)
}

func testSubPatternMerge(t *testing.T, s progress.Store) {
	closeStore(t, s)
	ctx := context.Background()

	_, err := s.Merge(ctx, "u1", "sliding_window", models.ProgressUpdate{
		SubPattern: &models.SubPatternScore{ID: "variable", Score: models.Float(40)},
	}, base, progress.MergeOptions{})
	require.NoError(t, err)

	rec, err := s.Merge(ctx, "u1", "sliding_window", models.ProgressUpdate{
		SubPattern: &models.SubPatternScore{ID: "fixed", Score: models.Float(80)},
	}, base, progress.MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"fixed": 80, "variable": 40}, rec.SubPatternConfidence)

	rec, err = s.Merge(ctx, "u1", "sliding_window", models.ProgressUpdate{
		SubPattern: &models.SubPatternScore{ID: "fixed", Score: models.Float(95)},
	}, base, progress.MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"fixed": 95, "variable": 40}, rec.SubPatternConfidence)
}

func testDeriveConfidence(t *testing.T, s progress.Store) {
	closeStore(t, s)
	ctx := context.Background()
	opts := progress.MergeOptions{DeriveConfidence: true}

	_, err := s.Merge(ctx, "u1", "m1", models.ProgressUpdate{
		Scores: &models.ScoreUpdate{Drill: models.Float(100), Visualizer: models.Float(50)},
	}, base, opts)
	require.NoError(t, err)

	rec, err := s.Merge(ctx, "u1", "m1", models.ProgressUpdate{
		Scores: &models.ScoreUpdate{Edge: models.Float(75)},
	}, base, opts)
	require.NoError(t, err)
	assert.Equal(t, 45.0, rec.Confidence)

	rec, err = s.Merge(ctx, "u1", "m1", models.ProgressUpdate{
		Scores:     &models.ScoreUpdate{Edge: models.Float(0)},
		Confidence: models.Float(90),
	}, base, opts)
	require.NoError(t, err)
	assert.Equal(t, 90.0, rec.Confidence)
}

func testListByUser(t *testing.T, s progress.Store) {
	closeStore(t, s)
	ctx := context.Background()

	for _, m := range []string{"b", "a", "c"} {
		_, err := s.Merge(ctx, "u1", m, models.ProgressUpdate{Confidence: models.Float(10)}, base, progress.MergeOptions{})
		require.NoError(t, err)
	}
	_, err := s.Merge(ctx, "u2", "a", models.ProgressUpdate{
		SubPattern: &models.SubPatternScore{ID: "only_u2", Score: models.Float(1)},
	}, base, progress.MergeOptions{})
	require.NoError(t, err)

	recs, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	ids := []string{recs[0].ModuleID, recs[1].ModuleID, recs[2].ModuleID}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)
	for _, r := range recs {
		assert.Empty(t, r.SubPatternConfidence, "sub-patterns of another user leaked into %s", r.ModuleID)
	}

	none, err := s.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

// testKeysDoNotCollide writes pairs whose concatenations overlap; each pair
// must keep its own record.
func testKeysDoNotCollide(t *testing.T, s progress.Store) {
	closeStore(t, s)
	ctx := context.Background()

	pairs := [][2]string{
		{"a", "b:x"},
		{"a:b", "x"},
		{"1:a", "bx"},
		{"ab", "x"},
		{"a", "bx"},
	}
	for i, p := range pairs {
		rec, err := s.Merge(ctx, p[0], p[1], models.ProgressUpdate{Confidence: models.Float(float64(10 * (i + 1)))}, base, progress.MergeOptions{})
		require.NoError(t, err)
		assert.Equal(t, p[0], rec.UserID)
		assert.Equal(t, p[1], rec.ModuleID)
		assert.Equal(t, float64(10*(i+1)), rec.Confidence, "%q/%q picked up another record", p[0], p[1])
	}

	for i, p := range pairs {
		rec, err := s.Get(ctx, p[0], p[1])
		require.NoError(t, err)
		require.NotNil(t, rec, "%q/%q", p[0], p[1])
		assert.Equal(t, float64(10*(i+1)), rec.Confidence)
	}

	recs, err := s.ListByUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "a", r.UserID)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(pairs))
}

// testConcurrentFieldUpdates races writers on distinct fields of one record;
// none of them may be lost.
func testConcurrentFieldUpdates(t *testing.T, s progress.Store) {
	closeStore(t, s)
	ctx := context.Background()

	updates := []models.ProgressUpdate{
		{Scores: &models.ScoreUpdate{Drill: models.Float(11)}},
		{Scores: &models.ScoreUpdate{Visualizer: models.Float(22)}},
		{Scores: &models.ScoreUpdate{Template: models.Float(33)}},
		{Scores: &models.ScoreUpdate{Recognition: models.Float(44)}},
		{Scores: &models.ScoreUpdate{Edge: models.Float(55)}},
		{Confidence: models.Float(66)},
	}
	for i := 0; i < 4; i++ {
		updates = append(updates, models.ProgressUpdate{
			SubPattern: &models.SubPatternScore{ID: fmt.Sprintf("sp%d", i), Score: models.Float(float64(i * 10))},
		})
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(updates))
	for _, u := range updates {
		wg.Add(1)
		go func(u models.ProgressUpdate) {
			defer wg.Done()
			_, err := s.Merge(ctx, "racer", "m1", u, base, progress.MergeOptions{})
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	recs, err := s.ListByUser(ctx, "racer")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, 11.0, rec.DrillScore)
	assert.Equal(t, 22.0, rec.VisualizerScore)
	assert.Equal(t, 33.0, rec.TemplateScore)
	assert.Equal(t, 44.0, rec.RecognitionScore)
	assert.Equal(t, 55.0, rec.EdgeCaseScore)
	assert.Equal(t, 66.0, rec.Confidence)
	assert.Equal(t, map[string]float64{"sp0": 0, "sp1": 10, "sp2": 20, "sp3": 30}, rec.SubPatternConfidence)
}
