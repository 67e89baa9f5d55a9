package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/algoscope/pkg/models"
)

var t0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestApplyUpdate_CreatesZeroRecord(t *testing.T) {
	t.Parallel()

	rec := ApplyUpdate(nil, "u1", "sliding_window", models.ProgressUpdate{}, t0)

	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "sliding_window", rec.ModuleID)
	assert.Zero(t, rec.DrillScore)
	assert.Zero(t, rec.Confidence)
	assert.Empty(t, rec.SubPatternConfidence)
	assert.Equal(t, t0, rec.CreatedAt)
	assert.Equal(t, t0, rec.LastPracticed)
}

func TestApplyUpdate_LastWriteWinsPerField(t *testing.T) {
	t.Parallel()

	rec := ApplyUpdate(nil, "u1", "m1", models.ProgressUpdate{
		Scores: &models.ScoreUpdate{Drill: models.Float(50)},
	}, t0)
	rec = ApplyUpdate(rec, "u1", "m1", models.ProgressUpdate{
		Scores: &models.ScoreUpdate{Drill: models.Float(80)},
	}, t0.Add(time.Minute))

	assert.Equal(t, 80.0, rec.DrillScore)
	assert.Zero(t, rec.VisualizerScore)
	assert.Zero(t, rec.TemplateScore)
	assert.Zero(t, rec.RecognitionScore)
	assert.Zero(t, rec.EdgeCaseScore)
	assert.Zero(t, rec.Confidence)
	assert.Empty(t, rec.SubPatternConfidence)
}

func TestApplyUpdate_AbsentFieldsUntouched(t *testing.T) {
	t.Parallel()

	rec := ApplyUpdate(nil, "u1", "m1", models.ProgressUpdate{
		Scores:     &models.ScoreUpdate{Visualizer: models.Float(60), Edge: models.Float(30)},
		Confidence: models.Float(55),
	}, t0)
	rec = ApplyUpdate(rec, "u1", "m1", models.ProgressUpdate{
		Scores: &models.ScoreUpdate{Template: models.Float(90)},
	}, t0)

	assert.Equal(t, 60.0, rec.VisualizerScore)
	assert.Equal(t, 30.0, rec.EdgeCaseScore)
	assert.Equal(t, 90.0, rec.TemplateScore)
	assert.Equal(t, 55.0, rec.Confidence)
}

func TestApplyUpdate_SubPatternMerge(t *testing.T) {
	t.Parallel()

	existing := models.NewProgressRecord("u1", "sliding_window", t0)
	existing.SubPatternConfidence["variable"] = 40

	rec := ApplyUpdate(existing, "u1", "sliding_window", models.ProgressUpdate{
		SubPattern: &models.SubPatternScore{ID: "fixed", Score: models.Float(80)},
	}, t0)

	assert.Equal(t, map[string]float64{"fixed": 80, "variable": 40}, rec.SubPatternConfidence)
}

func TestApplyUpdate_DoesNotMutateExisting(t *testing.T) {
	t.Parallel()

	existing := models.NewProgressRecord("u1", "m1", t0)
	existing.SubPatternConfidence["a"] = 10

	_ = ApplyUpdate(existing, "u1", "m1", models.ProgressUpdate{
		Scores:     &models.ScoreUpdate{Drill: models.Float(99)},
		SubPattern: &models.SubPatternScore{ID: "b", Score: models.Float(20)},
	}, t0.Add(time.Hour))

	assert.Zero(t, existing.DrillScore)
	assert.Equal(t, map[string]float64{"a": 10}, existing.SubPatternConfidence)
	assert.Equal(t, t0, existing.LastPracticed)
}

func TestApplyUpdate_AlwaysTouchesLastPracticed(t *testing.T) {
	t.Parallel()

	rec := ApplyUpdate(nil, "u1", "m1", models.ProgressUpdate{}, t0)
	later := t0.Add(48 * time.Hour)
	rec = ApplyUpdate(rec, "u1", "m1", models.ProgressUpdate{}, later)

	assert.Equal(t, later, rec.LastPracticed)
	assert.Equal(t, later, rec.UpdatedAt)
	assert.Equal(t, t0, rec.CreatedAt)
}

func TestMerge_DerivesConfidenceOnlyWhenAsked(t *testing.T) {
	t.Parallel()

	update := models.ProgressUpdate{Scores: &models.ScoreUpdate{
		Drill: models.Float(100), Visualizer: models.Float(80), Template: models.Float(60),
		Recognition: models.Float(40), Edge: models.Float(20),
	}}

	rec := Merge(nil, "u1", "m1", update, t0, MergeOptions{})
	assert.Zero(t, rec.Confidence)

	rec = Merge(nil, "u1", "m1", update, t0, MergeOptions{DeriveConfidence: true})
	assert.Equal(t, 60.0, rec.Confidence)

	update.Confidence = models.Float(12)
	rec = Merge(nil, "u1", "m1", update, t0, MergeOptions{DeriveConfidence: true})
	assert.Equal(t, 12.0, rec.Confidence, "explicit confidence wins")
}

func TestMerge_SubPatternOnlyDoesNotDerive(t *testing.T) {
	t.Parallel()

	existing := models.NewProgressRecord("u1", "m1", t0)
	existing.Confidence = 70
	existing.DrillScore = 10

	rec := Merge(existing, "u1", "m1", models.ProgressUpdate{
		SubPattern: &models.SubPatternScore{ID: "x", Score: models.Float(5)},
	}, t0, MergeOptions{DeriveConfidence: true})

	require.NotNil(t, rec)
	assert.Equal(t, 70.0, rec.Confidence)
}
