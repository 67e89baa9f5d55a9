package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/algoscope/pkg/models"
)

func TestComputeConfidence(t *testing.T) {
	t.Parallel()

	rec := &models.ProgressRecord{
		DrillScore: 90, VisualizerScore: 85, TemplateScore: 70, RecognitionScore: 66, EdgeCaseScore: 50,
	}
	assert.Equal(t, 72.2, ComputeConfidence(rec))
	assert.Zero(t, ComputeConfidence(&models.ProgressRecord{}))
}

func TestBreakdown_FallsBackToConfidence(t *testing.T) {
	t.Parallel()

	legacy := &models.ProgressRecord{Confidence: 64}
	assert.Equal(t, Dimensions{Theory: 64, Optimization: 64, Edge: 64}, Breakdown(legacy))

	rec := &models.ProgressRecord{
		RecognitionScore: 80, VisualizerScore: 60,
		DrillScore: 100, TemplateScore: 50,
		Confidence: 10,
	}
	d := Breakdown(rec)
	assert.Equal(t, 70.0, d.Theory)
	assert.Equal(t, 75.0, d.Optimization)
	assert.Equal(t, 10.0, d.Edge)
	assert.InDelta(t, 51.67, d.Mastery(), 0.01)
}
