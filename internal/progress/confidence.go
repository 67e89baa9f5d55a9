package progress

import (
	"math"

	"github.com/example/algoscope/pkg/models"
)

// ComputeConfidence is the canonical aggregate: the equal-weighted mean of the
// five granular scores, rounded to one decimal.
func ComputeConfidence(rec *models.ProgressRecord) float64 {
	sum := rec.DrillScore + rec.VisualizerScore + rec.TemplateScore + rec.RecognitionScore + rec.EdgeCaseScore
	return round1(sum / 5)
}

// Dimensions is the three-axis view of a module's mastery.
type Dimensions struct {
	Theory       float64 `json:"theory"`
	Optimization float64 `json:"optimization"`
	Edge         float64 `json:"edge"`
}

// Mastery is the unrounded mean of the three axes.
func (d Dimensions) Mastery() float64 {
	return (d.Theory + d.Optimization + d.Edge) / 3
}

// Breakdown maps the granular scores onto theory, optimization and edge.
// An axis with no signal falls back to the aggregate confidence so records
// written before granular scores existed still chart sensibly.
func Breakdown(rec *models.ProgressRecord) Dimensions {
	fallback := func(v float64) float64 {
		if v == 0 {
			return rec.Confidence
		}
		return v
	}
	return Dimensions{
		Theory:       fallback((rec.RecognitionScore + rec.VisualizerScore) / 2),
		Optimization: fallback((rec.DrillScore + rec.TemplateScore) / 2),
		Edge:         fallback(rec.EdgeCaseScore),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
