package progress

import (
	"time"

	"github.com/example/algoscope/pkg/models"
)

// MergeOptions tunes how a store folds an update into a record.
type MergeOptions struct {
	// DeriveConfidence recomputes the aggregate confidence from the granular
	// scores when the update carries scores but no explicit confidence.
	DeriveConfidence bool
}

// ApplyUpdate folds update into existing and returns the result as a new
// record. existing may be nil, in which case a zero record for the pair is
// the starting point. existing is never modified.
//
// Every present field overwrites the stored value; absent fields are kept.
// A sub-pattern update touches exactly one key of the map. LastPracticed is
// always set to now.
func ApplyUpdate(existing *models.ProgressRecord, userID, moduleID string, update models.ProgressUpdate, now time.Time) *models.ProgressRecord {
	var rec *models.ProgressRecord
	if existing == nil {
		rec = models.NewProgressRecord(userID, moduleID, now)
	} else {
		rec = existing.Clone()
	}

	if s := update.Scores; s != nil {
		if s.Drill != nil {
			rec.DrillScore = *s.Drill
		}
		if s.Visualizer != nil {
			rec.VisualizerScore = *s.Visualizer
		}
		if s.Template != nil {
			rec.TemplateScore = *s.Template
		}
		if s.Recognition != nil {
			rec.RecognitionScore = *s.Recognition
		}
		if s.Edge != nil {
			rec.EdgeCaseScore = *s.Edge
		}
	}

	if update.Confidence != nil {
		rec.Confidence = *update.Confidence
	}

	if sp := update.SubPattern; sp != nil && sp.ID != "" && sp.Score != nil {
		if rec.SubPatternConfidence == nil {
			rec.SubPatternConfidence = make(map[string]float64)
		}
		rec.SubPatternConfidence[sp.ID] = *sp.Score
	}

	rec.LastPracticed = now
	rec.UpdatedAt = now
	return rec
}

// Merge is ApplyUpdate followed by the optional confidence derivation. Every
// store funnels its writes through the same rules.
func Merge(existing *models.ProgressRecord, userID, moduleID string, update models.ProgressUpdate, now time.Time, opts MergeOptions) *models.ProgressRecord {
	rec := ApplyUpdate(existing, userID, moduleID, update, now)
	if ShouldDerive(update, opts) {
		rec.Confidence = ComputeConfidence(rec)
	}
	return rec
}

// ShouldDerive reports whether the confidence of the merged record is to be
// recomputed from its scores.
func ShouldDerive(update models.ProgressUpdate, opts MergeOptions) bool {
	return opts.DeriveConfidence && update.Confidence == nil && !update.Scores.Empty()
}
