package models

import "time"

// ProgressRecord is a user's mastery state for a single curriculum module.
// The pair (UserID, ModuleID) is unique.
type ProgressRecord struct {
	UserID               string             `json:"userId" db:"user_id"`
	ModuleID             string             `json:"moduleId" db:"module_id"`
	DrillScore           float64            `json:"drillScore" db:"drill_score"`
	VisualizerScore      float64            `json:"visualizerScore" db:"visualizer_score"`
	TemplateScore        float64            `json:"templateScore" db:"template_score"`
	RecognitionScore     float64            `json:"recognitionScore" db:"recognition_score"`
	EdgeCaseScore        float64            `json:"edgeCaseScore" db:"edge_case_score"`
	Confidence           float64            `json:"confidence" db:"confidence"`
	SubPatternConfidence map[string]float64 `json:"subPatternConfidence" db:"-"`
	LastPracticed        time.Time          `json:"lastPracticed" db:"-"`
	CreatedAt            time.Time          `json:"createdAt" db:"-"`
	UpdatedAt            time.Time          `json:"updatedAt" db:"-"`
}

// NewProgressRecord returns a zero-scored record for the pair.
func NewProgressRecord(userID, moduleID string, now time.Time) *ProgressRecord {
	return &ProgressRecord{
		UserID:               userID,
		ModuleID:             moduleID,
		SubPatternConfidence: make(map[string]float64),
		LastPracticed:        now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Clone returns a deep copy of the record.
func (r *ProgressRecord) Clone() *ProgressRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.SubPatternConfidence = make(map[string]float64, len(r.SubPatternConfidence))
	for k, v := range r.SubPatternConfidence {
		c.SubPatternConfidence[k] = v
	}
	return &c
}

// ScoreUpdate carries the granular scores of a practice result. A nil field
// is absent and leaves the stored value untouched.
type ScoreUpdate struct {
	Drill       *float64 `json:"drill,omitempty" validate:"omitempty,min=0,max=100"`
	Visualizer  *float64 `json:"visualizer,omitempty" validate:"omitempty,min=0,max=100"`
	Template    *float64 `json:"template,omitempty" validate:"omitempty,min=0,max=100"`
	Recognition *float64 `json:"recognition,omitempty" validate:"omitempty,min=0,max=100"`
	Edge        *float64 `json:"edge,omitempty" validate:"omitempty,min=0,max=100"`
}

// Empty reports whether no score is present.
func (s *ScoreUpdate) Empty() bool {
	return s == nil || (s.Drill == nil && s.Visualizer == nil && s.Template == nil &&
		s.Recognition == nil && s.Edge == nil)
}

// SubPatternScore sets one entry of the sub-pattern confidence map.
type SubPatternScore struct {
	ID    string   `json:"id" validate:"required"`
	Score *float64 `json:"score" validate:"required,min=0,max=100"`
}

// ProgressUpdate is a partial update applied to a ProgressRecord.
type ProgressUpdate struct {
	Scores     *ScoreUpdate     `json:"scores,omitempty" validate:"omitempty"`
	Confidence *float64         `json:"confidence,omitempty" validate:"omitempty,min=0,max=100"`
	SubPattern *SubPatternScore `json:"subPattern,omitempty" validate:"omitempty"`
}

// Float returns a pointer to v. Handy for building updates.
func Float(v float64) *float64 {
	return &v
}
