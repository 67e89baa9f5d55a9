package progress

import (
	"sort"
	"time"

	"github.com/example/algoscope/pkg/models"
)

// ReviewBand assigns a review interval to records whose confidence is below
// the band's ceiling.
type ReviewBand struct {
	Below    float64       `yaml:"below"`
	Interval time.Duration `yaml:"interval"`
}

// ReviewPolicy decides when a practiced module should be revisited. Weak
// modules come back sooner than mastered ones.
type ReviewPolicy struct {
	// Bands sorted by Below ascending. The last band catches everything.
	Bands []ReviewBand
}

// DefaultReviewPolicy returns the standard bands: one day below 40, three
// days below 80, two weeks otherwise.
func DefaultReviewPolicy() *ReviewPolicy {
	return &ReviewPolicy{
		Bands: []ReviewBand{
			{Below: 40, Interval: 24 * time.Hour},
			{Below: 80, Interval: 72 * time.Hour},
			{Below: 101, Interval: 14 * 24 * time.Hour},
		},
	}
}

// IntervalFor returns the review interval for a confidence value.
func (p *ReviewPolicy) IntervalFor(confidence float64) time.Duration {
	for _, b := range p.Bands {
		if confidence < b.Below {
			return b.Interval
		}
	}
	if len(p.Bands) == 0 {
		return 0
	}
	return p.Bands[len(p.Bands)-1].Interval
}

// IsDue reports whether rec should be reviewed at now.
func (p *ReviewPolicy) IsDue(rec models.ProgressRecord, now time.Time) bool {
	return !now.Before(rec.LastPracticed.Add(p.IntervalFor(rec.Confidence)))
}

// DueModule is a module waiting for review.
type DueModule struct {
	ModuleID      string        `json:"moduleId"`
	Confidence    float64       `json:"confidence"`
	LastPracticed time.Time     `json:"lastPracticed"`
	Overdue       time.Duration `json:"overdueNs"`
}

// NextForReview returns the due modules among records, weakest first, then
// most overdue, then by module id. A positive limit caps the result.
func (p *ReviewPolicy) NextForReview(records []models.ProgressRecord, now time.Time, limit int) []DueModule {
	due := make([]DueModule, 0)
	for _, rec := range records {
		if !p.IsDue(rec, now) {
			continue
		}
		due = append(due, DueModule{
			ModuleID:      rec.ModuleID,
			Confidence:    rec.Confidence,
			LastPracticed: rec.LastPracticed,
			Overdue:       now.Sub(rec.LastPracticed.Add(p.IntervalFor(rec.Confidence))),
		})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].Confidence != due[j].Confidence {
			return due[i].Confidence < due[j].Confidence
		}
		if due[i].Overdue != due[j].Overdue {
			return due[i].Overdue > due[j].Overdue
		}
		return due[i].ModuleID < due[j].ModuleID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}
