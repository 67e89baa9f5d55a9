package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/algoscope/pkg/models"
)

func TestReviewPolicy_IntervalFor(t *testing.T) {
	t.Parallel()

	p := DefaultReviewPolicy()
	assert.Equal(t, 24*time.Hour, p.IntervalFor(0))
	assert.Equal(t, 24*time.Hour, p.IntervalFor(39.9))
	assert.Equal(t, 72*time.Hour, p.IntervalFor(40))
	assert.Equal(t, 72*time.Hour, p.IntervalFor(79.9))
	assert.Equal(t, 14*24*time.Hour, p.IntervalFor(80))
	assert.Equal(t, 14*24*time.Hour, p.IntervalFor(100))
}

func TestReviewPolicy_NextForReview(t *testing.T) {
	t.Parallel()

	now := t0.Add(30 * 24 * time.Hour)
	records := []models.ProgressRecord{
		{ModuleID: "fresh", Confidence: 20, LastPracticed: now.Add(-time.Hour)},
		{ModuleID: "weak_old", Confidence: 20, LastPracticed: now.Add(-5 * 24 * time.Hour)},
		{ModuleID: "weak_older", Confidence: 20, LastPracticed: now.Add(-10 * 24 * time.Hour)},
		{ModuleID: "learning", Confidence: 60, LastPracticed: now.Add(-4 * 24 * time.Hour)},
		{ModuleID: "mastered_recent", Confidence: 90, LastPracticed: now.Add(-7 * 24 * time.Hour)},
		{ModuleID: "mastered_stale", Confidence: 90, LastPracticed: now.Add(-20 * 24 * time.Hour)},
	}

	due := DefaultReviewPolicy().NextForReview(records, now, 0)
	ids := make([]string, 0, len(due))
	for _, d := range due {
		ids = append(ids, d.ModuleID)
	}
	assert.Equal(t, []string{"weak_older", "weak_old", "learning", "mastered_stale"}, ids)

	limited := DefaultReviewPolicy().NextForReview(records, now, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "weak_older", limited[0].ModuleID)
	assert.Equal(t, 9*24*time.Hour, limited[0].Overdue)
}
