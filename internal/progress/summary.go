package progress

import (
	"gonum.org/v1/gonum/stat"

	"github.com/example/algoscope/pkg/models"
)

// CategoryModules lists the modules that belong to one curriculum category.
type CategoryModules struct {
	ID      string
	Title   string
	Modules []string
}

// CategorySummary is the per-category mastery shown on the profile radar.
type CategorySummary struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Mastery      float64 `json:"mastery"`
	Theory       float64 `json:"theory"`
	Optimization float64 `json:"optimization"`
	Edge         float64 `json:"edge"`
	Practiced    int     `json:"practiced"`
	Total        int     `json:"total"`
}

// Summarize averages the breakdown of every module in each category.
// Modules the user never practiced count as zero.
func Summarize(records []models.ProgressRecord, categories []CategoryModules) []CategorySummary {
	byModule := make(map[string]*models.ProgressRecord, len(records))
	for i := range records {
		byModule[records[i].ModuleID] = &records[i]
	}

	out := make([]CategorySummary, 0, len(categories))
	for _, cat := range categories {
		sum := CategorySummary{ID: cat.ID, Title: cat.Title, Total: len(cat.Modules)}
		if len(cat.Modules) == 0 {
			out = append(out, sum)
			continue
		}

		theory := make([]float64, len(cat.Modules))
		opt := make([]float64, len(cat.Modules))
		edge := make([]float64, len(cat.Modules))
		mastery := make([]float64, len(cat.Modules))
		for i, id := range cat.Modules {
			rec, ok := byModule[id]
			if !ok {
				continue
			}
			sum.Practiced++
			d := Breakdown(rec)
			theory[i], opt[i], edge[i] = d.Theory, d.Optimization, d.Edge
			mastery[i] = d.Mastery()
		}

		sum.Theory = round1(stat.Mean(theory, nil))
		sum.Optimization = round1(stat.Mean(opt, nil))
		sum.Edge = round1(stat.Mean(edge, nil))
		sum.Mastery = round1(stat.Mean(mastery, nil))
		out = append(out, sum)
	}
	return out
}
