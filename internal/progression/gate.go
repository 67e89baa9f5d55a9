package progression

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/algoscope/pkg/models"
)

// MasteryThreshold is the confidence a module needs before the next step of
// its track opens.
const MasteryThreshold = 80.0

// ErrInvalidTrack is returned by ValidateTracks.
var ErrInvalidTrack = errors.New("invalid track")

// Lookup returns the recorded confidence of a module. Modules with no record
// report ok=false and are treated as zero.
type Lookup func(moduleID string) (confidence float64, ok bool)

// MapLookup adapts a plain map.
func MapLookup(m map[string]float64) Lookup {
	return func(id string) (float64, bool) {
		v, ok := m[id]
		return v, ok
	}
}

// IsMastered reports whether the module's confidence reaches the threshold.
func IsMastered(moduleID string, lookup Lookup) bool {
	if lookup == nil {
		return false
	}
	conf, ok := lookup(moduleID)
	if !ok {
		return false
	}
	return conf >= MasteryThreshold
}

// IsUnlocked reports whether step index of track is open. The first step is
// always open; every later step needs the one before it mastered. The
// module's own confidence plays no part.
func IsUnlocked(track models.Track, index int, lookup Lookup) bool {
	if index < 0 || index >= len(track.Steps) {
		return false
	}
	if index == 0 {
		return true
	}
	return IsMastered(track.Steps[index-1], lookup)
}

// StepStatus is the gate outcome for one module of a track.
type StepStatus struct {
	ModuleID   string  `json:"moduleId"`
	Confidence float64 `json:"confidence"`
	Unlocked   bool    `json:"unlocked"`
	Mastered   bool    `json:"mastered"`
	Current    bool    `json:"current"`
}

// TrackStatus is the gate outcome for a whole track.
type TrackStatus struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Steps []StepStatus `json:"steps"`
}

// Evaluate applies the gate to every step of every track. Current marks the
// first step that is open but not yet mastered.
func Evaluate(tracks []models.Track, lookup Lookup) []TrackStatus {
	out := make([]TrackStatus, 0, len(tracks))
	for _, tr := range tracks {
		ts := TrackStatus{ID: tr.ID, Title: tr.Title, Steps: make([]StepStatus, len(tr.Steps))}
		currentSet := false
		for i, id := range tr.Steps {
			var conf float64
			if lookup != nil {
				conf, _ = lookup(id)
			}
			st := StepStatus{
				ModuleID:   id,
				Confidence: conf,
				Unlocked:   IsUnlocked(tr, i, lookup),
				Mastered:   IsMastered(id, lookup),
			}
			if !currentSet && st.Unlocked && !st.Mastered {
				st.Current = true
				currentSet = true
			}
			ts.Steps[i] = st
		}
		out = append(out, ts)
	}
	return out
}

// DefaultTracks returns the canonical learning paths.
func DefaultTracks() []models.Track {
	return []models.Track{
		{
			ID:    "sorting",
			Title: "Sorting Evolution",
			Steps: []string{"selection_sort", "insertion_sort", "merge_sort", "quick_sort", "heap_sort", "radix_sort"},
		},
		{
			ID:    "searching",
			Title: "Search Refinement",
			Steps: []string{"linear_search", "binary_search", "lower_bound", "search_on_answer"},
		},
		{
			ID:    "traversal",
			Title: "Graph Traversal",
			Steps: []string{"recursion", "dfs_recursive", "bfs_standard", "01_bfs", "multi_source_bfs"},
		},
	}
}

// ValidateTracks rejects tracks without an id or steps, duplicate track ids
// and blank or repeated module ids inside a track.
func ValidateTracks(tracks []models.Track) error {
	seen := make(map[string]bool, len(tracks))
	for i, tr := range tracks {
		if strings.TrimSpace(tr.ID) == "" {
			return fmt.Errorf("%w: track %d has no id", ErrInvalidTrack, i)
		}
		if seen[tr.ID] {
			return fmt.Errorf("%w: duplicate track id %q", ErrInvalidTrack, tr.ID)
		}
		seen[tr.ID] = true

		if len(tr.Steps) == 0 {
			return fmt.Errorf("%w: track %q has no steps", ErrInvalidTrack, tr.ID)
		}
		steps := make(map[string]bool, len(tr.Steps))
		for j, step := range tr.Steps {
			if strings.TrimSpace(step) == "" {
				return fmt.Errorf("%w: track %q step %d is blank", ErrInvalidTrack, tr.ID, j)
			}
			if steps[step] {
				return fmt.Errorf("%w: track %q repeats %q", ErrInvalidTrack, tr.ID, step)
			}
			steps[step] = true
		}
	}
	return nil
}
