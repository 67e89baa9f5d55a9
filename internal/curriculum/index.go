package curriculum

import (
	"sort"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/pkg/models"
)

// Entry is everything known about one module id.
type Entry struct {
	ModuleID      string   `json:"moduleId"`
	Title         string   `json:"title"`
	CategoryID    string   `json:"categoryId,omitempty"`
	CategoryTitle string   `json:"categoryTitle,omitempty"`
	Tracks        []string `json:"tracks,omitempty"`
}

// Index is a read-only module lookup built once from the catalog and the
// progression tracks.
type Index struct {
	entries    map[string]Entry
	categories []Category
}

// NewIndex flattens categories and tracks into a single map.
func NewIndex(categories []Category, tracks []models.Track) *Index {
	idx := &Index{entries: make(map[string]Entry), categories: categories}

	for _, c := range categories {
		for _, m := range c.Modules {
			idx.entries[m.ID] = Entry{
				ModuleID:      m.ID,
				Title:         m.Title,
				CategoryID:    c.ID,
				CategoryTitle: c.Title,
			}
		}
	}

	for _, tr := range tracks {
		for _, step := range tr.Steps {
			e, ok := idx.entries[step]
			if !ok {
				e = Entry{ModuleID: step, Title: step}
			}
			if !containsString(e.Tracks, tr.ID) {
				e.Tracks = append(e.Tracks, tr.ID)
			}
			idx.entries[step] = e
		}
	}
	return idx
}

// Lookup returns the entry for a module id.
func (idx *Index) Lookup(moduleID string) (Entry, bool) {
	e, ok := idx.entries[moduleID]
	return e, ok
}

// Title returns the module title, or the id itself when unknown.
func (idx *Index) Title(moduleID string) string {
	if e, ok := idx.entries[moduleID]; ok && e.Title != "" {
		return e.Title
	}
	return moduleID
}

// Len is the number of distinct module ids.
func (idx *Index) Len() int { return len(idx.entries) }

// ModuleIDs returns every indexed id in sorted order.
func (idx *Index) ModuleIDs() []string {
	ids := make([]string, 0, len(idx.entries))
	for id := range idx.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Groups returns the catalog categories in the shape the progress summary
// expects.
func (idx *Index) Groups() []progress.CategoryModules {
	out := make([]progress.CategoryModules, 0, len(idx.categories))
	for _, c := range idx.categories {
		g := progress.CategoryModules{ID: c.ID, Title: c.Title, Modules: make([]string, 0, len(c.Modules))}
		for _, m := range c.Modules {
			g.Modules = append(g.Modules, m.ID)
		}
		out = append(out, g)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
