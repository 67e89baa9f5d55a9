package curriculum

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed hierarchy.yaml
var hierarchyYAML []byte

// Pattern is one entry of the pattern hierarchy.
type Pattern struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	SubPatterns []string `yaml:"subPatterns" json:"subPatterns"`
}

// Level groups patterns by difficulty tier.
type Level struct {
	ID       string    `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Patterns []Pattern `yaml:"patterns" json:"patterns"`
}

// PatternInfo locates a pattern inside the hierarchy.
type PatternInfo struct {
	LevelID    string  `json:"levelId"`
	LevelTitle string  `json:"levelTitle"`
	Pattern    Pattern `json:"pattern"`
}

// Taxonomy maps patternLevel -> primaryPattern -> allowed subPatterns.
type Taxonomy map[string]map[string][]string

// Allows reports whether the triple is part of the taxonomy.
func (t Taxonomy) Allows(level, primary, sub string) bool {
	patterns, ok := t[level]
	if !ok {
		return false
	}
	subs, ok := patterns[primary]
	if !ok {
		return false
	}
	for _, s := range subs {
		if s == sub {
			return true
		}
	}
	return false
}

// Hierarchy is the pattern hierarchy with a flat lookup built at load time.
type Hierarchy struct {
	Levels []Level

	byPattern map[string]PatternInfo
}

type hierarchyFile struct {
	Levels   []Level  `yaml:"levels"`
	Taxonomy Taxonomy `yaml:"taxonomy"`
}

// ParseHierarchy decodes a hierarchy document.
func ParseHierarchy(data []byte) (*Hierarchy, Taxonomy, error) {
	var f hierarchyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse hierarchy: %w", err)
	}

	h := &Hierarchy{Levels: f.Levels, byPattern: make(map[string]PatternInfo)}
	for _, lvl := range f.Levels {
		for _, p := range lvl.Patterns {
			if _, dup := h.byPattern[p.ID]; dup {
				return nil, nil, fmt.Errorf("duplicate pattern %q in hierarchy", p.ID)
			}
			h.byPattern[p.ID] = PatternInfo{LevelID: lvl.ID, LevelTitle: lvl.Title, Pattern: p}
		}
	}
	return h, f.Taxonomy, nil
}

// Pattern finds a pattern by id.
func (h *Hierarchy) Pattern(id string) (PatternInfo, bool) {
	info, ok := h.byPattern[id]
	return info, ok
}

var (
	defaultOnce      sync.Once
	defaultHierarchy *Hierarchy
	defaultTaxonomy  Taxonomy
)

func loadDefaults() {
	defaultOnce.Do(func() {
		h, tax, err := ParseHierarchy(hierarchyYAML)
		if err != nil {
			panic(err)
		}
		defaultHierarchy, defaultTaxonomy = h, tax
	})
}

// DefaultHierarchy returns the built-in pattern hierarchy.
func DefaultHierarchy() *Hierarchy {
	loadDefaults()
	return defaultHierarchy
}

// DefaultTaxonomy returns the taxonomy problems are validated against.
func DefaultTaxonomy() Taxonomy {
	loadDefaults()
	return defaultTaxonomy
}
