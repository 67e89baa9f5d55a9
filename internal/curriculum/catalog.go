package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// CoreCategoryID is the category holding the core patterns.
const CoreCategoryID = "core_patterns"

// SubPattern is one drillable variation of a module. Templates are kept
// raw so a legacy bare-string template can still be reported.
type SubPattern struct {
	ID        string                     `json:"id"`
	Title     string                     `json:"title"`
	Templates map[string]json.RawMessage `json:"templates"`
}

// Module is one learnable pattern.
type Module struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	SubPatterns []SubPattern `json:"subPatterns"`
}

// Category groups modules in the foundations catalog.
type Category struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Modules []Module `json:"modules"`
}

// Load reads a foundations catalog from disk.
func Load(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a foundations catalog. The document is either an array of
// categories or an object with a corePatterns module list.
func Parse(data []byte) ([]Category, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to parse catalog: empty document")
	}

	if trimmed[0] == '[' {
		var cats []Category
		if err := json.Unmarshal(trimmed, &cats); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
		return cats, nil
	}

	var legacy struct {
		CorePatterns []Module `json:"corePatterns"`
	}
	if err := json.Unmarshal(trimmed, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if legacy.CorePatterns == nil {
		return nil, fmt.Errorf("failed to parse catalog: unknown structure")
	}
	return []Category{{ID: CoreCategoryID, Title: "Core Patterns", Modules: legacy.CorePatterns}}, nil
}

// CoreModules returns the modules of the core category: the one with id
// core_patterns, or else the first one containing sliding_window.
func CoreModules(cats []Category) ([]Module, bool) {
	for _, c := range cats {
		if c.ID == CoreCategoryID {
			return c.Modules, true
		}
	}
	for _, c := range cats {
		for _, m := range c.Modules {
			if m.ID == "sliding_window" {
				return c.Modules, true
			}
		}
	}
	return nil, false
}
