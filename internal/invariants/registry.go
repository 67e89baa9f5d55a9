package invariants

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed invariants.yaml
var embedded []byte

// Descriptor is the display invariant of a problem or variant.
type Descriptor struct {
	Formula     string `json:"formula" yaml:"formula"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Color       string `json:"color" yaml:"color"`
	ModelName   string `json:"modelName" yaml:"modelName"`
}

type document struct {
	Descriptors map[string]Descriptor `yaml:"descriptors"`
	Aliases     map[string]string     `yaml:"aliases"`
}

// Registry is a read-only id to Descriptor mapping.
type Registry struct {
	entries map[string]Descriptor
}

// Parse builds a registry from YAML. Aliases are resolved eagerly and must
// name an existing descriptor.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse invariants: %w", err)
	}

	entries := make(map[string]Descriptor, len(doc.Descriptors)+len(doc.Aliases))
	for id, d := range doc.Descriptors {
		if d.Formula == "" {
			return nil, fmt.Errorf("invariant %q has no formula", id)
		}
		entries[id] = d
	}
	for alias, target := range doc.Aliases {
		d, ok := doc.Descriptors[target]
		if !ok {
			return nil, fmt.Errorf("alias %q points to unknown invariant %q", alias, target)
		}
		if _, clash := entries[alias]; clash {
			return nil, fmt.Errorf("alias %q shadows a descriptor", alias)
		}
		entries[alias] = d
	}

	return &Registry{entries: entries}, nil
}

// Lookup returns the descriptor for id.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.entries[id]
	return d, ok
}

// IDs returns every known id, aliases included, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded data. It is parsed
// once per process.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Parse(embedded)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Lookup is shorthand for Default().Lookup.
func Lookup(id string) (Descriptor, bool) {
	return Default().Lookup(id)
}
