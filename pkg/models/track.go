package models

// Track is an ordered progression of module ids. Each step unlocks once the
// previous one is mastered.
type Track struct {
	ID    string   `json:"id" yaml:"id"`
	Title string   `json:"title" yaml:"title"`
	Steps []string `json:"steps" yaml:"steps"`
}
