package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

var (
	// RequiredPatterns must each exist in the core category with full templates.
	RequiredPatterns = []string{"sliding_window", "two_pointers", "binary_search", "monotonic_stack"}

	// RequiredLanguages must each have a bruteForce and optimal template.
	RequiredLanguages = []string{"python", "javascript", "java", "cpp"}
)

// ValidateFoundations checks that every required pattern carries structured
// templates for every required language. An empty result means compliant.
func ValidateFoundations(cats []Category, patterns, languages []string) []string {
	var errs []string
	core, _ := CoreModules(cats)

	byID := make(map[string]Module, len(core))
	for _, m := range core {
		if _, seen := byID[m.ID]; !seen {
			byID[m.ID] = m
		}
	}

	for _, pid := range patterns {
		m, ok := byID[pid]
		if !ok {
			errs = append(errs, fmt.Sprintf("Missing pattern: %s", pid))
			continue
		}
		if m.SubPatterns == nil {
			errs = append(errs, fmt.Sprintf("Pattern %s has no subPatterns.", pid))
			continue
		}

		for _, sp := range m.SubPatterns {
			if sp.Templates == nil {
				errs = append(errs, fmt.Sprintf("Missing templates object for %s/%s", pid, sp.ID))
				continue
			}
			for _, lang := range languages {
				errs = append(errs, checkTemplate(pid, sp.ID, lang, sp.Templates[lang])...)
			}
		}
	}
	return errs
}

func checkTemplate(pid, spID, lang string, raw json.RawMessage) []string {
	if !truthy(raw) {
		return []string{fmt.Sprintf("Missing template for %s/%s in %s", pid, spID, lang)}
	}
	if bytes.TrimSpace(raw)[0] == '"' {
		return []string{fmt.Sprintf("Template for %s/%s in %s is still a STRING (needs object with bruteForce/optimal)", pid, spID, lang)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return []string{fmt.Sprintf("Template for %s/%s in %s is not an object (needs bruteForce/optimal)", pid, spID, lang)}
	}

	var errs []string
	if !truthy(fields["bruteForce"]) {
		errs = append(errs, fmt.Sprintf("Missing bruteForce for %s/%s in %s", pid, spID, lang))
	}
	if !truthy(fields["optimal"]) {
		errs = append(errs, fmt.Sprintf("Missing optimal for %s/%s in %s", pid, spID, lang))
	}
	return errs
}

// truthy treats absent, null, false, zero and empty-string values as missing.
func truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// Problem is one entry of the problem bank.
type Problem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	PatternLevel   string `json:"patternLevel"`
	PrimaryPattern string `json:"primaryPattern"`
	SubPattern     string `json:"subPattern"`
}

// LoadProblems reads a problem bank from disk.
func LoadProblems(path string) ([]Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problems: %w", err)
	}
	var problems []Problem
	if err := json.Unmarshal(data, &problems); err != nil {
		return nil, fmt.Errorf("failed to parse problems: %w", err)
	}
	return problems, nil
}

// ValidateProblems reports every problem whose classification falls outside
// the taxonomy. Each problem yields at most one message.
func ValidateProblems(problems []Problem, tax Taxonomy) []string {
	var errs []string
	for _, p := range problems {
		patterns, ok := tax[p.PatternLevel]
		if p.PatternLevel == "" || !ok {
			errs = append(errs, fmt.Sprintf("Problem %s (%s): Invalid patternLevel '%s'", p.ID, p.Title, p.PatternLevel))
			continue
		}
		if _, ok := patterns[p.PrimaryPattern]; p.PrimaryPattern == "" || !ok {
			errs = append(errs, fmt.Sprintf("Problem %s (%s): Invalid primaryPattern '%s' for level '%s'", p.ID, p.Title, p.PrimaryPattern, p.PatternLevel))
			continue
		}
		if p.SubPattern == "" || !tax.Allows(p.PatternLevel, p.PrimaryPattern, p.SubPattern) {
			errs = append(errs, fmt.Sprintf("Problem %s (%s): Invalid subPattern '%s' for pattern '%s'", p.ID, p.Title, p.SubPattern, p.PrimaryPattern))
		}
	}
	return errs
}
