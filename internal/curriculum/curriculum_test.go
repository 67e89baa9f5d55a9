package curriculum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/algoscope/pkg/models"
)

const goodTemplate = `{"bruteForce": "loop", "optimal": "two pointers"}`

func templates(body string) string {
	return `{"python": ` + body + `, "javascript": ` + body + `, "java": ` + body + `, "cpp": ` + body + `}`
}

func compliantCatalog() string {
	mod := func(id string) string {
		return `{"id": "` + id + `", "title": "` + id + `", "subPatterns": [{"id": "basic", "title": "Basic", "templates": ` + templates(goodTemplate) + `}]}`
	}
	return `[
		{"id": "data_structures", "title": "Data Structures", "modules": [{"id": "arrays", "title": "Array"}]},
		{"id": "core_patterns", "title": "Core Patterns", "modules": [` +
		mod("sliding_window") + `,` + mod("two_pointers") + `,` + mod("binary_search") + `,` + mod("monotonic_stack") +
		`]}
	]`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CategoryArray(t *testing.T) {
	t.Parallel()

	cats, err := Load(writeFile(t, "foundations.json", compliantCatalog()))
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "core_patterns", cats[1].ID)
	assert.Len(t, cats[1].Modules, 4)
}

func TestLoad_LegacyCorePatterns(t *testing.T) {
	t.Parallel()

	cats, err := Parse([]byte(`{"corePatterns": [{"id": "two_pointers", "title": "Two Pointers"}]}`))
	require.NoError(t, err)
	core, ok := CoreModules(cats)
	require.True(t, ok)
	assert.Equal(t, "two_pointers", core[0].ID)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"something": 1}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[{"id": `))
	assert.Error(t, err)
}

func TestValidateFoundations_Compliant(t *testing.T) {
	t.Parallel()

	cats, err := Parse([]byte(compliantCatalog()))
	require.NoError(t, err)
	assert.Empty(t, ValidateFoundations(cats, RequiredPatterns, RequiredLanguages))
}

func TestValidateFoundations_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	doc := `[{"id": "misc", "title": "Misc", "modules": [
		{"id": "sliding_window", "title": "SW", "subPatterns": [
			{"id": "fixed", "title": "Fixed", "templates": {"python": "def f(): pass", "javascript": {"optimal": "x"}, "java": null}}
		]},
		{"id": "two_pointers", "title": "TP"},
		{"id": "binary_search", "title": "BS", "subPatterns": [{"id": "classic", "title": "Classic"}]}
	]}]`
	cats, err := Parse([]byte(doc))
	require.NoError(t, err)

	errs := ValidateFoundations(cats, RequiredPatterns, RequiredLanguages)
	assert.Equal(t, []string{
		"Template for sliding_window/fixed in python is still a STRING (needs object with bruteForce/optimal)",
		"Missing bruteForce for sliding_window/fixed in javascript",
		"Missing template for sliding_window/fixed in java",
		"Missing template for sliding_window/fixed in cpp",
		"Pattern two_pointers has no subPatterns.",
		"Missing templates object for binary_search/classic",
		"Missing pattern: monotonic_stack",
	}, errs)
}

func TestValidateFoundations_NonObjectTemplate(t *testing.T) {
	t.Parallel()

	doc := `[{"id": "core_patterns", "title": "Core", "modules": [
		{"id": "two_pointers", "title": "TP", "subPatterns": [
			{"id": "basic", "title": "Basic", "templates": {"python": ["loop"], "javascript": 5, "java": ` + goodTemplate + `, "cpp": ` + goodTemplate + `}}
		]}
	]}]`
	cats, err := Parse([]byte(doc))
	require.NoError(t, err)

	errs := ValidateFoundations(cats, []string{"two_pointers"}, RequiredLanguages)
	assert.Equal(t, []string{
		"Template for two_pointers/basic in python is not an object (needs bruteForce/optimal)",
		"Template for two_pointers/basic in javascript is not an object (needs bruteForce/optimal)",
	}, errs)
}

func TestValidateFoundations_NoCoreCategory(t *testing.T) {
	t.Parallel()

	errs := ValidateFoundations([]Category{{ID: "other"}}, []string{"two_pointers"}, RequiredLanguages)
	assert.Equal(t, []string{"Missing pattern: two_pointers"}, errs)
}

func TestValidateProblems(t *testing.T) {
	t.Parallel()

	problems := []Problem{
		{ID: "1", Title: "Two Sum II", PatternLevel: "core_patterns", PrimaryPattern: "two_pointer", SubPattern: "opposite_direction"},
		{ID: "2", Title: "Bad Level", PatternLevel: "expert", PrimaryPattern: "two_pointer", SubPattern: "same_direction"},
		{ID: "3", Title: "Bad Primary", PatternLevel: "foundation", PrimaryPattern: "two_pointer", SubPattern: "same_direction"},
		{ID: "4", Title: "Bad Sub", PatternLevel: "core_patterns", PrimaryPattern: "sliding_window", SubPattern: "opposite_direction"},
		{ID: "5", Title: "Empty"},
	}

	errs := ValidateProblems(problems, DefaultTaxonomy())
	assert.Equal(t, []string{
		"Problem 2 (Bad Level): Invalid patternLevel 'expert'",
		"Problem 3 (Bad Primary): Invalid primaryPattern 'two_pointer' for level 'foundation'",
		"Problem 4 (Bad Sub): Invalid subPattern 'opposite_direction' for pattern 'sliding_window'",
		"Problem 5 (Empty): Invalid patternLevel ''",
	}, errs)
}

func TestLoadProblems(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "problems.json", `[{"id": "p1", "title": "T", "patternLevel": "foundation", "primaryPattern": "array_basics", "subPattern": "prefix_sum"}]`)
	problems, err := LoadProblems(path)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Empty(t, ValidateProblems(problems, DefaultTaxonomy()))
}

func TestDefaultHierarchy(t *testing.T) {
	t.Parallel()

	h := DefaultHierarchy()
	require.Len(t, h.Levels, 3)
	assert.Equal(t, "data_structures", h.Levels[0].ID)

	info, ok := h.Pattern("sliding_window")
	require.True(t, ok)
	assert.Equal(t, "core_patterns", info.LevelID)
	assert.Contains(t, info.Pattern.SubPatterns, "at_most_k")

	_, ok = h.Pattern("nope")
	assert.False(t, ok)
}

func TestParseHierarchy_DuplicatePattern(t *testing.T) {
	t.Parallel()

	_, _, err := ParseHierarchy([]byte(`
levels:
  - id: a
    patterns: [{id: x}]
  - id: b
    patterns: [{id: x}]
`))
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	t.Parallel()

	cats, err := Parse([]byte(compliantCatalog()))
	require.NoError(t, err)

	tracks := []models.Track{
		{ID: "searching", Title: "Searching", Steps: []string{"linear_search", "binary_search"}},
		{ID: "other", Steps: []string{"binary_search", "binary_search"}},
	}
	idx := NewIndex(cats, tracks)

	e, ok := idx.Lookup("binary_search")
	require.True(t, ok)
	assert.Equal(t, "core_patterns", e.CategoryID)
	assert.Equal(t, []string{"searching", "other"}, e.Tracks)

	e, ok = idx.Lookup("linear_search")
	require.True(t, ok)
	assert.Empty(t, e.CategoryID)
	assert.Equal(t, "linear_search", idx.Title("linear_search"))
	assert.Equal(t, "Array", idx.Title("arrays"))
	assert.Equal(t, "unknown", idx.Title("unknown"))
	assert.Equal(t, 6, idx.Len())
	assert.Len(t, idx.ModuleIDs(), 6)

	groups := idx.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"sliding_window", "two_pointers", "binary_search", "monotonic_stack"}, groups[1].Modules)
}
