package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/pkg/models"
)

// Submitter applies one progress update. *progress.Service implements it.
type Submitter interface {
	SubmitUpdate(ctx context.Context, userID, moduleID string, update models.ProgressUpdate) (*models.ProgressRecord, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath              string // Path to the Excel or CSV file
	UserColumn            string // Column with the user id
	ModuleColumn          string // Column with the module id
	DrillColumn           string
	VisualizerColumn      string
	TemplateColumn        string
	RecognitionColumn     string
	EdgeColumn            string
	ConfidenceColumn      string
	SubPatternColumn      string // Column with the sub-pattern id
	SubPatternScoreColumn string
	SheetName             string // Name of the sheet to import
	StartRow              int    // The row to start importing from (1-based index)
	// SkipInvalid records bad rows in the result and keeps going. When false
	// the import stops at the first bad row.
	SkipInvalid bool
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		UserColumn:            "A",
		ModuleColumn:          "B",
		DrillColumn:           "C",
		VisualizerColumn:      "D",
		TemplateColumn:        "E",
		RecognitionColumn:     "F",
		EdgeColumn:            "G",
		ConfidenceColumn:      "H",
		SubPatternColumn:      "I",
		SubPatternScoreColumn: "J",
		SheetName:             "Sheet1",
		StartRow:              2, // By default, start from the second row (skip header)
		SkipInvalid:           true,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Applied        int
	Skipped        int
	Errors         []string
}

// ImportScores imports practice results from an Excel or CSV file
func ImportScores(ctx context.Context, config ImportConfig, sub Submitter) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)

	// Check the file extension
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	return importRows(ctx, rows, config, sub)
}

// readExcel reads all rows of a sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV reads all records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func importRows(ctx context.Context, rows [][]string, config ImportConfig, sub Submitter) (*ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isBlank(row) {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		err := processRow(ctx, row, config, sub)
		if err == nil {
			result.Applied++
			continue
		}

		// A broken store fails every row that follows.
		if errors.Is(err, progress.ErrStorage) {
			return result, fmt.Errorf("row %d: %w", i+1, err)
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		if !config.SkipInvalid {
			return result, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return result, nil
}

// processRow turns one row into a ProgressUpdate and submits it
func processRow(ctx context.Context, row []string, config ImportConfig, sub Submitter) error {
	userID := cell(row, config.UserColumn)
	moduleID := cell(row, config.ModuleColumn)
	if userID == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if moduleID == "" {
		return fmt.Errorf("module cannot be empty")
	}

	var update models.ProgressUpdate
	scores := &models.ScoreUpdate{}

	fields := []struct {
		name   string
		column string
		dst    **float64
	}{
		{"drill", config.DrillColumn, &scores.Drill},
		{"visualizer", config.VisualizerColumn, &scores.Visualizer},
		{"template", config.TemplateColumn, &scores.Template},
		{"recognition", config.RecognitionColumn, &scores.Recognition},
		{"edge", config.EdgeColumn, &scores.Edge},
		{"confidence", config.ConfidenceColumn, &update.Confidence},
	}
	for _, f := range fields {
		v, err := parseScore(cell(row, f.column))
		if err != nil {
			return fmt.Errorf("invalid %s score: %w", f.name, err)
		}
		*f.dst = v
	}
	if !scores.Empty() {
		update.Scores = scores
	}

	if spID := cell(row, config.SubPatternColumn); spID != "" {
		v, err := parseScore(cell(row, config.SubPatternScoreColumn))
		if err != nil {
			return fmt.Errorf("invalid sub-pattern score: %w", err)
		}
		if v == nil {
			return fmt.Errorf("sub-pattern %s has no score", spID)
		}
		update.SubPattern = &models.SubPatternScore{ID: spID, Score: v}
	}

	_, err := sub.SubmitUpdate(ctx, userID, moduleID, update)
	return err
}

// cell returns the trimmed value of column, or "" when the row is short or
// the column is not mapped.
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseScore returns nil for an empty cell.
func parseScore(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return &v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
