package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/pkg/models"
)

// ProgressRepository handles database operations for module progress. It
// implements progress.Store.
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

var _ progress.Store = (*ProgressRepository)(nil)

// progressRow is the stored shape of a record. Timestamps are unix nanos so
// both dialects round-trip them exactly.
type progressRow struct {
	UserID           string  `db:"user_id"`
	ModuleID         string  `db:"module_id"`
	DrillScore       float64 `db:"drill_score"`
	VisualizerScore  float64 `db:"visualizer_score"`
	TemplateScore    float64 `db:"template_score"`
	RecognitionScore float64 `db:"recognition_score"`
	EdgeCaseScore    float64 `db:"edge_case_score"`
	Confidence       float64 `db:"confidence"`
	LastPracticed    int64   `db:"last_practiced"`
	CreatedAt        int64   `db:"created_at"`
	UpdatedAt        int64   `db:"updated_at"`
}

func (r progressRow) record() models.ProgressRecord {
	return models.ProgressRecord{
		UserID:               r.UserID,
		ModuleID:             r.ModuleID,
		DrillScore:           r.DrillScore,
		VisualizerScore:      r.VisualizerScore,
		TemplateScore:        r.TemplateScore,
		RecognitionScore:     r.RecognitionScore,
		EdgeCaseScore:        r.EdgeCaseScore,
		Confidence:           r.Confidence,
		SubPatternConfidence: make(map[string]float64),
		LastPracticed:        time.Unix(0, r.LastPracticed).UTC(),
		CreatedAt:            time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt:            time.Unix(0, r.UpdatedAt).UTC(),
	}
}

type subPatternRow struct {
	UserID       string  `db:"user_id"`
	ModuleID     string  `db:"module_id"`
	SubPatternID string  `db:"sub_pattern_id"`
	Score        float64 `db:"score"`
}

const progressColumns = `user_id, module_id, drill_score, visualizer_score, template_score,
	recognition_score, edge_case_score, confidence, last_practiced, created_at, updated_at`

// Absent fields bind as NULL: the insert falls back to zero and the update
// keeps the stored value.
const upsertProgress = `
	INSERT INTO user_progress (` + progressColumns + `)
	VALUES (?, ?, COALESCE(?, 0.0), COALESCE(?, 0.0), COALESCE(?, 0.0),
		COALESCE(?, 0.0), COALESCE(?, 0.0), COALESCE(?, 0.0), ?, ?, ?)
	ON CONFLICT (user_id, module_id) DO UPDATE SET
		drill_score = COALESCE(?, user_progress.drill_score),
		visualizer_score = COALESCE(?, user_progress.visualizer_score),
		template_score = COALESCE(?, user_progress.template_score),
		recognition_score = COALESCE(?, user_progress.recognition_score),
		edge_case_score = COALESCE(?, user_progress.edge_case_score),
		confidence = COALESCE(?, user_progress.confidence),
		last_practiced = excluded.last_practiced,
		updated_at = excluded.updated_at
`

const upsertSubPattern = `
	INSERT INTO sub_pattern_confidence (user_id, module_id, sub_pattern_id, score)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (user_id, module_id, sub_pattern_id) DO UPDATE SET score = excluded.score
`

// Merge applies the update inside a single transaction.
func (r *ProgressRepository) Merge(ctx context.Context, userID, moduleID string, update models.ProgressUpdate, now time.Time, opts progress.MergeOptions) (*models.ProgressRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := update.Scores
	if s == nil {
		s = &models.ScoreUpdate{}
	}
	ts := now.UnixNano()
	fields := []interface{}{
		nullable(s.Drill), nullable(s.Visualizer), nullable(s.Template),
		nullable(s.Recognition), nullable(s.Edge), nullable(update.Confidence),
	}

	args := []interface{}{userID, moduleID}
	args = append(args, fields...)
	args = append(args, ts, ts, ts)
	args = append(args, fields...)

	if _, err := tx.ExecContext(ctx, tx.Rebind(upsertProgress), args...); err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	if sp := update.SubPattern; sp != nil && sp.ID != "" && sp.Score != nil {
		if _, err := tx.ExecContext(ctx, tx.Rebind(upsertSubPattern), userID, moduleID, sp.ID, *sp.Score); err != nil {
			return nil, fmt.Errorf("failed to upsert sub-pattern confidence: %w", err)
		}
	}

	var row progressRow
	err = tx.GetContext(ctx, &row, tx.Rebind(`SELECT `+progressColumns+` FROM user_progress WHERE user_id = ? AND module_id = ?`), userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	rec := row.record()

	if progress.ShouldDerive(update, opts) {
		rec.Confidence = progress.ComputeConfidence(&rec)
		_, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE user_progress SET confidence = ? WHERE user_id = ? AND module_id = ?`),
			rec.Confidence, userID, moduleID)
		if err != nil {
			return nil, fmt.Errorf("failed to update confidence: %w", err)
		}
	}

	var subs []subPatternRow
	err = tx.SelectContext(ctx, &subs, tx.Rebind(`
		SELECT user_id, module_id, sub_pattern_id, score FROM sub_pattern_confidence
		WHERE user_id = ? AND module_id = ?`), userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sub-pattern confidence: %w", err)
	}
	for _, sp := range subs {
		rec.SubPatternConfidence[sp.SubPatternID] = sp.Score
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit progress: %w", err)
	}
	return &rec, nil
}

// ListByUser returns all records for a user ordered by module id.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.ProgressRecord, error) {
	var rows []progressRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT `+progressColumns+`
		FROM user_progress WHERE user_id = ? ORDER BY module_id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user progress: %w", err)
	}

	var subs []subPatternRow
	err = r.db.SelectContext(ctx, &subs, r.db.Rebind(`SELECT user_id, module_id, sub_pattern_id, score
		FROM sub_pattern_confidence WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-pattern confidence: %w", err)
	}
	return assemble(rows, subs), nil
}

// ListAll returns every record ordered by user then module.
func (r *ProgressRepository) ListAll(ctx context.Context) ([]models.ProgressRecord, error) {
	var rows []progressRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+progressColumns+`
		FROM user_progress ORDER BY user_id, module_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	var subs []subPatternRow
	err = r.db.SelectContext(ctx, &subs, `SELECT user_id, module_id, sub_pattern_id, score FROM sub_pattern_confidence`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-pattern confidence: %w", err)
	}
	return assemble(rows, subs), nil
}

// Get returns one record, or nil when the pair has never been practiced.
func (r *ProgressRepository) Get(ctx context.Context, userID, moduleID string) (*models.ProgressRecord, error) {
	var row progressRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+progressColumns+`
		FROM user_progress WHERE user_id = ? AND module_id = ?`), userID, moduleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	var subs []subPatternRow
	err = r.db.SelectContext(ctx, &subs, r.db.Rebind(`SELECT user_id, module_id, sub_pattern_id, score
		FROM sub_pattern_confidence WHERE user_id = ? AND module_id = ?`), userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sub-pattern confidence: %w", err)
	}
	recs := assemble([]progressRow{row}, subs)
	return &recs[0], nil
}

// Ping checks that the database is reachable.
func (r *ProgressRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying connection.
func (r *ProgressRepository) Close() error {
	return r.db.Close()
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func assemble(rows []progressRow, subs []subPatternRow) []models.ProgressRecord {
	type key struct{ user, module string }

	out := make([]models.ProgressRecord, 0, len(rows))
	index := make(map[key]int, len(rows))
	for i, row := range rows {
		out = append(out, row.record())
		index[key{row.UserID, row.ModuleID}] = i
	}
	for _, sp := range subs {
		if i, ok := index[key{sp.UserID, sp.ModuleID}]; ok {
			out[i].SubPatternConfidence[sp.SubPatternID] = sp.Score
		}
	}
	return out
}
