package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/internal/progress/progresstest"
	"github.com/example/algoscope/pkg/models"
)

// openTestDB opens a migrated pure-Go SQLite database in a temp dir.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "data", "algoscope.db"))
	require.NoError(t, err)
	require.NoError(t, db.MigrateUp(zaptest.NewLogger(t)))
	return db
}

func TestProgressRepository_StoreSuite(t *testing.T) {
	progresstest.Run(t, func(t *testing.T) progress.Store {
		return NewProgressRepository(openTestDB(t))
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestMigrations_UpDownVersion(t *testing.T) {
	t.Parallel()

	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logger := zaptest.NewLogger(t)

	version, dirty, err := db.MigrateVersion(logger)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp(logger))
	require.NoError(t, db.MigrateUp(logger), "second run is a no-op")

	version, _, err = db.MigrateVersion(logger)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	require.NoError(t, db.MigrateDown(logger))
	version, _, err = db.MigrateVersion(logger)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestProgressRepository_GetAndPing(t *testing.T) {
	t.Parallel()

	repo := NewProgressRepository(openTestDB(t))
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()
	now := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Ping(ctx))

	rec, err := repo.Get(ctx, "u1", "two_pointers")
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = repo.Merge(ctx, "u1", "two_pointers", models.ProgressUpdate{
		Scores:     &models.ScoreUpdate{Drill: models.Float(72.5)},
		SubPattern: &models.SubPatternScore{ID: "opposite_direction", Score: models.Float(64)},
	}, now, progress.MergeOptions{})
	require.NoError(t, err)

	rec, err = repo.Get(ctx, "u1", "two_pointers")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 72.5, rec.DrillScore)
	assert.Equal(t, 0.0, rec.Confidence)
	assert.Equal(t, map[string]float64{"opposite_direction": 64}, rec.SubPatternConfidence)
	assert.True(t, now.Equal(rec.LastPracticed))
}

func TestSQLiteDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", sqliteDir(":memory:"))
	assert.Equal(t, "", sqliteDir("file:test.db?cache=shared"))
	assert.Equal(t, "", sqliteDir("algoscope.db"))
	assert.Equal(t, "data", sqliteDir("data/algoscope.db?_busy_timeout=5000"))
}
