// Package kvstore is a progress.Store backed by an embedded BadgerDB.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/pkg/models"
)

// maxMergeAttempts bounds retries of a conflicting transaction.
const maxMergeAttempts = 16

// Config configures the badger store.
type Config struct {
	// Path is the data directory. Ignored when InMemory is true.
	Path     string
	InMemory bool

	SyncWrites bool

	// GCInterval is how often value log GC runs. 0 disables it.
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultConfig returns settings for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns settings for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store persists one JSON document per (user, module) pair.
type Store struct {
	db     *badger.DB
	logger *zap.Logger

	stop     chan struct{}
	wg       sync.WaitGroup
	closeErr error
	once     sync.Once
}

var _ progress.Store = (*Store)(nil)

// Open opens or creates the database described by cfg.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger.Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	s := &Store{db: db, logger: logger, stop: make(chan struct{})}
	if !cfg.InMemory && cfg.GCInterval > 0 {
		s.wg.Add(1)
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

// Keys are "progress\x00<len(user)>:<user><module>". The length prefix keeps
// the user part unambiguous whatever bytes the ids contain.
func recordKey(userID, moduleID string) []byte {
	return append(userPrefix(userID), moduleID...)
}

func userPrefix(userID string) []byte {
	return []byte("progress\x00" + strconv.Itoa(len(userID)) + ":" + userID)
}

var allPrefix = []byte("progress\x00")

// Merge reads, merges and writes the record in one transaction. Badger
// aborts a transaction whose read set changed underneath it, so a
// conflicting merge is retried against the fresh value.
func (s *Store) Merge(ctx context.Context, userID, moduleID string, update models.ProgressUpdate, now time.Time, opts progress.MergeOptions) (*models.ProgressRecord, error) {
	key := recordKey(userID, moduleID)

	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var merged *models.ProgressRecord
		err := s.db.Update(func(txn *badger.Txn) error {
			existing, err := getRecord(txn, key)
			if err != nil {
				return err
			}
			merged = progress.Merge(existing, userID, moduleID, update, now, opts)

			data, err := json.Marshal(merged)
			if err != nil {
				return fmt.Errorf("failed to encode record: %w", err)
			}
			return txn.Set(key, data)
		})
		if errors.Is(err, badger.ErrConflict) {
			s.logger.Debug("merge conflict, retrying",
				zap.String("user_id", userID), zap.String("module_id", moduleID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to merge progress: %w", err)
		}
		return merged, nil
	}
	return nil, fmt.Errorf("failed to merge progress: %w", badger.ErrConflict)
}

func getRecord(txn *badger.Txn, key []byte) (*models.ProgressRecord, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var rec models.ProgressRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if rec.SubPatternConfidence == nil {
		rec.SubPatternConfidence = make(map[string]float64)
	}
	return &rec, nil
}

// Get returns one record, or nil when the pair has never been practiced.
func (s *Store) Get(_ context.Context, userID, moduleID string) (*models.ProgressRecord, error) {
	var rec *models.ProgressRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecord(txn, recordKey(userID, moduleID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByUser returns the user's records in module id order.
func (s *Store) ListByUser(_ context.Context, userID string) ([]models.ProgressRecord, error) {
	return s.scan(userPrefix(userID))
}

// ListAll returns every record ordered by user then module.
func (s *Store) ListAll(_ context.Context) ([]models.ProgressRecord, error) {
	return s.scan(allPrefix)
}

func (s *Store) scan(prefix []byte) ([]models.ProgressRecord, error) {
	out := make([]models.ProgressRecord, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec models.ProgressRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("failed to decode %q: %w", it.Item().Key(), err)
			}
			if rec.SubPatternConfidence == nil {
				rec.SubPatternConfidence = make(map[string]float64)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	// Key order already matches, except for ids containing the separator.
	progress.SortRecords(out)
	return out, nil
}

func (s *Store) runGC(interval time.Duration, ratio float64) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				if err := s.db.RunValueLogGC(ratio); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.logger.Warn("value log gc failed", zap.Error(err))
					}
					break
				}
			}
		case <-s.stop:
			return
		}
	}
}

// Close stops GC and closes the database. Safe to call more than once.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}
