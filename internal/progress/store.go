package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/algoscope/pkg/models"
)

// Store persists progress records. Merge must be atomic per (userID,
// moduleID): two concurrent merges touching different fields of the same
// record must both survive.
type Store interface {
	Merge(ctx context.Context, userID, moduleID string, update models.ProgressUpdate, now time.Time, opts MergeOptions) (*models.ProgressRecord, error)
	// Get returns nil without an error when the pair has no record.
	Get(ctx context.Context, userID, moduleID string) (*models.ProgressRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.ProgressRecord, error)
	ListAll(ctx context.Context) ([]models.ProgressRecord, error)
	Close() error
}

type recordKey struct {
	userID   string
	moduleID string
}

// MemoryStore keeps records in a map guarded by a mutex. It is used in tests
// and for throwaway local runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[recordKey]*models.ProgressRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]*models.ProgressRecord)}
}

// Merge applies the update under the store lock.
func (s *MemoryStore) Merge(_ context.Context, userID, moduleID string, update models.ProgressUpdate, now time.Time, opts MergeOptions) (*models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{userID, moduleID}
	rec := Merge(s.records[key], userID, moduleID, update, now, opts)
	s.records[key] = rec
	return rec.Clone(), nil
}

// Get returns a copy of one record.
func (s *MemoryStore) Get(_ context.Context, userID, moduleID string) (*models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordKey{userID, moduleID}]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// ListByUser returns copies of the user's records ordered by module id.
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ProgressRecord, 0)
	for k, rec := range s.records {
		if k.userID == userID {
			out = append(out, *rec.Clone())
		}
	}
	SortRecords(out)
	return out, nil
}

// ListAll returns copies of every record ordered by user then module.
func (s *MemoryStore) ListAll(_ context.Context) ([]models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ProgressRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec.Clone())
	}
	SortRecords(out)
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// SortRecords orders records by user id then module id.
func SortRecords(recs []models.ProgressRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].UserID != recs[j].UserID {
			return recs[i].UserID < recs[j].UserID
		}
		return recs[i].ModuleID < recs[j].ModuleID
	})
}
