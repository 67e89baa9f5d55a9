package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string][]string
	fail  string
}

func (n *recordingNotifier) SendReminders(_ context.Context, userID string, moduleIDs []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if userID == n.fail {
		return errors.New("mailbox full")
	}
	if n.calls == nil {
		n.calls = make(map[string][]string)
	}
	n.calls[userID] = moduleIDs
	return nil
}

func (n *recordingNotifier) snapshot() map[string][]string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string][]string, len(n.calls))
	for k, v := range n.calls {
		out[k] = v
	}
	return out
}

var sweepTime = time.Date(2025, time.July, 14, 12, 0, 0, 0, time.UTC)

func seededService(t *testing.T) *progress.Service {
	t.Helper()

	store := progress.NewMemoryStore()
	ctx := context.Background()
	old := sweepTime.Add(-20 * 24 * time.Hour)
	for _, m := range []struct {
		user, module string
		conf         float64
		at           time.Time
	}{
		{"alice", "two_pointers", 30, old},
		{"alice", "sliding_window", 10, old},
		{"alice", "binary_search", 95, sweepTime},
		{"bob", "heaps", 60, old},
		{"carol", "tries", 90, sweepTime},
	} {
		_, err := store.Merge(ctx, m.user, m.module, models.ProgressUpdate{Confidence: models.Float(m.conf)}, m.at, progress.MergeOptions{})
		require.NoError(t, err)
	}
	return progress.NewService(store, progress.DefaultConfig(), nil).
		WithClock(func() time.Time { return sweepTime })
}

func TestCheckAndSendReminders(t *testing.T) {
	n := &recordingNotifier{}
	s := New(seededService(t), n, Config{StartHour: 8, EndHour: 20}, zaptest.NewLogger(t)).
		WithClock(func() time.Time { return sweepTime })

	sent := s.checkAndSendReminders(context.Background())
	assert.Equal(t, 2, sent)
	assert.Equal(t, map[string][]string{
		"alice": {"sliding_window", "two_pointers"},
		"bob":   {"heaps"},
	}, n.snapshot())
}

func TestCheckAndSendReminders_OutsideHours(t *testing.T) {
	n := &recordingNotifier{}
	late := time.Date(2025, time.July, 14, 23, 0, 0, 0, time.UTC)
	s := New(seededService(t), n, Config{StartHour: 8, EndHour: 22}, nil).
		WithClock(func() time.Time { return late })

	assert.Equal(t, 0, s.checkAndSendReminders(context.Background()))
	assert.Empty(t, n.snapshot())
}

func TestCheckAndSendReminders_NotifierFailureSkipsUser(t *testing.T) {
	n := &recordingNotifier{fail: "alice"}
	s := New(seededService(t), n, Config{StartHour: 0, EndHour: 23, MaxModules: 1}, zaptest.NewLogger(t)).
		WithClock(func() time.Time { return sweepTime })

	assert.Equal(t, 1, s.checkAndSendReminders(context.Background()))
	assert.Equal(t, map[string][]string{"bob": {"heaps"}}, n.snapshot())
}

func TestRunManualCheck(t *testing.T) {
	n := &recordingNotifier{}
	night := time.Date(2025, time.July, 14, 3, 0, 0, 0, time.UTC)
	s := New(seededService(t), n, Config{StartHour: 8, EndHour: 22, MaxModules: 1}, nil).
		WithClock(func() time.Time { return night })

	require.NoError(t, s.RunManualCheck(context.Background(), "alice"))
	require.NoError(t, s.RunManualCheck(context.Background(), "carol"))
	assert.Equal(t, map[string][]string{"alice": {"sliding_window"}}, n.snapshot())
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(seededService(t), LogNotifier{}, Config{Interval: time.Hour, EndHour: 23}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
