package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/algoscope/internal/progress"
)

// Константы для настроек уведомлений по умолчанию
const (
	DefaultReminderStartHour = 8
	DefaultReminderEndHour   = 22
)

// DueSource lists modules waiting for review.
type DueSource interface {
	DueByUser(ctx context.Context) (map[string][]progress.DueModule, error)
	Due(ctx context.Context, userID string, limit int) ([]progress.DueModule, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(ctx context.Context, userID string, moduleIDs []string) error
}

// Config controls when and how often the sweep runs.
type Config struct {
	Interval  time.Duration
	StartHour int
	EndHour   int
	// MaxModules caps the modules named in one reminder. 0 means no cap.
	MaxModules int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    DueSource
	notifier  Notifier
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(source DueSource, notifier Notifier, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock used for the reminder hours.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.cfg.Interval).Do(func() {
		s.checkAndSendReminders(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Int("start_hour", s.cfg.StartHour),
		zap.Int("end_hour", s.cfg.EndHour))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Run starts the scheduler and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// inReminderHours reports whether the current hour is inside the window.
func (s *Scheduler) inReminderHours() bool {
	hour := s.now().Hour()
	return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
}

// checkAndSendReminders finds users with due modules and reminds them.
// It returns the number of users notified.
func (s *Scheduler) checkAndSendReminders(ctx context.Context) int {
	// Проверяем, находится ли текущий час в диапазоне времени для отправки уведомлений
	if !s.inReminderHours() {
		s.logger.Debug("outside reminder hours, skipping",
			zap.Int("hour", s.now().Hour()),
			zap.Int("start_hour", s.cfg.StartHour),
			zap.Int("end_hour", s.cfg.EndHour))
		return 0
	}

	byUser, err := s.source.DueByUser(ctx)
	if err != nil {
		s.logger.Error("failed to list due modules", zap.Error(err))
		return 0
	}

	users := make([]string, 0, len(byUser))
	for user := range byUser {
		users = append(users, user)
	}
	sort.Strings(users)

	sent := 0
	for _, user := range users {
		if err := s.notify(ctx, user, byUser[user]); err != nil {
			s.logger.Error("failed to send reminder", zap.String("user_id", user), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// RunManualCheck forces a check for a specific user, ignoring the reminder
// hours.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) error {
	due, err := s.source.Due(ctx, userID, s.cfg.MaxModules)
	if err != nil {
		return err
	}
	return s.notify(ctx, userID, due)
}

func (s *Scheduler) notify(ctx context.Context, userID string, due []progress.DueModule) error {
	if len(due) == 0 {
		return nil
	}
	if s.cfg.MaxModules > 0 && len(due) > s.cfg.MaxModules {
		due = due[:s.cfg.MaxModules]
	}

	ids := make([]string, len(due))
	for i, d := range due {
		ids[i] = d.ModuleID
	}
	return s.notifier.SendReminders(ctx, userID, ids)
}

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

// SendReminders logs the reminder.
func (n LogNotifier) SendReminders(_ context.Context, userID string, moduleIDs []string) error {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("review reminder", zap.String("user_id", userID), zap.Strings("modules", moduleIDs))
	return nil
}
