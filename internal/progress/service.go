package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/example/algoscope/pkg/models"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "algoscope_progress_updates_total",
		Help: "Progress updates by outcome.",
	}, []string{"result"})

	mergeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "algoscope_progress_merge_seconds",
		Help:    "Time spent merging an update in the store.",
		Buckets: prometheus.DefBuckets,
	})

	validate = validator.New()
	tracer   = otel.Tracer("github.com/example/algoscope/internal/progress")
)

// Config holds the service settings.
type Config struct {
	DeriveConfidence bool
	Review           *ReviewPolicy
}

// DefaultConfig keeps confidence caller-provided and uses the default review bands.
func DefaultConfig() Config {
	return Config{Review: DefaultReviewPolicy()}
}

// Service validates updates and routes them to a Store.
type Service struct {
	store  Store
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a service. A nil logger disables logging.
func NewService(store Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Review == nil {
		cfg.Review = DefaultReviewPolicy()
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: logger.Named("progress"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitUpdate merges a practice result into the user's record for the
// module, creating the record on first use.
func (s *Service) SubmitUpdate(ctx context.Context, userID, moduleID string, update models.ProgressUpdate) (*models.ProgressRecord, error) {
	ctx, span := tracer.Start(ctx, "progress.SubmitUpdate")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID), attribute.String("module_id", moduleID))

	if err := ValidateUpdate(userID, moduleID, update); err != nil {
		updatesTotal.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, "invalid update")
		return nil, err
	}

	start := time.Now()
	rec, err := s.store.Merge(ctx, userID, moduleID, update, s.now(), MergeOptions{DeriveConfidence: s.cfg.DeriveConfidence})
	mergeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		updatesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "merge failed")
		s.logger.Error("failed to merge progress update",
			zap.String("user_id", userID), zap.String("module_id", moduleID), zap.Error(err))
		return nil, storageError(err)
	}

	updatesTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("progress updated",
		zap.String("user_id", userID),
		zap.String("module_id", moduleID),
		zap.Float64("confidence", rec.Confidence))
	return rec, nil
}

// ListByUser returns every record for the user. Order is not part of the
// contract.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.ProgressRecord, error) {
	ctx, span := tracer.Start(ctx, "progress.ListByUser")
	defer span.End()

	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	recs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err)
	}
	return recs, nil
}

// Get returns the user's record for one module, or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, moduleID string) (*models.ProgressRecord, error) {
	ctx, span := tracer.Start(ctx, "progress.Get")
	defer span.End()

	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	if err := validateID("moduleId", moduleID); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, userID, moduleID)
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, userID, moduleID)
	}
	return rec, nil
}

// ConfidenceLookup returns module id to confidence for the user.
func (s *Service) ConfidenceLookup(ctx context.Context, userID string) (map[string]float64, error) {
	recs, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(recs))
	for _, r := range recs {
		out[r.ModuleID] = r.Confidence
	}
	return out, nil
}

// Summary returns the per-category breakdown for the user.
func (s *Service) Summary(ctx context.Context, userID string, categories []CategoryModules) ([]CategorySummary, error) {
	recs, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(recs, categories), nil
}

// Due returns the user's modules that are due for review, weakest first.
func (s *Service) Due(ctx context.Context, userID string, limit int) ([]DueModule, error) {
	recs, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.cfg.Review.NextForReview(recs, s.now(), limit), nil
}

// DueByUser groups every due module in the store by user.
func (s *Service) DueByUser(ctx context.Context) (map[string][]DueModule, error) {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	byUser := make(map[string][]models.ProgressRecord)
	for _, r := range recs {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	now := s.now()
	out := make(map[string][]DueModule, len(byUser))
	for user, list := range byUser {
		if due := s.cfg.Review.NextForReview(list, now, 0); len(due) > 0 {
			out[user] = due
		}
	}
	return out, nil
}

// ValidateUpdate checks the ids and the score bounds.
func ValidateUpdate(userID, moduleID string, update models.ProgressUpdate) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(moduleID) == "" {
		return fmt.Errorf("%w: userId and moduleId are required", ErrInvalidUpdate)
	}
	if err := validateID("userId", userID); err != nil {
		return err
	}
	if err := validateID("moduleId", moduleID); err != nil {
		return err
	}
	if err := validate.Struct(update); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	return nil
}

// validateID rejects blank ids and ids carrying control characters.
func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidUpdate, field)
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: %s contains control characters", ErrInvalidUpdate, field)
	}
	return nil
}

func storageError(err error) error {
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
