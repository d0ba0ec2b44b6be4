package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
)

// History listing bounds.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryService records completed practice sessions and aggregates them.
type HistoryService interface {
	// SaveHistory stores a completed session record.
	SaveHistory(ctx context.Context, history *domain.PracticeHistory) error

	// ListHistory returns the learner's records newest first. A non-positive
	// limit selects DefaultHistoryLimit; larger limits are capped at MaxHistoryLimit.
	ListHistory(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.PracticeHistory, error)

	// Statistics returns totals, averages, bests and the most recent records.
	Statistics(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error)
}

type historyServiceImpl struct {
	history store.HistoryStore
	logger  *slog.Logger
}

var _ HistoryService = (*historyServiceImpl)(nil)

// NewHistoryService creates a HistoryService.
func NewHistoryService(history store.HistoryStore, logger *slog.Logger) HistoryService {
	if history == nil {
		panic("history cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &historyServiceImpl{
		history: history,
		logger:  logger.With(slog.String("component", "history_service")),
	}
}

func (s *historyServiceImpl) SaveHistory(ctx context.Context, history *domain.PracticeHistory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if history == nil {
		return NewServiceError("save_history", "nil history", ErrInvalidInput)
	}
	if err := history.Validate(); err != nil {
		return NewServiceError("save_history", "invalid history", errors.Join(ErrInvalidInput, err))
	}

	if err := s.history.Create(ctx, history); err != nil {
		return NewServiceError("save_history", "failed to save history", err)
	}

	log.Info("practice session recorded",
		slog.String("learner_id", history.LearnerID.String()),
		slog.Int64("text_id", history.TextID),
		slog.Int("total", history.TotalCount),
		slog.Float64("accuracy", history.Accuracy))
	return nil
}

func (s *historyServiceImpl) ListHistory(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]domain.PracticeHistory, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	records, err := s.history.List(ctx, learnerID, limit)
	if err != nil {
		return nil, NewServiceError("list_history", "failed to list history", err)
	}
	return records, nil
}

func (s *historyServiceImpl) Statistics(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error) {
	stats, err := s.history.Aggregate(ctx, learnerID)
	if err != nil {
		return nil, NewServiceError("statistics", "failed to aggregate history", err)
	}

	recent, err := s.history.List(ctx, learnerID, domain.RecentHistoryLimit)
	if err != nil {
		return nil, NewServiceError("statistics", "failed to list recent history", err)
	}
	stats.RecentHistories = recent

	return stats, nil
}
