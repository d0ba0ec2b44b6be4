package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
)

// HistoryStore defines the interface for completed practice session records.
type HistoryStore interface {
	// Create saves a new history record.
	// Returns ErrInvalidEntity if the record fails domain validation.
	Create(ctx context.Context, history *domain.PracticeHistory) error

	// List returns up to limit records of the learner, newest first.
	List(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.PracticeHistory, error)

	// Aggregate computes the learner's totals, averages and bests.
	// RecentHistories is left empty. A learner without history gets zero values.
	Aggregate(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error)
}
