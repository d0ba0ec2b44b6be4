package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/store"
)

// MockHistoryStore implements store.HistoryStore for testing.
type MockHistoryStore struct {
	CreateFn    func(ctx context.Context, history *domain.PracticeHistory) error
	ListFn      func(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.PracticeHistory, error)
	AggregateFn func(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error)

	// Created records every history passed to Create.
	Created []domain.PracticeHistory
	// ListLimits records the limit of every List call.
	ListLimits []int
}

var _ store.HistoryStore = (*MockHistoryStore)(nil)

// Create implements store.HistoryStore.
func (m *MockHistoryStore) Create(ctx context.Context, history *domain.PracticeHistory) error {
	if history != nil {
		m.Created = append(m.Created, *history)
	}
	if m.CreateFn != nil {
		return m.CreateFn(ctx, history)
	}
	return nil
}

// List implements store.HistoryStore.
func (m *MockHistoryStore) List(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.PracticeHistory, error) {
	m.ListLimits = append(m.ListLimits, limit)
	if m.ListFn != nil {
		return m.ListFn(ctx, learnerID, limit)
	}
	return []domain.PracticeHistory{}, nil
}

// Aggregate implements store.HistoryStore.
func (m *MockHistoryStore) Aggregate(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error) {
	if m.AggregateFn != nil {
		return m.AggregateFn(ctx, learnerID)
	}
	return &domain.PracticeStatistics{RecentHistories: []domain.PracticeHistory{}}, nil
}
