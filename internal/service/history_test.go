package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/mocks"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_ListHistoryLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requested int
		expected  int
	}{
		{"default when unset", 0, service.DefaultHistoryLimit},
		{"default when negative", -5, service.DefaultHistoryLimit},
		{"explicit", 7, 7},
		{"capped", 1000, service.MaxHistoryLimit},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			historyStore := &mocks.MockHistoryStore{}
			svc := service.NewHistoryService(historyStore, nil)

			_, err := svc.ListHistory(context.Background(), uuid.New(), tt.requested)
			require.NoError(t, err)
			assert.Equal(t, []int{tt.expected}, historyStore.ListLimits)
		})
	}
}

func TestHistoryService_SaveHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	historyStore := &mocks.MockHistoryStore{}
	svc := service.NewHistoryService(historyStore, nil)

	h, err := domain.NewPracticeHistory(uuid.New(), 3, domain.ItemTypeWord, domain.PracticeModeSpaced,
		4, 1, 2*time.Minute, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.SaveHistory(ctx, h))
	require.Len(t, historyStore.Created, 1)
	assert.Equal(t, 5, historyStore.Created[0].TotalCount)

	assert.ErrorIs(t, svc.SaveHistory(ctx, nil), service.ErrInvalidInput)
	assert.ErrorIs(t, svc.SaveHistory(ctx, &domain.PracticeHistory{}), service.ErrInvalidInput)

	historyStore.CreateFn = func(context.Context, *domain.PracticeHistory) error {
		return errors.New("insert failed")
	}
	assert.ErrorIs(t, svc.SaveHistory(ctx, h), service.ErrStorageFailure)
}

func TestHistoryService_Statistics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	learner := uuid.New()
	recent := []domain.PracticeHistory{{ID: uuid.New(), LearnerID: learner, TextID: 1}}

	historyStore := &mocks.MockHistoryStore{
		AggregateFn: func(context.Context, uuid.UUID) (*domain.PracticeStatistics, error) {
			return &domain.PracticeStatistics{TotalPractices: 4, BestAccuracy: 100}, nil
		},
		ListFn: func(context.Context, uuid.UUID, int) ([]domain.PracticeHistory, error) {
			return recent, nil
		},
	}
	svc := service.NewHistoryService(historyStore, nil)

	stats, err := svc.Statistics(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalPractices)
	assert.Equal(t, recent, stats.RecentHistories)
	assert.Equal(t, []int{domain.RecentHistoryLimit}, historyStore.ListLimits)

	historyStore.AggregateFn = func(context.Context, uuid.UUID) (*domain.PracticeStatistics, error) {
		return nil, errors.New("query failed")
	}
	_, err = svc.Statistics(ctx, learner)
	assert.ErrorIs(t, err, service.ErrStorageFailure)
}
