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

func fiveItems() []domain.ScheduledItem {
	items := make([]domain.ScheduledItem, 5)
	for i := range items {
		items[i] = domain.ScheduledItem{
			ID:      int64(i + 1),
			Content: string(rune('a' + i)),
			Type:    domain.ItemTypeWord,
			IsNew:   true,
		}
	}
	return items
}

func TestProgressService_SaveAndResume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	learner := uuid.New()
	progressStore := mocks.NewMockProgressStore()
	svc := service.NewProgressService(progressStore, 0, nil)
	assert.Equal(t, domain.DefaultProgressValidity, svc.Validity())

	start := time.Now().UTC().Add(-time.Hour)
	p, err := domain.NewSessionProgress(learner, 7, domain.ItemTypeWord, domain.PracticeModeSpaced, fiveItems(), 5, start)
	require.NoError(t, err)
	require.NoError(t, svc.SaveProgress(ctx, p))

	// Answer two items, persisting after each.
	current := *p
	for i := 0; i < 2; i++ {
		current = current.Advance(i == 0, start.Add(time.Duration(i+1)*time.Minute))
		require.NoError(t, svc.SaveProgress(ctx, &current))
	}

	resumed, err := svc.GetProgress(ctx, learner, 7, domain.ItemTypeWord)
	require.NoError(t, err)
	assert.Equal(t, 2, resumed.CurrentIndex)
	assert.Equal(t, fiveItems(), resumed.Items)
	assert.Equal(t, 1, resumed.CorrectCount)
	assert.Equal(t, 1, resumed.IncorrectCount)
}

func TestProgressService_StaleProgressIsDiscarded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	learner := uuid.New()
	progressStore := mocks.NewMockProgressStore()
	svc := service.NewProgressService(progressStore, 24*time.Hour, nil)

	saved := time.Now().UTC().Add(-25 * time.Hour)
	p, err := domain.NewSessionProgress(learner, 7, domain.ItemTypeWord, domain.PracticeModeSpaced, fiveItems(), 0, saved)
	require.NoError(t, err)
	p = ptr(p.Advance(true, saved))
	require.NoError(t, svc.SaveProgress(ctx, p))

	_, err = svc.GetProgress(ctx, learner, 7, domain.ItemTypeWord)
	assert.ErrorIs(t, err, service.ErrStaleProgress)
	assert.ErrorIs(t, err, service.ErrInvalidState)
	assert.Empty(t, progressStore.Rows, "stale record is deleted")

	_, err = svc.GetProgress(ctx, learner, 7, domain.ItemTypeWord)
	assert.ErrorIs(t, err, service.ErrProgressNotFound)
}

func TestProgressService_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	learner := uuid.New()
	svc := service.NewProgressService(mocks.NewMockProgressStore(), time.Hour, nil)

	p, err := domain.NewSessionProgress(learner, 1, domain.ItemTypeWord, domain.PracticeModeLegacy, fiveItems(), 0, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.SaveProgress(ctx, p))

	require.NoError(t, svc.ClearProgress(ctx, learner, 1, domain.ItemTypeWord))
	assert.ErrorIs(t, svc.ClearProgress(ctx, learner, 1, domain.ItemTypeWord), service.ErrProgressNotFound)
}

func TestProgressService_SaveErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nil progress", func(t *testing.T) {
		svc := service.NewProgressService(mocks.NewMockProgressStore(), 0, nil)
		assert.ErrorIs(t, svc.SaveProgress(ctx, nil), service.ErrInvalidInput)
	})

	t.Run("empty item list", func(t *testing.T) {
		svc := service.NewProgressService(mocks.NewMockProgressStore(), 0, nil)
		p := &domain.SessionProgress{
			LearnerID: uuid.New(),
			TextID:    1,
			ItemType:  domain.ItemTypeWord,
			Mode:      domain.PracticeModeSpaced,
		}
		assert.ErrorIs(t, svc.SaveProgress(ctx, p), service.ErrInvalidInput)
	})

	t.Run("storage failure", func(t *testing.T) {
		progressStore := mocks.NewMockProgressStore()
		progressStore.UpsertFn = func(context.Context, *domain.SessionProgress) error {
			return errors.New("write failed")
		}
		svc := service.NewProgressService(progressStore, 0, nil)

		p, err := domain.NewSessionProgress(uuid.New(), 1, domain.ItemTypeWord, domain.PracticeModeSpaced, fiveItems(), 0, time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, svc.SaveProgress(ctx, p), service.ErrStorageFailure)
	})
}

func TestProgressService_SweepStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	progressStore := mocks.NewMockProgressStore()
	svc := service.NewProgressService(progressStore, 24*time.Hour, nil)

	now := time.Now().UTC()
	for i, age := range []time.Duration{time.Hour, 30 * time.Hour, 48 * time.Hour} {
		p, err := domain.NewSessionProgress(uuid.New(), int64(i+1), domain.ItemTypeWord, domain.PracticeModeSpaced,
			fiveItems(), 0, now.Add(-age))
		require.NoError(t, err)
		require.NoError(t, svc.SaveProgress(ctx, p))
	}

	n, err := svc.SweepStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, progressStore.Rows, 1)
}

func TestProgressService_UsesInjectedClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	learner := uuid.New()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := service.NewProgressService(mocks.NewMockProgressStore(), 24*time.Hour, nil,
		service.WithProgressClock(func() time.Time { return clock }))

	p, err := domain.NewSessionProgress(learner, 3, domain.ItemTypeWord, domain.PracticeModeSpaced,
		fiveItems(), 0, clock.Add(-23*time.Hour))
	require.NoError(t, err)
	require.NoError(t, svc.SaveProgress(ctx, p))

	_, err = svc.GetProgress(ctx, learner, 3, domain.ItemTypeWord)
	require.NoError(t, err, "23 hours old is still live")

	clock = clock.Add(2 * time.Hour)
	_, err = svc.GetProgress(ctx, learner, 3, domain.ItemTypeWord)
	assert.ErrorIs(t, err, service.ErrStaleProgress)
}

func ptr[T any](v T) *T {
	return &v
}
