package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []domain.ScheduledItem {
	return []domain.ScheduledItem{
		{ID: 11, Content: "alpha", Type: domain.ItemTypeWord, MasteryLevel: 2},
		{ID: 12, Content: "beta", Type: domain.ItemTypeWord, IsNew: true},
		{ID: 13, Content: "gamma", Type: domain.ItemTypeWord, IsNew: true},
	}
}

func TestProgressStore_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressStore(db, discardLogger())
	ctx := context.Background()
	learner := newLearner()

	_, err := s.Get(ctx, learner, 5, domain.ItemTypeWord)
	assert.ErrorIs(t, err, store.ErrProgressNotFound)

	p, err := domain.NewSessionProgress(learner, 5, domain.ItemTypeWord, domain.PracticeModeSpaced, sampleItems(), 10, testNow)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, p))

	advanced := p.Advance(true, testNow.Add(time.Minute))
	require.NoError(t, s.Upsert(ctx, &advanced))

	got, err := s.Get(ctx, learner, 5, domain.ItemTypeWord)
	require.NoError(t, err)
	assert.Equal(t, sampleItems(), got.Items)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, domain.PracticeModeSpaced, got.Mode)
	assert.True(t, got.StartedAt.Equal(testNow))
	assert.True(t, got.SavedAt.Equal(testNow.Add(time.Minute)))

	// Different item type is a different key.
	_, err = s.Get(ctx, learner, 5, domain.ItemTypeSentence)
	assert.ErrorIs(t, err, store.ErrProgressNotFound)

	require.NoError(t, s.Delete(ctx, learner, 5, domain.ItemTypeWord))
	assert.ErrorIs(t, s.Delete(ctx, learner, 5, domain.ItemTypeWord), store.ErrProgressNotFound)
}

func TestProgressStore_RejectsInvalid(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressStore(db, discardLogger())

	err := s.Upsert(context.Background(), &domain.SessionProgress{LearnerID: newLearner(), TextID: 1})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestProgressStore_DeleteSavedBefore(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressStore(db, discardLogger())
	ctx := context.Background()
	learner := newLearner()

	old, err := domain.NewSessionProgress(learner, 1, domain.ItemTypeWord, domain.PracticeModeSpaced,
		sampleItems(), 0, testNow.Add(-48*time.Hour))
	require.NoError(t, err)
	fresh, err := domain.NewSessionProgress(learner, 2, domain.ItemTypeWord, domain.PracticeModeLegacy,
		sampleItems(), 0, testNow)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, old))
	require.NoError(t, s.Upsert(ctx, fresh))

	n, err := s.DeleteSavedBefore(ctx, testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Get(ctx, learner, 1, domain.ItemTypeWord)
	assert.ErrorIs(t, err, store.ErrProgressNotFound)
	_, err = s.Get(ctx, learner, 2, domain.ItemTypeWord)
	assert.NoError(t, err)
}
