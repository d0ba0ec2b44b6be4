package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/store"
)

// ProgressKey identifies a row of MockProgressStore.
type ProgressKey struct {
	LearnerID uuid.UUID
	TextID    int64
	ItemType  domain.ItemType
}

// MockProgressStore implements store.ProgressStore for testing.
// When a function is not set, the mock behaves like an in-memory table.
type MockProgressStore struct {
	GetFn               func(ctx context.Context, learnerID uuid.UUID, textID int64, itemType domain.ItemType) (*domain.SessionProgress, error)
	UpsertFn            func(ctx context.Context, progress *domain.SessionProgress) error
	DeleteFn            func(ctx context.Context, learnerID uuid.UUID, textID int64, itemType domain.ItemType) error
	DeleteSavedBeforeFn func(ctx context.Context, cutoff time.Time) (int64, error)

	Rows map[ProgressKey]domain.SessionProgress
}

var _ store.ProgressStore = (*MockProgressStore)(nil)

// NewMockProgressStore creates an empty in-memory MockProgressStore.
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{Rows: make(map[ProgressKey]domain.SessionProgress)}
}

// Get implements store.ProgressStore.
func (m *MockProgressStore) Get(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) (*domain.SessionProgress, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, learnerID, textID, itemType)
	}
	p, ok := m.Rows[ProgressKey{learnerID, textID, itemType}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return &p, nil
}

// Upsert implements store.ProgressStore.
func (m *MockProgressStore) Upsert(ctx context.Context, progress *domain.SessionProgress) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, progress)
	}
	if m.Rows == nil {
		m.Rows = make(map[ProgressKey]domain.SessionProgress)
	}
	m.Rows[ProgressKey{progress.LearnerID, progress.TextID, progress.ItemType}] = *progress
	return nil
}

// Delete implements store.ProgressStore.
func (m *MockProgressStore) Delete(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, learnerID, textID, itemType)
	}
	key := ProgressKey{learnerID, textID, itemType}
	if _, ok := m.Rows[key]; !ok {
		return store.ErrProgressNotFound
	}
	delete(m.Rows, key)
	return nil
}

// DeleteSavedBefore implements store.ProgressStore.
func (m *MockProgressStore) DeleteSavedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteSavedBeforeFn != nil {
		return m.DeleteSavedBeforeFn(ctx, cutoff)
	}
	var n int64
	for key, p := range m.Rows {
		if p.SavedAt.Before(cutoff) {
			delete(m.Rows, key)
			n++
		}
	}
	return n, nil
}
