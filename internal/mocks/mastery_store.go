package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/store"
)

// MockWordMasteryStore implements store.WordMasteryStore for testing.
// Unset functions return zero values, and Get reports ErrWordMasteryNotFound.
type MockWordMasteryStore struct {
	GetFn          func(ctx context.Context, learnerID uuid.UUID, itemID int64) (*domain.WordMastery, error)
	UpsertFn       func(ctx context.Context, mastery *domain.WordMastery) error
	ListDueFn      func(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType, asOf time.Time) ([]domain.WordMastery, error)
	ListAllFn      func(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.WordMastery, error)
	ListForItemsFn func(ctx context.Context, learnerID uuid.UUID, itemIDs []int64) ([]domain.WordMastery, error)

	// Upserted records every mastery passed to Upsert.
	Upserted []domain.WordMastery
}

var _ store.WordMasteryStore = (*MockWordMasteryStore)(nil)

// Get implements store.WordMasteryStore.
func (m *MockWordMasteryStore) Get(ctx context.Context, learnerID uuid.UUID, itemID int64) (*domain.WordMastery, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, learnerID, itemID)
	}
	return nil, store.ErrWordMasteryNotFound
}

// Upsert implements store.WordMasteryStore.
func (m *MockWordMasteryStore) Upsert(ctx context.Context, mastery *domain.WordMastery) error {
	if mastery != nil {
		m.Upserted = append(m.Upserted, *mastery)
	}
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, mastery)
	}
	return nil
}

// ListDue implements store.WordMasteryStore.
func (m *MockWordMasteryStore) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
	asOf time.Time,
) ([]domain.WordMastery, error) {
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, learnerID, itemType, asOf)
	}
	return []domain.WordMastery{}, nil
}

// ListAll implements store.WordMasteryStore.
func (m *MockWordMasteryStore) ListAll(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.WordMastery, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx, learnerID, itemType)
	}
	return []domain.WordMastery{}, nil
}

// ListForItems implements store.WordMasteryStore.
func (m *MockWordMasteryStore) ListForItems(
	ctx context.Context,
	learnerID uuid.UUID,
	itemIDs []int64,
) ([]domain.WordMastery, error) {
	if m.ListForItemsFn != nil {
		return m.ListForItemsFn(ctx, learnerID, itemIDs)
	}
	return []domain.WordMastery{}, nil
}

// WithTx returns the mock itself.
func (m *MockWordMasteryStore) WithTx(*sqlx.Tx) store.WordMasteryStore {
	return m
}
