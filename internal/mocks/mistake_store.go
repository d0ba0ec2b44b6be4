package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/store"
)

// MockMistakeStore implements store.MistakeStore for testing.
// When a function is not set, the mock behaves like an in-memory ledger.
type MockMistakeStore struct {
	GetFn     func(ctx context.Context, learnerID uuid.UUID, text string) (*domain.MistakeEntry, error)
	UpsertFn  func(ctx context.Context, entry *domain.MistakeEntry) error
	DeleteFn  func(ctx context.Context, learnerID uuid.UUID, text string) error
	ListFn    func(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.MistakeEntry, error)
	TrackedFn func(ctx context.Context, learnerID uuid.UUID, texts []string) (map[string]bool, error)

	// Entries holds the in-memory ledger keyed by normalized text.
	Entries map[string]domain.MistakeEntry
}

var _ store.MistakeStore = (*MockMistakeStore)(nil)

// NewMockMistakeStore creates an empty in-memory MockMistakeStore.
func NewMockMistakeStore() *MockMistakeStore {
	return &MockMistakeStore{Entries: make(map[string]domain.MistakeEntry)}
}

// Get implements store.MistakeStore.
func (m *MockMistakeStore) Get(ctx context.Context, learnerID uuid.UUID, text string) (*domain.MistakeEntry, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, learnerID, text)
	}
	e, ok := m.Entries[text]
	if !ok {
		return nil, store.ErrMistakeNotFound
	}
	e.TextIDs = append([]int64(nil), e.TextIDs...)
	return &e, nil
}

// Upsert implements store.MistakeStore.
func (m *MockMistakeStore) Upsert(ctx context.Context, entry *domain.MistakeEntry) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, entry)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]domain.MistakeEntry)
	}
	m.Entries[entry.Text] = *entry
	return nil
}

// Delete implements store.MistakeStore.
func (m *MockMistakeStore) Delete(ctx context.Context, learnerID uuid.UUID, text string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, learnerID, text)
	}
	if _, ok := m.Entries[text]; !ok {
		return store.ErrMistakeNotFound
	}
	delete(m.Entries, text)
	return nil
}

// List implements store.MistakeStore.
func (m *MockMistakeStore) List(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.MistakeEntry, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, learnerID, itemType)
	}
	entries := []domain.MistakeEntry{}
	for _, e := range m.Entries {
		if itemType == "" || e.ItemType == itemType {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Tracked implements store.MistakeStore.
func (m *MockMistakeStore) Tracked(ctx context.Context, learnerID uuid.UUID, texts []string) (map[string]bool, error) {
	if m.TrackedFn != nil {
		return m.TrackedFn(ctx, learnerID, texts)
	}
	tracked := make(map[string]bool)
	for _, text := range texts {
		if _, ok := m.Entries[text]; ok {
			tracked[text] = true
		}
	}
	return tracked, nil
}

// WithTx returns the mock itself.
func (m *MockMistakeStore) WithTx(*sqlx.Tx) store.MistakeStore {
	return m
}
