package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
)

// WordMasteryStore defines the interface for per-(learner, item) memory state persistence.
type WordMasteryStore interface {
	// Get retrieves the memory state of one item.
	// Returns ErrWordMasteryNotFound if the learner has never answered the item;
	// callers treat that as the zero-state, not as a failure.
	// Stored numeric values are clamped into range before being returned.
	Get(ctx context.Context, learnerID uuid.UUID, itemID int64) (*domain.WordMastery, error)

	// Upsert inserts or overwrites the record keyed by (LearnerID, ItemID).
	// Repeating the same call leaves the store unchanged.
	// Returns ErrInvalidEntity if the record fails domain validation.
	Upsert(ctx context.Context, mastery *domain.WordMastery) error

	// ListDue returns the learner's records of the given type whose next review
	// time is at or before asOf, ordered by next review time.
	ListDue(
		ctx context.Context,
		learnerID uuid.UUID,
		itemType domain.ItemType,
		asOf time.Time,
	) ([]domain.WordMastery, error)

	// ListAll returns every record of the learner, restricted to itemType when it
	// is not empty. The result is ordered by item id.
	ListAll(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.WordMastery, error)

	// ListForItems returns the learner's records for the given item ids.
	// Items that were never reviewed are simply absent from the result.
	ListForItems(ctx context.Context, learnerID uuid.UUID, itemIDs []int64) ([]domain.WordMastery, error)

	// WithTx returns a new WordMasteryStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) WordMasteryStore
}
