package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
)

// MistakeStore defines the interface for mistake ledger persistence.
// Entries are keyed by (learner, normalized text).
type MistakeStore interface {
	// Get retrieves the ledger entry for a normalized text.
	// Returns ErrMistakeNotFound if the text is not tracked.
	Get(ctx context.Context, learnerID uuid.UUID, text string) (*domain.MistakeEntry, error)

	// Upsert inserts or overwrites the entry keyed by (LearnerID, Text).
	Upsert(ctx context.Context, entry *domain.MistakeEntry) error

	// Delete removes the entry for a normalized text.
	// Returns ErrMistakeNotFound if the text is not tracked.
	Delete(ctx context.Context, learnerID uuid.UUID, text string) error

	// List returns the learner's entries, most recently practiced first,
	// restricted to itemType when it is not empty.
	List(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.MistakeEntry, error)

	// Tracked reports which of the given normalized texts have a ledger entry.
	Tracked(ctx context.Context, learnerID uuid.UUID, texts []string) (map[string]bool, error)

	// WithTx returns a new MistakeStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) MistakeStore
}

// MasteredWordStore persists the binary mastered flags of the legacy practice
// mode, keyed by (learner, text id, normalized word).
type MasteredWordStore interface {
	// SetMastered flags the word as mastered; flagging twice is a no-op.
	SetMastered(ctx context.Context, learnerID uuid.UUID, textID int64, word string) error

	// ClearMastered removes the flag. Clearing an absent flag is not an error.
	ClearMastered(ctx context.Context, learnerID uuid.UUID, textID int64, word string) error

	// ListMastered returns the set of flagged words of a text.
	ListMastered(ctx context.Context, learnerID uuid.UUID, textID int64) (map[string]bool, error)

	// WithTx returns a new MasteredWordStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) MasteredWordStore
}
