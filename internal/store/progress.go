package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
)

// ProgressStore defines the interface for resumable session state.
// There is at most one live row per (learner, text id, item type).
type ProgressStore interface {
	// Get retrieves the saved session. Staleness is not checked here.
	// Returns ErrProgressNotFound if no row exists.
	Get(
		ctx context.Context,
		learnerID uuid.UUID,
		textID int64,
		itemType domain.ItemType,
	) (*domain.SessionProgress, error)

	// Upsert inserts or overwrites the row for the progress key.
	Upsert(ctx context.Context, progress *domain.SessionProgress) error

	// Delete removes the row for the progress key.
	// Returns ErrProgressNotFound if no row exists.
	Delete(ctx context.Context, learnerID uuid.UUID, textID int64, itemType domain.ItemType) error

	// DeleteSavedBefore removes every row saved before cutoff and returns how
	// many were removed.
	DeleteSavedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
