// Package practice implements the practice flow of the mastery scheduler:
// composing sessions from memory state, applying SM-2 updates after each
// answer, the legacy mistake-ledger mode, and resumable session tracking.
package practice

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
)

// UpdateRequest is a single answer for an item outside of a tracked session.
type UpdateRequest struct {
	ItemID   int64           `json:"-"`
	Content  string          `json:"content" validate:"required"`
	ItemType domain.ItemType `json:"item_type" validate:"required"`
	Correct  bool            `json:"correct"`
	// TextID is the owning text, recorded in the mistake ledger. Optional.
	TextID int64 `json:"text_id" validate:"gte=0"`
}

// StartRequest starts or resumes a session for (TextID, ItemType).
type StartRequest struct {
	TextID   int64               `json:"-"`
	ItemType domain.ItemType     `json:"item_type" validate:"required"`
	Mode     domain.PracticeMode `json:"mode"`
	Limit    int                 `json:"limit" validate:"gte=0"`
	// Restart discards any live session for the key before starting.
	Restart bool `json:"restart"`
}

// AnswerRequest answers the current item of a tracked session.
type AnswerRequest struct {
	TextID   int64           `json:"-"`
	ItemType domain.ItemType `json:"item_type" validate:"required"`
	// ItemID, when set, names the item being answered. It must be the current
	// item or one further along the frozen list.
	ItemID  int64 `json:"item_id" validate:"gte=0"`
	Correct bool  `json:"correct"`
	// Mode and Limit repeat the start parameters. They are only used to
	// rebuild a session whose progress was never saved.
	Mode  domain.PracticeMode `json:"mode"`
	Limit int                 `json:"limit" validate:"gte=0"`
}

// AnswerResult reports the outcome of AnswerInSession.
type AnswerResult struct {
	Progress domain.SessionProgress `json:"progress"`
	// Mastery is the post-update memory state; set for spaced repetition sessions.
	Mastery   *domain.WordMastery `json:"mastery,omitempty"`
	Completed bool                `json:"completed"`
	// History is the record written when the answer completed the session.
	History *domain.PracticeHistory `json:"history,omitempty"`
}

// PracticeService drives practice for a learner.
type PracticeService interface {
	// GetScheduledWords composes the practice list of a text.
	//
	// Returns:
	//   - (*Composition, nil): the ordered list with its new and review totals;
	//     the list is empty when the text has items but none is due or new
	//   - (nil, ErrNothingToPractice): the text has no items of itemType
	//   - (nil, ErrInvalidInput): unknown item type or invalid text id
	//   - (nil, error): storage failures, matching ErrStorageFailure
	//
	// Composing twice without intervening answers yields the same result.
	GetScheduledWords(
		ctx context.Context,
		learnerID uuid.UUID,
		textID int64,
		itemType domain.ItemType,
		limit int,
	) (*Composition, error)

	// UpdateWordMastery applies one answer to the memory state of an item and
	// returns the post-update state.
	//
	// The mastery upsert and the mistake ledger write run in one transaction:
	// an incorrect answer records a mistake; a correct answer that reaches the
	// top mastery level clears the ledger entry of the item's text.
	UpdateWordMastery(ctx context.Context, learnerID uuid.UUID, req UpdateRequest) (*domain.WordMastery, error)

	// GetWordMasteries lists the memory state of the learner's items, restricted
	// to itemType when it is not empty.
	GetWordMasteries(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.WordMastery, error)

	// StartSession resumes the live session of (TextID, ItemType) when one
	// exists and is not stale, replaying its frozen item list. Otherwise it
	// composes a new list for the requested mode, freezes it and saves it.
	//
	// Returns ErrNothingToPractice when the text has no items and ErrNothingDue
	// when the composed list is empty.
	StartSession(ctx context.Context, learnerID uuid.UUID, req StartRequest) (Session, error)

	// AnswerInSession answers the current item of the live session, applies
	// the answer according to the session mode and advances the session by one.
	// Progress is saved after every answer; a failed save is logged and does not
	// fail the answer. The answer that completes the session deletes the
	// progress and writes a history record.
	//
	// Saved progress may lag behind the learner after a failed save. When ItemID
	// names an item further along the frozen list, the session moves forward to
	// it; when no progress exists at all, the session is recomposed from Mode and
	// Limit and positioned at ItemID.
	//
	// Returns ErrProgressNotFound or ErrStaleProgress when there is no live
	// session, ErrSessionComplete when it has no current item and ErrItemMismatch
	// when ItemID does not occur in the rest of the session.
	AnswerInSession(ctx context.Context, learnerID uuid.UUID, req AnswerRequest) (*AnswerResult, error)

	// ComposeLegacy filters words to those that are tracked in the mistake
	// ledger or not flagged mastered for the text, keeping their order.
	ComposeLegacy(ctx context.Context, learnerID uuid.UUID, textID int64, words []string) ([]string, error)

	// AnswerLegacy applies a legacy answer. A correct answer flags the word
	// mastered and clears its ledger entry; an incorrect answer removes the flag
	// and records a mistake.
	AnswerLegacy(
		ctx context.Context,
		learnerID uuid.UUID,
		textID int64,
		word string,
		itemType domain.ItemType,
		correct bool,
	) error
}
