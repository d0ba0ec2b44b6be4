package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PracticeMode distinguishes the two session kinds that share the progress table.
type PracticeMode string

// Supported practice modes.
const (
	// PracticeModeSpaced composes sessions from SM-2 memory state.
	PracticeModeSpaced PracticeMode = "spaced"

	// PracticeModeLegacy composes sessions from the mistake ledger and mastered flags.
	PracticeModeLegacy PracticeMode = "legacy"
)

// DefaultProgressValidity is how long a saved session may be resumed.
const DefaultProgressValidity = 24 * time.Hour

// Common validation errors for SessionProgress
var (
	ErrEmptyProgressLearnerID = errors.New("progress learner ID cannot be empty")
	ErrInvalidProgressTextID  = errors.New("progress text ID must be positive")
	ErrEmptyProgressItems     = errors.New("progress item list cannot be empty")
	ErrInvalidProgressIndex   = errors.New("progress index out of range")
	ErrInvalidProgressCounter = errors.New("progress counters cannot be negative")
)

// ParsePracticeMode converts a raw string into a PracticeMode. An empty string
// selects the spaced repetition mode.
func ParsePracticeMode(raw string) (PracticeMode, error) {
	switch m := PracticeMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return PracticeModeSpaced, nil
	case PracticeModeSpaced, PracticeModeLegacy:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPracticeMode, raw)
	}
}

// SessionProgress is the resumable state of one practice session, keyed by
// (LearnerID, TextID, ItemType). Items is frozen when the session starts and is
// replayed verbatim on resume.
type SessionProgress struct {
	LearnerID      uuid.UUID       `json:"learner_id"`
	TextID         int64           `json:"text_id"`
	ItemType       ItemType        `json:"item_type"`
	Mode           PracticeMode    `json:"mode"`
	Items          []ScheduledItem `json:"items"`
	CurrentIndex   int             `json:"current_index"`
	CorrectCount   int             `json:"correct_count"`
	IncorrectCount int             `json:"incorrect_count"`
	Limit          int             `json:"limit"`
	StartedAt      time.Time       `json:"started_at"`
	SavedAt        time.Time       `json:"saved_at"`
}

// NewSessionProgress freezes items into a fresh session positioned at index 0.
func NewSessionProgress(
	learnerID uuid.UUID,
	textID int64,
	itemType ItemType,
	mode PracticeMode,
	items []ScheduledItem,
	limit int,
	now time.Time,
) (*SessionProgress, error) {
	frozen := make([]ScheduledItem, len(items))
	copy(frozen, items)

	p := &SessionProgress{
		LearnerID: learnerID,
		TextID:    textID,
		ItemType:  itemType,
		Mode:      mode,
		Items:     frozen,
		Limit:     limit,
		StartedAt: now.UTC(),
		SavedAt:   now.UTC(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the SessionProgress has valid data.
func (p *SessionProgress) Validate() error {
	if p.LearnerID == uuid.Nil {
		return ErrEmptyProgressLearnerID
	}

	if p.TextID <= 0 {
		return ErrInvalidProgressTextID
	}

	if !p.ItemType.Valid() {
		return ErrInvalidItemType
	}

	if p.Mode != PracticeModeSpaced && p.Mode != PracticeModeLegacy {
		return ErrInvalidPracticeMode
	}

	if len(p.Items) == 0 {
		return ErrEmptyProgressItems
	}

	if p.CurrentIndex < 0 || p.CurrentIndex > len(p.Items) {
		return ErrInvalidProgressIndex
	}

	if p.CorrectCount < 0 || p.IncorrectCount < 0 {
		return ErrInvalidProgressCounter
	}

	return nil
}

// IsStale reports whether the record is older than validity at now.
func (p *SessionProgress) IsStale(now time.Time, validity time.Duration) bool {
	return now.Sub(p.SavedAt) > validity
}

// IsComplete reports whether every frozen item has been answered.
func (p *SessionProgress) IsComplete() bool {
	return p.CurrentIndex >= len(p.Items)
}

// Current returns the item at the current index, or false when complete.
func (p *SessionProgress) Current() (ScheduledItem, bool) {
	if p.IsComplete() || p.CurrentIndex < 0 {
		return ScheduledItem{}, false
	}
	return p.Items[p.CurrentIndex], true
}

// Advance returns a copy of p with the answer counted and the index moved forward
// by one. The frozen item list is shared with p and must not be modified.
func (p SessionProgress) Advance(correct bool, now time.Time) SessionProgress {
	if correct {
		p.CorrectCount++
	} else {
		p.IncorrectCount++
	}

	if p.CurrentIndex < len(p.Items) {
		p.CurrentIndex++
	}

	p.SavedAt = now.UTC()
	return p
}

// SyncTo returns a copy of p positioned at the first occurrence of itemID at or
// after the current index. Counters are left untouched. It reports false when
// the item does not occur in the remaining part of the frozen list.
func (p SessionProgress) SyncTo(itemID int64) (SessionProgress, bool) {
	for i := max(p.CurrentIndex, 0); i < len(p.Items); i++ {
		if p.Items[i].ID == itemID {
			p.CurrentIndex = i
			return p, true
		}
	}
	return p, false
}
