package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for MistakeEntry
var (
	ErrEmptyMistakeLearnerID = errors.New("mistake learner ID cannot be empty")
	ErrEmptyMistakeText      = errors.New("mistake text cannot be empty")
)

// MistakeEntry records that a learner has answered a piece of text incorrectly at
// least once. Entries are keyed by (LearnerID, Text) where Text is normalized, so
// the same word missed in different texts accumulates into one entry.
type MistakeEntry struct {
	LearnerID       uuid.UUID `json:"learner_id"`
	Text            string    `json:"text"`
	ItemType        ItemType  `json:"item_type"`
	ErrorCount      int       `json:"error_count"`
	TextIDs         []int64   `json:"text_ids"`
	CreatedAt       time.Time `json:"created_at"`
	LastPracticedAt time.Time `json:"last_practiced_at"`
}

// NewMistakeEntry creates the ledger entry for a first wrong answer.
func NewMistakeEntry(
	learnerID uuid.UUID,
	text string,
	itemType ItemType,
	textID int64,
	now time.Time,
) (*MistakeEntry, error) {
	e := &MistakeEntry{
		LearnerID:       learnerID,
		Text:            NormalizeText(text),
		ItemType:        itemType,
		ErrorCount:      1,
		CreatedAt:       now.UTC(),
		LastPracticedAt: now.UTC(),
	}
	e.AddTextID(textID)

	if err := e.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}

// Validate checks if the MistakeEntry has valid data.
func (e *MistakeEntry) Validate() error {
	if e.LearnerID == uuid.Nil {
		return ErrEmptyMistakeLearnerID
	}

	if e.Text == "" {
		return ErrEmptyMistakeText
	}

	return nil
}

// AddTextID adds textID to the set of owning texts. It returns false when the id
// was already present or is not a valid id.
func (e *MistakeEntry) AddTextID(textID int64) bool {
	if textID <= 0 {
		return false
	}

	for _, id := range e.TextIDs {
		if id == textID {
			return false
		}
	}

	e.TextIDs = append(e.TextIDs, textID)
	return true
}

// RecordAgain registers another wrong answer for the entry.
func (e *MistakeEntry) RecordAgain(textID int64, now time.Time) {
	e.ErrorCount++
	e.AddTextID(textID)
	e.LastPracticedAt = now.UTC()
}
