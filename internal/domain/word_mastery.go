package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Bounds of the stored memory state.
const (
	MinMasteryLevel   = 0
	MaxMasteryLevel   = 5
	MinEaseFactor     = 1.3
	DefaultEaseFactor = 2.5

	// MaxIntervalDays caps the review interval at roughly one hundred years.
	MaxIntervalDays = 36500
)

// Common validation errors for WordMastery
var (
	ErrEmptyMasteryLearnerID = errors.New("word mastery learner ID cannot be empty")
	ErrInvalidMasteryItemID  = errors.New("word mastery item ID must be positive")
)

// WordMastery is a learner's spaced repetition memory state for one practice item.
// Records are keyed by (LearnerID, ItemID); two items with identical content but
// distinct ids are tracked independently.
type WordMastery struct {
	LearnerID    uuid.UUID  `json:"learner_id" db:"learner_id"`
	ItemID       int64      `json:"item_id" db:"item_id"`
	Content      string     `json:"content" db:"content"`
	ItemType     ItemType   `json:"item_type" db:"item_type"`
	MasteryLevel int        `json:"mastery_level" db:"mastery_level"` // 0 = new or forgotten, 5 = mastered
	EaseFactor   float64    `json:"ease_factor" db:"ease_factor"`
	IntervalDays int        `json:"interval_days" db:"interval_days"`
	NextReviewAt time.Time  `json:"next_review_at" db:"next_review_at"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty" db:"last_review_at"`
	ReviewCount  int        `json:"review_count" db:"review_count"`
}

// NewWordMastery returns the zero-state for an item that has never been reviewed:
// level 0, ease 2.5, interval 0, due immediately.
func NewWordMastery(
	learnerID uuid.UUID,
	itemID int64,
	content string,
	itemType ItemType,
	now time.Time,
) (*WordMastery, error) {
	m := &WordMastery{
		LearnerID:    learnerID,
		ItemID:       itemID,
		Content:      content,
		ItemType:     itemType,
		MasteryLevel: MinMasteryLevel,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		NextReviewAt: now.UTC(),
		ReviewCount:  0,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks the identity fields of the record.
// Numeric fields are not validated here; use Clamp to bring them into range.
func (m *WordMastery) Validate() error {
	if m.LearnerID == uuid.Nil {
		return ErrEmptyMasteryLearnerID
	}

	if m.ItemID <= 0 {
		return ErrInvalidMasteryItemID
	}

	if !m.ItemType.Valid() {
		return ErrInvalidItemType
	}

	return nil
}

// Clamp returns a copy of m with every numeric field forced into its valid range.
// Stored rows are passed through Clamp on read instead of being rejected.
func (m WordMastery) Clamp() WordMastery {
	if m.MasteryLevel < MinMasteryLevel {
		m.MasteryLevel = MinMasteryLevel
	}
	if m.MasteryLevel > MaxMasteryLevel {
		m.MasteryLevel = MaxMasteryLevel
	}

	if math.IsNaN(m.EaseFactor) || math.IsInf(m.EaseFactor, 0) {
		m.EaseFactor = DefaultEaseFactor
	}
	if m.EaseFactor < MinEaseFactor {
		m.EaseFactor = MinEaseFactor
	}

	if m.IntervalDays < 0 {
		m.IntervalDays = 0
	}
	if m.IntervalDays > MaxIntervalDays {
		m.IntervalDays = MaxIntervalDays
	}
	if m.ReviewCount < 0 {
		m.ReviewCount = 0
	}

	return m
}

// IsDue reports whether the item should be reviewed at asOf.
func (m *WordMastery) IsDue(asOf time.Time) bool {
	return !m.NextReviewAt.After(asOf)
}

// IsMastered reports whether the item reached the top mastery level.
func (m *WordMastery) IsMastered() bool {
	return m.MasteryLevel >= MaxMasteryLevel
}
