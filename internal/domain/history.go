package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RecentHistoryLimit is the number of histories included in PracticeStatistics.
const RecentHistoryLimit = 10

// Common validation errors for PracticeHistory
var (
	ErrEmptyHistoryLearnerID = errors.New("history learner ID cannot be empty")
	ErrInvalidHistoryCounts  = errors.New("history counts cannot be negative")
	ErrInvalidHistoryTextID  = errors.New("history text ID must be positive")
)

// PracticeHistory is the summary of one completed practice session.
type PracticeHistory struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	LearnerID       uuid.UUID    `json:"learner_id" db:"learner_id"`
	TextID          int64        `json:"text_id" db:"text_id"`
	ItemType        ItemType     `json:"item_type" db:"item_type"`
	Mode            PracticeMode `json:"mode" db:"mode"`
	CorrectCount    int          `json:"correct_count" db:"correct_count"`
	IncorrectCount  int          `json:"incorrect_count" db:"incorrect_count"`
	TotalCount      int          `json:"total_count" db:"total_count"`
	Accuracy        float64      `json:"accuracy" db:"accuracy"`
	WPM             float64      `json:"wpm" db:"wpm"`
	DurationSeconds int          `json:"duration_seconds" db:"duration_seconds"`
	CompletedAt     time.Time    `json:"completed_at" db:"completed_at"`
}

// NewPracticeHistory builds a history record, deriving total, accuracy and
// words-per-minute from the counters and duration.
func NewPracticeHistory(
	learnerID uuid.UUID,
	textID int64,
	itemType ItemType,
	mode PracticeMode,
	correct, incorrect int,
	duration time.Duration,
	completedAt time.Time,
) (*PracticeHistory, error) {
	h := &PracticeHistory{
		ID:              uuid.New(),
		LearnerID:       learnerID,
		TextID:          textID,
		ItemType:        itemType,
		Mode:            mode,
		CorrectCount:    correct,
		IncorrectCount:  incorrect,
		TotalCount:      correct + incorrect,
		DurationSeconds: int(duration / time.Second),
		CompletedAt:     completedAt.UTC(),
	}
	h.Accuracy = Accuracy(h.CorrectCount, h.TotalCount)
	h.WPM = WordsPerMinute(h.TotalCount, h.DurationSeconds)

	if err := h.Validate(); err != nil {
		return nil, err
	}

	return h, nil
}

// Validate checks if the PracticeHistory has valid data.
func (h *PracticeHistory) Validate() error {
	if h.LearnerID == uuid.Nil {
		return ErrEmptyHistoryLearnerID
	}

	if h.TextID <= 0 {
		return ErrInvalidHistoryTextID
	}

	if !h.ItemType.Valid() {
		return ErrInvalidItemType
	}

	if h.CorrectCount < 0 || h.IncorrectCount < 0 || h.DurationSeconds < 0 {
		return ErrInvalidHistoryCounts
	}

	return nil
}

// Accuracy returns correct/total as a percentage, or 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// WordsPerMinute returns total/seconds scaled to a minute, or 0 when seconds is 0.
func WordsPerMinute(total, seconds int) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(total) / float64(seconds) * 60
}

// PracticeStatistics aggregates a learner's practice history.
type PracticeStatistics struct {
	TotalPractices       int               `json:"total_practices"`
	TotalCorrect         int               `json:"total_correct"`
	TotalIncorrect       int               `json:"total_incorrect"`
	TotalWords           int               `json:"total_words"`
	AverageAccuracy      float64           `json:"average_accuracy"`
	BestAccuracy         float64           `json:"best_accuracy"`
	AverageWPM           float64           `json:"average_wpm"`
	BestWPM              float64           `json:"best_wpm"`
	TotalDurationSeconds int               `json:"total_duration_seconds"`
	RecentHistories      []PracticeHistory `json:"recent_histories"`
}
