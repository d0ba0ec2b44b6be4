package api

import (
	"time"

	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/service/practice"
)

// StartSessionRequest defines the payload of POST /texts/{textID}/sessions.
// The item type comes from the type query parameter.
type StartSessionRequest struct {
	Mode domain.PracticeMode `json:"mode" validate:"omitempty,oneof=spaced legacy"`
	// Limit caps the session size; absent selects the configured default and
	// 0 means unbounded.
	Limit   *int `json:"limit,omitempty" validate:"omitempty,gte=0"`
	Restart bool `json:"restart"`
}

// SessionAnswerRequest defines the payload of POST /texts/{textID}/sessions/answer.
type SessionAnswerRequest struct {
	// ItemID, when set, names the answered item: the current one or one
	// further along the session.
	ItemID  int64 `json:"item_id" validate:"gte=0"`
	Correct *bool `json:"correct" validate:"required"`
	// Mode and Limit repeat the values sent when the session started.
	Mode  domain.PracticeMode `json:"mode"            validate:"omitempty,oneof=spaced legacy"`
	Limit *int                `json:"limit,omitempty" validate:"omitempty,gte=0"`
}

// MasteryAnswerRequest defines the payload of POST /masteries/{itemID}/answer.
type MasteryAnswerRequest struct {
	Content  string          `json:"content"   validate:"required"`
	ItemType domain.ItemType `json:"item_type" validate:"required,item_type"`
	Correct  *bool           `json:"correct"   validate:"required"`
	TextID   int64           `json:"text_id"   validate:"gte=0"`
}

// LegacyComposeRequest defines the payload of POST /texts/{textID}/legacy.
type LegacyComposeRequest struct {
	Words []string `json:"words" validate:"required"`
}

// LegacyAnswerRequest defines the payload of POST /texts/{textID}/legacy/answer.
type LegacyAnswerRequest struct {
	Word     string          `json:"word"      validate:"required"`
	ItemType domain.ItemType `json:"item_type" validate:"omitempty,item_type"`
	Correct  *bool           `json:"correct"   validate:"required"`
}

// SaveProgressRequest defines the payload of PUT /texts/{textID}/progress.
type SaveProgressRequest struct {
	Mode           domain.PracticeMode    `json:"mode"            validate:"omitempty,oneof=spaced legacy"`
	Items          []domain.ScheduledItem `json:"items"           validate:"required,min=1"`
	CurrentIndex   int                    `json:"current_index"   validate:"gte=0"`
	CorrectCount   int                    `json:"correct_count"   validate:"gte=0"`
	IncorrectCount int                    `json:"incorrect_count" validate:"gte=0"`
	Limit          int                    `json:"limit"           validate:"gte=0"`
	StartedAt      time.Time              `json:"started_at"`
}

// SessionResponse describes a started or resumed session.
type SessionResponse struct {
	Mode     domain.PracticeMode    `json:"mode"`
	Resumed  bool                   `json:"resumed"`
	Progress domain.SessionProgress `json:"progress"`
	Current  *domain.ScheduledItem  `json:"current,omitempty"`
	// NewCount and ReviewCount are set for freshly composed spaced sessions.
	NewCount    *int `json:"new_count,omitempty"`
	ReviewCount *int `json:"review_count,omitempty"`
}

// LegacyComposeResponse lists the words to practice in legacy mode.
type LegacyComposeResponse struct {
	Words []string `json:"words"`
}

// MasteriesResponse lists memory states.
type MasteriesResponse struct {
	Masteries []domain.WordMastery `json:"masteries"`
}

// MistakesResponse lists ledger entries.
type MistakesResponse struct {
	Mistakes []domain.MistakeEntry `json:"mistakes"`
}

// HistoryResponse lists completed sessions, newest first.
type HistoryResponse struct {
	Histories []domain.PracticeHistory `json:"histories"`
}

// sessionToResponse converts a practice session into its response form.
func sessionToResponse(session practice.Session) SessionResponse {
	state := session.State()
	resp := SessionResponse{
		Mode:     session.Mode(),
		Resumed:  session.Resumed(),
		Progress: state,
	}
	if current, ok := state.Current(); ok {
		resp.Current = &current
	}
	if sr, ok := session.(*practice.SpacedRepetitionSession); ok && !sr.WasResumed {
		resp.NewCount = &sr.NewCount
		resp.ReviewCount = &sr.ReviewCount
	}
	return resp
}
