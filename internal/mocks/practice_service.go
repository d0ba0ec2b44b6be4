package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/service/practice"
)

// MockPracticeService implements practice.PracticeService for testing.
// Unset functions return zero values.
type MockPracticeService struct {
	GetScheduledWordsFn func(
		ctx context.Context,
		learnerID uuid.UUID,
		textID int64,
		itemType domain.ItemType,
		limit int,
	) (*practice.Composition, error)
	UpdateWordMasteryFn func(ctx context.Context, learnerID uuid.UUID, req practice.UpdateRequest) (*domain.WordMastery, error)
	GetWordMasteriesFn  func(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.WordMastery, error)
	StartSessionFn      func(ctx context.Context, learnerID uuid.UUID, req practice.StartRequest) (practice.Session, error)
	AnswerInSessionFn   func(ctx context.Context, learnerID uuid.UUID, req practice.AnswerRequest) (*practice.AnswerResult, error)
	ComposeLegacyFn     func(ctx context.Context, learnerID uuid.UUID, textID int64, words []string) ([]string, error)
	AnswerLegacyFn      func(
		ctx context.Context,
		learnerID uuid.UUID,
		textID int64,
		word string,
		itemType domain.ItemType,
		correct bool,
	) error
}

var _ practice.PracticeService = (*MockPracticeService)(nil)

// GetScheduledWords implements practice.PracticeService.
func (m *MockPracticeService) GetScheduledWords(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
	limit int,
) (*practice.Composition, error) {
	if m.GetScheduledWordsFn != nil {
		return m.GetScheduledWordsFn(ctx, learnerID, textID, itemType, limit)
	}
	return &practice.Composition{Items: []domain.ScheduledItem{}}, nil
}

// UpdateWordMastery implements practice.PracticeService.
func (m *MockPracticeService) UpdateWordMastery(
	ctx context.Context,
	learnerID uuid.UUID,
	req practice.UpdateRequest,
) (*domain.WordMastery, error) {
	if m.UpdateWordMasteryFn != nil {
		return m.UpdateWordMasteryFn(ctx, learnerID, req)
	}
	return nil, nil
}

// GetWordMasteries implements practice.PracticeService.
func (m *MockPracticeService) GetWordMasteries(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.WordMastery, error) {
	if m.GetWordMasteriesFn != nil {
		return m.GetWordMasteriesFn(ctx, learnerID, itemType)
	}
	return []domain.WordMastery{}, nil
}

// StartSession implements practice.PracticeService.
func (m *MockPracticeService) StartSession(
	ctx context.Context,
	learnerID uuid.UUID,
	req practice.StartRequest,
) (practice.Session, error) {
	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx, learnerID, req)
	}
	return nil, nil
}

// AnswerInSession implements practice.PracticeService.
func (m *MockPracticeService) AnswerInSession(
	ctx context.Context,
	learnerID uuid.UUID,
	req practice.AnswerRequest,
) (*practice.AnswerResult, error) {
	if m.AnswerInSessionFn != nil {
		return m.AnswerInSessionFn(ctx, learnerID, req)
	}
	return &practice.AnswerResult{}, nil
}

// ComposeLegacy implements practice.PracticeService.
func (m *MockPracticeService) ComposeLegacy(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	words []string,
) ([]string, error) {
	if m.ComposeLegacyFn != nil {
		return m.ComposeLegacyFn(ctx, learnerID, textID, words)
	}
	return words, nil
}

// AnswerLegacy implements practice.PracticeService.
func (m *MockPracticeService) AnswerLegacy(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	word string,
	itemType domain.ItemType,
	correct bool,
) error {
	if m.AnswerLegacyFn != nil {
		return m.AnswerLegacyFn(ctx, learnerID, textID, word, itemType, correct)
	}
	return nil
}
