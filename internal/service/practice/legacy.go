package practice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/phrazzld/mastery-api/internal/store"
)

// legacyFilter returns the indexes of words that are tracked or not mastered.
// A blank word can never be answered and is rejected as invalid input.
func (s *practiceServiceImpl) legacyFilter(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	words []string,
) ([]int, map[string]bool, error) {
	normalized := make([]string, len(words))
	for i, w := range words {
		normalized[i] = domain.NormalizeText(w)
		if normalized[i] == "" {
			return nil, nil, fmt.Errorf("%w: word at position %d is blank", service.ErrInvalidInput, i)
		}
	}

	mastered, err := s.mastered.ListMastered(ctx, learnerID, textID)
	if err != nil {
		return nil, nil, service.NewServiceError("compose_legacy", "failed to load mastered flags", err)
	}
	tracked, err := s.ledger.TrackedAmong(ctx, learnerID, normalized)
	if err != nil {
		return nil, nil, err
	}

	keep := make([]int, 0, len(words))
	for i, w := range normalized {
		if tracked[w] || !mastered[w] {
			keep = append(keep, i)
		}
	}
	return keep, tracked, nil
}

func (s *practiceServiceImpl) ComposeLegacy(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	words []string,
) ([]string, error) {
	if textID <= 0 {
		return nil, fmt.Errorf("%w: text id must be positive", service.ErrInvalidInput)
	}

	keep, _, err := s.legacyFilter(ctx, learnerID, textID, words)
	if err != nil {
		return nil, err
	}

	result := make([]string, len(keep))
	for i, idx := range keep {
		result[i] = words[idx]
	}
	return result, nil
}

// composeLegacyItems builds a legacy session list from the segments of a text.
func (s *practiceServiceImpl) composeLegacyItems(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
	limit int,
) ([]domain.ScheduledItem, error) {
	segments, err := s.segments.GetSegments(ctx, textID, itemType)
	if err != nil {
		return nil, service.NewServiceError("compose_legacy", "failed to load segments", err)
	}
	if len(segments) == 0 {
		return nil, service.ErrNothingToPractice
	}

	words := make([]string, len(segments))
	for i, seg := range segments {
		words[i] = seg.Content
	}
	keep, tracked, err := s.legacyFilter(ctx, learnerID, textID, words)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(keep) > limit {
		keep = keep[:limit]
	}

	items := make([]domain.ScheduledItem, len(keep))
	for i, idx := range keep {
		seg := segments[idx]
		items[i] = domain.ScheduledItem{
			ID:      seg.ID,
			Content: seg.Content,
			Type:    seg.Type,
			IsNew:   !tracked[domain.NormalizeText(seg.Content)],
		}
	}
	return items, nil
}

func (s *practiceServiceImpl) AnswerLegacy(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	word string,
	itemType domain.ItemType,
	correct bool,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateKey(textID, itemType); err != nil {
		return err
	}
	normalized := domain.NormalizeText(word)
	if normalized == "" {
		return fmt.Errorf("%w: word cannot be empty", service.ErrInvalidInput)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		mastered := s.mastered.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		if correct {
			if err := mastered.SetMastered(ctx, learnerID, textID, normalized); err != nil {
				return err
			}
			return ledger.ClearIfMastered(ctx, learnerID, normalized)
		}

		if err := mastered.ClearMastered(ctx, learnerID, textID, normalized); err != nil {
			return err
		}
		_, err := ledger.RecordMistake(ctx, learnerID, normalized, textID, itemType)
		return err
	})
	if err != nil {
		log.Error("failed to apply legacy answer",
			slog.String("learner_id", learnerID.String()),
			slog.Int64("text_id", textID),
			slog.Any("error", err))
		return service.NewServiceError("answer_legacy", "failed to apply answer", err)
	}

	log.Debug("legacy answer applied",
		slog.Int64("text_id", textID),
		slog.Bool("correct", correct))
	return nil
}
