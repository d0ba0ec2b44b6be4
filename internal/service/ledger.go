package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
)

// LedgerService maintains the mistake ledger: the durable log of items a
// learner has ever answered incorrectly. Entries are keyed by normalized text
// and are independent of any session.
type LedgerService interface {
	// RecordMistake creates the entry for text or increments its error count,
	// adds textID to the set of owning texts and bumps last_practiced_at.
	RecordMistake(
		ctx context.Context,
		learnerID uuid.UUID,
		text string,
		textID int64,
		itemType domain.ItemType,
	) (*domain.MistakeEntry, error)

	// ClearIfMastered removes the entry for text. Clearing an untracked text is
	// not an error.
	ClearIfMastered(ctx context.Context, learnerID uuid.UUID, text string) error

	// IsTracked reports whether text has a ledger entry.
	IsTracked(ctx context.Context, learnerID uuid.UUID, text string) (bool, error)

	// TrackedAmong reports which of texts have a ledger entry. Keys of the
	// result are normalized texts.
	TrackedAmong(ctx context.Context, learnerID uuid.UUID, texts []string) (map[string]bool, error)

	// ListTracked returns the learner's entries, most recently practiced first.
	// An empty itemType lists every type.
	ListTracked(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.MistakeEntry, error)

	// Remove deletes the entry for text.
	// Returns ErrMistakeNotFound if the text is not tracked.
	Remove(ctx context.Context, learnerID uuid.UUID, text string) error

	// WithTx returns a ledger whose writes join the given transaction.
	WithTx(tx *sqlx.Tx) LedgerService
}

type ledgerServiceImpl struct {
	mistakes store.MistakeStore
	logger   *slog.Logger
	now      func() time.Time
}

var _ LedgerService = (*ledgerServiceImpl)(nil)

// NewLedgerService creates a LedgerService.
func NewLedgerService(mistakes store.MistakeStore, logger *slog.Logger) LedgerService {
	if mistakes == nil {
		panic("mistakes cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ledgerServiceImpl{
		mistakes: mistakes,
		logger:   logger.With(slog.String("component", "ledger_service")),
		now:      time.Now,
	}
}

func (s *ledgerServiceImpl) WithTx(tx *sqlx.Tx) LedgerService {
	return &ledgerServiceImpl{
		mistakes: s.mistakes.WithTx(tx),
		logger:   s.logger,
		now:      s.now,
	}
}

func (s *ledgerServiceImpl) RecordMistake(
	ctx context.Context,
	learnerID uuid.UUID,
	text string,
	textID int64,
	itemType domain.ItemType,
) (*domain.MistakeEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	normalized := domain.NormalizeText(text)
	if normalized == "" {
		return nil, NewServiceError("record_mistake", "empty text", ErrInvalidInput)
	}
	now := s.now().UTC()

	entry, err := s.mistakes.Get(ctx, learnerID, normalized)
	switch {
	case errors.Is(err, store.ErrMistakeNotFound):
		entry, err = domain.NewMistakeEntry(learnerID, normalized, itemType, textID, now)
		if err != nil {
			return nil, NewServiceError("record_mistake", "invalid entry", errors.Join(ErrInvalidInput, err))
		}
	case err != nil:
		return nil, NewServiceError("record_mistake", "failed to load entry", err)
	default:
		entry.RecordAgain(textID, now)
	}

	if err := s.mistakes.Upsert(ctx, entry); err != nil {
		return nil, NewServiceError("record_mistake", "failed to save entry", err)
	}

	log.Debug("mistake recorded",
		slog.String("learner_id", learnerID.String()),
		slog.Int("error_count", entry.ErrorCount))
	return entry, nil
}

func (s *ledgerServiceImpl) ClearIfMastered(ctx context.Context, learnerID uuid.UUID, text string) error {
	err := s.mistakes.Delete(ctx, learnerID, domain.NormalizeText(text))
	if err == nil || errors.Is(err, store.ErrMistakeNotFound) {
		return nil
	}
	return NewServiceError("clear_mistake", "failed to delete entry", err)
}

func (s *ledgerServiceImpl) IsTracked(ctx context.Context, learnerID uuid.UUID, text string) (bool, error) {
	normalized := domain.NormalizeText(text)
	tracked, err := s.mistakes.Tracked(ctx, learnerID, []string{normalized})
	if err != nil {
		return false, NewServiceError("is_tracked", "failed to query ledger", err)
	}
	return tracked[normalized], nil
}

func (s *ledgerServiceImpl) TrackedAmong(
	ctx context.Context,
	learnerID uuid.UUID,
	texts []string,
) (map[string]bool, error) {
	seen := make(map[string]bool, len(texts))
	normalized := make([]string, 0, len(texts))
	for _, text := range texts {
		n := domain.NormalizeText(text)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}

	tracked, err := s.mistakes.Tracked(ctx, learnerID, normalized)
	if err != nil {
		return nil, NewServiceError("tracked_among", "failed to query ledger", err)
	}
	return tracked, nil
}

func (s *ledgerServiceImpl) ListTracked(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.MistakeEntry, error) {
	if itemType != "" && !itemType.Valid() {
		return nil, NewServiceError("list_mistakes", "unknown item type", ErrInvalidInput)
	}
	entries, err := s.mistakes.List(ctx, learnerID, itemType)
	if err != nil {
		return nil, NewServiceError("list_mistakes", "failed to list entries", err)
	}
	return entries, nil
}

func (s *ledgerServiceImpl) Remove(ctx context.Context, learnerID uuid.UUID, text string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	normalized := domain.NormalizeText(text)
	if normalized == "" {
		return NewServiceError("remove_mistake", "empty text", ErrInvalidInput)
	}
	if err := s.mistakes.Delete(ctx, learnerID, normalized); err != nil {
		return NewServiceError("remove_mistake", "failed to delete entry", err)
	}

	log.Info("mistake removed", slog.String("learner_id", learnerID.String()))
	return nil
}
