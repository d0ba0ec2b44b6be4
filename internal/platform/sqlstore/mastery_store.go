package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
)

const masteryColumns = `learner_id, item_id, content, item_type, mastery_level, ease_factor,
	interval_days, next_review_at, last_review_at, review_count`

// WordMasteryStore implements store.WordMasteryStore.
type WordMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.WordMasteryStore = (*WordMasteryStore)(nil)

// NewWordMasteryStore creates a WordMasteryStore. A nil logger falls back to
// slog.Default().
func NewWordMasteryStore(db store.DBTX, logger *slog.Logger) *WordMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WordMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_mastery_store")),
	}
}

// WithTx returns a store bound to tx.
func (s *WordMasteryStore) WithTx(tx *sqlx.Tx) store.WordMasteryStore {
	return &WordMasteryStore{db: tx, logger: s.logger}
}

// Get implements store.WordMasteryStore.
func (s *WordMasteryStore) Get(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID int64,
) (*domain.WordMastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT ` + masteryColumns + ` FROM word_mastery
		WHERE learner_id = ? AND item_id = ?`)

	var m domain.WordMastery
	if err := sqlx.GetContext(ctx, s.db, &m, query, learnerID.String(), itemID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrWordMasteryNotFound
		}
		log.Error("failed to get word mastery",
			slog.String("learner_id", learnerID.String()),
			slog.Int64("item_id", itemID),
			slog.Any("error", err))
		return nil, store.NewStoreError("word_mastery", "get", "query failed", mapped)
	}

	clamped := normalizeMastery(m)
	return &clamped, nil
}

// Upsert implements store.WordMasteryStore.
func (s *WordMasteryStore) Upsert(ctx context.Context, mastery *domain.WordMastery) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if mastery == nil {
		return fmt.Errorf("%w: nil word mastery", store.ErrInvalidEntity)
	}
	if err := mastery.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var lastReview interface{}
	if mastery.LastReviewAt != nil {
		lastReview = mastery.LastReviewAt.UTC()
	}

	query := s.db.Rebind(`INSERT INTO word_mastery (` + masteryColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, item_id) DO UPDATE SET
			content = excluded.content,
			item_type = excluded.item_type,
			mastery_level = excluded.mastery_level,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			next_review_at = excluded.next_review_at,
			last_review_at = excluded.last_review_at,
			review_count = excluded.review_count,
			updated_at = excluded.updated_at`)

	_, err := s.db.ExecContext(ctx, query,
		mastery.LearnerID.String(),
		mastery.ItemID,
		mastery.Content,
		string(mastery.ItemType),
		mastery.MasteryLevel,
		mastery.EaseFactor,
		mastery.IntervalDays,
		mastery.NextReviewAt.UTC(),
		lastReview,
		mastery.ReviewCount,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to upsert word mastery",
			slog.String("learner_id", mastery.LearnerID.String()),
			slog.Int64("item_id", mastery.ItemID),
			slog.Any("error", err))
		return store.NewStoreError("word_mastery", "upsert", "exec failed", MapError(err))
	}

	log.Debug("word mastery saved",
		slog.Int64("item_id", mastery.ItemID),
		slog.Int("mastery_level", mastery.MasteryLevel))
	return nil
}

// ListDue implements store.WordMasteryStore.
func (s *WordMasteryStore) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
	asOf time.Time,
) ([]domain.WordMastery, error) {
	query := s.db.Rebind(`SELECT ` + masteryColumns + ` FROM word_mastery
		WHERE learner_id = ? AND item_type = ? AND next_review_at <= ?
		ORDER BY next_review_at, mastery_level, item_id`)

	return s.selectMasteries(ctx, "list_due", query, learnerID.String(), string(itemType), asOf.UTC())
}

// ListAll implements store.WordMasteryStore.
func (s *WordMasteryStore) ListAll(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.WordMastery, error) {
	if itemType == "" {
		query := s.db.Rebind(`SELECT ` + masteryColumns + ` FROM word_mastery
			WHERE learner_id = ? ORDER BY item_id`)
		return s.selectMasteries(ctx, "list_all", query, learnerID.String())
	}

	query := s.db.Rebind(`SELECT ` + masteryColumns + ` FROM word_mastery
		WHERE learner_id = ? AND item_type = ? ORDER BY item_id`)
	return s.selectMasteries(ctx, "list_all", query, learnerID.String(), string(itemType))
}

// ListForItems implements store.WordMasteryStore.
func (s *WordMasteryStore) ListForItems(
	ctx context.Context,
	learnerID uuid.UUID,
	itemIDs []int64,
) ([]domain.WordMastery, error) {
	if len(itemIDs) == 0 {
		return []domain.WordMastery{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+masteryColumns+` FROM word_mastery
		WHERE learner_id = ? AND item_id IN (?) ORDER BY item_id`, learnerID.String(), itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build item query: %w", err)
	}

	return s.selectMasteries(ctx, "list_for_items", s.db.Rebind(query), args...)
}

func (s *WordMasteryStore) selectMasteries(
	ctx context.Context,
	operation string,
	query string,
	args ...interface{},
) ([]domain.WordMastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []domain.WordMastery
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		log.Error("failed to list word masteries",
			slog.String("operation", operation),
			slog.Any("error", err))
		return nil, store.NewStoreError("word_mastery", operation, "query failed", MapError(err))
	}

	result := make([]domain.WordMastery, len(rows))
	for i, m := range rows {
		result[i] = normalizeMastery(m)
	}
	return result, nil
}

// normalizeMastery clamps stored values and converts timestamps to UTC.
func normalizeMastery(m domain.WordMastery) domain.WordMastery {
	m = m.Clamp()
	m.NextReviewAt = m.NextReviewAt.UTC()
	if m.LastReviewAt != nil {
		t := m.LastReviewAt.UTC()
		m.LastReviewAt = &t
	}
	return m
}
