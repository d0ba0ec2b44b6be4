package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
)

type progressRow struct {
	LearnerID      uuid.UUID           `db:"learner_id"`
	TextID         int64               `db:"text_id"`
	ItemType       domain.ItemType     `db:"item_type"`
	Mode           domain.PracticeMode `db:"mode"`
	Items          string              `db:"items"`
	CurrentIndex   int                 `db:"current_index"`
	CorrectCount   int                 `db:"correct_count"`
	IncorrectCount int                 `db:"incorrect_count"`
	Limit          int                 `db:"session_limit"`
	StartedAt      time.Time           `db:"started_at"`
	SavedAt        time.Time           `db:"saved_at"`
}

const progressColumns = `learner_id, text_id, item_type, mode, items, current_index,
	correct_count, incorrect_count, session_limit, started_at, saved_at`

// ProgressStore implements store.ProgressStore.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// NewProgressStore creates a ProgressStore.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Get implements store.ProgressStore.
func (s *ProgressStore) Get(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) (*domain.SessionProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT ` + progressColumns + ` FROM practice_progress
		WHERE learner_id = ? AND text_id = ? AND item_type = ?`)

	var row progressRow
	if err := s.db.GetContext(ctx, &row, query, learnerID.String(), textID, string(itemType)); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress",
			slog.Int64("text_id", textID),
			slog.Any("error", err))
		return nil, store.NewStoreError("progress", "get", "query failed", mapped)
	}

	var items []domain.ScheduledItem
	if err := json.Unmarshal([]byte(row.Items), &items); err != nil {
		return nil, store.NewStoreError("progress", "get", "decode failed", err)
	}

	return &domain.SessionProgress{
		LearnerID:      row.LearnerID,
		TextID:         row.TextID,
		ItemType:       row.ItemType,
		Mode:           row.Mode,
		Items:          items,
		CurrentIndex:   row.CurrentIndex,
		CorrectCount:   row.CorrectCount,
		IncorrectCount: row.IncorrectCount,
		Limit:          row.Limit,
		StartedAt:      row.StartedAt.UTC(),
		SavedAt:        row.SavedAt.UTC(),
	}, nil
}

// Upsert implements store.ProgressStore.
func (s *ProgressStore) Upsert(ctx context.Context, progress *domain.SessionProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if progress == nil {
		return fmt.Errorf("%w: nil progress", store.ErrInvalidEntity)
	}
	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	items, err := json.Marshal(progress.Items)
	if err != nil {
		return fmt.Errorf("failed to encode progress items: %w", err)
	}

	query := s.db.Rebind(`INSERT INTO practice_progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, text_id, item_type) DO UPDATE SET
			mode = excluded.mode,
			items = excluded.items,
			current_index = excluded.current_index,
			correct_count = excluded.correct_count,
			incorrect_count = excluded.incorrect_count,
			session_limit = excluded.session_limit,
			started_at = excluded.started_at,
			saved_at = excluded.saved_at`)

	_, err = s.db.ExecContext(ctx, query,
		progress.LearnerID.String(),
		progress.TextID,
		string(progress.ItemType),
		string(progress.Mode),
		string(items),
		progress.CurrentIndex,
		progress.CorrectCount,
		progress.IncorrectCount,
		progress.Limit,
		progress.StartedAt.UTC(),
		progress.SavedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to upsert progress",
			slog.Int64("text_id", progress.TextID),
			slog.Any("error", err))
		return store.NewStoreError("progress", "upsert", "exec failed", MapError(err))
	}
	return nil
}

// Delete implements store.ProgressStore.
func (s *ProgressStore) Delete(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM practice_progress WHERE learner_id = ? AND text_id = ? AND item_type = ?`)
	result, err := s.db.ExecContext(ctx, query, learnerID.String(), textID, string(itemType))
	if err != nil {
		log.Error("failed to delete progress", slog.Any("error", err))
		return store.NewStoreError("progress", "delete", "exec failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrProgressNotFound)
}

// DeleteSavedBefore implements store.ProgressStore.
func (s *ProgressStore) DeleteSavedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM practice_progress WHERE saved_at < ?`)
	result, err := s.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		log.Error("failed to delete stale progress", slog.Any("error", err))
		return 0, store.NewStoreError("progress", "delete_stale", "exec failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
