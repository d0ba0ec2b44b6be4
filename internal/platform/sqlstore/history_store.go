package sqlstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
)

const historyColumns = `id, learner_id, text_id, item_type, mode, correct_count, incorrect_count,
	total_count, accuracy, wpm, duration_seconds, completed_at`

// HistoryStore implements store.HistoryStore.
type HistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.HistoryStore = (*HistoryStore)(nil)

// NewHistoryStore creates a HistoryStore.
func NewHistoryStore(db store.DBTX, logger *slog.Logger) *HistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

// Create implements store.HistoryStore.
func (s *HistoryStore) Create(ctx context.Context, history *domain.PracticeHistory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if history == nil {
		return fmt.Errorf("%w: nil history", store.ErrInvalidEntity)
	}
	if err := history.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := s.db.Rebind(`INSERT INTO practice_history (` + historyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		history.ID.String(),
		history.LearnerID.String(),
		history.TextID,
		string(history.ItemType),
		string(history.Mode),
		history.CorrectCount,
		history.IncorrectCount,
		history.TotalCount,
		history.Accuracy,
		history.WPM,
		history.DurationSeconds,
		history.CompletedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to create history", slog.Any("error", err))
		return store.NewStoreError("practice_history", "create", "exec failed", MapError(err))
	}
	return nil
}

// List implements store.HistoryStore.
func (s *HistoryStore) List(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.PracticeHistory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []domain.PracticeHistory{}, nil
	}

	query := s.db.Rebind(`SELECT ` + historyColumns + ` FROM practice_history
		WHERE learner_id = ? ORDER BY completed_at DESC, id LIMIT ?`)

	var rows []domain.PracticeHistory
	if err := s.db.SelectContext(ctx, &rows, query, learnerID.String(), limit); err != nil {
		log.Error("failed to list history", slog.Any("error", err))
		return nil, store.NewStoreError("practice_history", "list", "query failed", MapError(err))
	}

	for i := range rows {
		rows[i].CompletedAt = rows[i].CompletedAt.UTC()
	}
	if rows == nil {
		rows = []domain.PracticeHistory{}
	}
	return rows, nil
}

type aggregateRow struct {
	TotalPractices       int     `db:"total_practices"`
	TotalCorrect         int     `db:"total_correct"`
	TotalIncorrect       int     `db:"total_incorrect"`
	TotalWords           int     `db:"total_words"`
	AverageAccuracy      float64 `db:"average_accuracy"`
	BestAccuracy         float64 `db:"best_accuracy"`
	AverageWPM           float64 `db:"average_wpm"`
	BestWPM              float64 `db:"best_wpm"`
	TotalDurationSeconds int     `db:"total_duration_seconds"`
}

// Aggregate implements store.HistoryStore.
func (s *HistoryStore) Aggregate(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT
			COUNT(*) AS total_practices,
			COALESCE(SUM(correct_count), 0) AS total_correct,
			COALESCE(SUM(incorrect_count), 0) AS total_incorrect,
			COALESCE(SUM(total_count), 0) AS total_words,
			COALESCE(AVG(accuracy), 0) AS average_accuracy,
			COALESCE(MAX(accuracy), 0) AS best_accuracy,
			COALESCE(AVG(wpm), 0) AS average_wpm,
			COALESCE(MAX(wpm), 0) AS best_wpm,
			COALESCE(SUM(duration_seconds), 0) AS total_duration_seconds
		FROM practice_history WHERE learner_id = ?`)

	var row aggregateRow
	if err := s.db.GetContext(ctx, &row, query, learnerID.String()); err != nil {
		log.Error("failed to aggregate history", slog.Any("error", err))
		return nil, store.NewStoreError("practice_history", "aggregate", "query failed", MapError(err))
	}

	return &domain.PracticeStatistics{
		TotalPractices:       row.TotalPractices,
		TotalCorrect:         row.TotalCorrect,
		TotalIncorrect:       row.TotalIncorrect,
		TotalWords:           row.TotalWords,
		AverageAccuracy:      row.AverageAccuracy,
		BestAccuracy:         row.BestAccuracy,
		AverageWPM:           row.AverageWPM,
		BestWPM:              row.BestWPM,
		TotalDurationSeconds: row.TotalDurationSeconds,
		RecentHistories:      []domain.PracticeHistory{},
	}, nil
}
