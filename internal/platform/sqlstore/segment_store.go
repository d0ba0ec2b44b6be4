package sqlstore

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
)

// SegmentStore implements store.SegmentStore over the text_segments table.
// Segment ids are the item ids that memory state is keyed by, so replacing a
// text keeps the id of every position that still exists.
type SegmentStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ store.SegmentStore = (*SegmentStore)(nil)

// NewSegmentStore creates a SegmentStore.
func NewSegmentStore(db *sqlx.DB, logger *slog.Logger) *SegmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SegmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "segment_store")),
	}
}

// GetSegments implements store.SegmentStore.
func (s *SegmentStore) GetSegments(
	ctx context.Context,
	textID int64,
	itemType domain.ItemType,
) ([]domain.Segment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT id, text_id, item_type, content, order_index FROM text_segments
		WHERE text_id = ? AND item_type = ? ORDER BY order_index`)

	segments := []domain.Segment{}
	if err := s.db.SelectContext(ctx, &segments, query, textID, string(itemType)); err != nil {
		log.Error("failed to get segments",
			slog.Int64("text_id", textID),
			slog.Any("error", err))
		return nil, store.NewStoreError("segment", "get", "query failed", MapError(err))
	}
	return segments, nil
}

// ReplaceSegments implements store.SegmentStore.
func (s *SegmentStore) ReplaceSegments(
	ctx context.Context,
	textID int64,
	itemType domain.ItemType,
	contents []string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		upsert := tx.Rebind(`INSERT INTO text_segments (text_id, item_type, content, order_index)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (text_id, item_type, order_index) DO UPDATE SET content = excluded.content`)
		for i, content := range contents {
			if _, err := tx.ExecContext(ctx, upsert, textID, string(itemType), content, i); err != nil {
				return MapError(err)
			}
		}

		trim := tx.Rebind(`DELETE FROM text_segments WHERE text_id = ? AND item_type = ? AND order_index >= ?`)
		if _, err := tx.ExecContext(ctx, trim, textID, string(itemType), len(contents)); err != nil {
			return MapError(err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace segments",
			slog.Int64("text_id", textID),
			slog.String("item_type", string(itemType)),
			slog.Any("error", err))
		return store.NewStoreError("segment", "replace", "transaction failed", err)
	}

	log.Info("segments replaced",
		slog.Int64("text_id", textID),
		slog.String("item_type", string(itemType)),
		slog.Int("count", len(contents)))
	return nil
}
