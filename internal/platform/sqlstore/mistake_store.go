package sqlstore

import (
	"context"
	"encoding/json"
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

// mistakeRow is the storage shape of domain.MistakeEntry; the text id set is
// kept as a JSON array.
type mistakeRow struct {
	LearnerID       uuid.UUID       `db:"learner_id"`
	Text            string          `db:"text"`
	ItemType        domain.ItemType `db:"item_type"`
	ErrorCount      int             `db:"error_count"`
	TextIDs         string          `db:"text_ids"`
	CreatedAt       time.Time       `db:"created_at"`
	LastPracticedAt time.Time       `db:"last_practiced_at"`
}

func (r mistakeRow) toDomain() (domain.MistakeEntry, error) {
	e := domain.MistakeEntry{
		LearnerID:       r.LearnerID,
		Text:            r.Text,
		ItemType:        r.ItemType,
		ErrorCount:      r.ErrorCount,
		TextIDs:         []int64{},
		CreatedAt:       r.CreatedAt.UTC(),
		LastPracticedAt: r.LastPracticedAt.UTC(),
	}
	if r.TextIDs != "" {
		if err := json.Unmarshal([]byte(r.TextIDs), &e.TextIDs); err != nil {
			return domain.MistakeEntry{}, fmt.Errorf("failed to decode text ids of %q: %w", r.Text, err)
		}
	}
	return e, nil
}

const mistakeColumns = `learner_id, text, item_type, error_count, text_ids, created_at, last_practiced_at`

// MistakeStore implements store.MistakeStore.
type MistakeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.MistakeStore = (*MistakeStore)(nil)

// NewMistakeStore creates a MistakeStore.
func NewMistakeStore(db store.DBTX, logger *slog.Logger) *MistakeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MistakeStore{
		db:     db,
		logger: logger.With(slog.String("component", "mistake_store")),
	}
}

// WithTx returns a store bound to tx.
func (s *MistakeStore) WithTx(tx *sqlx.Tx) store.MistakeStore {
	return &MistakeStore{db: tx, logger: s.logger}
}

// Get implements store.MistakeStore.
func (s *MistakeStore) Get(ctx context.Context, learnerID uuid.UUID, text string) (*domain.MistakeEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT ` + mistakeColumns + ` FROM mistakes WHERE learner_id = ? AND text = ?`)

	var row mistakeRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, learnerID.String(), text); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrMistakeNotFound
		}
		log.Error("failed to get mistake", slog.Any("error", err))
		return nil, store.NewStoreError("mistake", "get", "query failed", mapped)
	}

	entry, err := row.toDomain()
	if err != nil {
		return nil, store.NewStoreError("mistake", "get", "decode failed", err)
	}
	return &entry, nil
}

// Upsert implements store.MistakeStore.
func (s *MistakeStore) Upsert(ctx context.Context, entry *domain.MistakeEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if entry == nil {
		return fmt.Errorf("%w: nil mistake entry", store.ErrInvalidEntity)
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	ids := entry.TextIDs
	if ids == nil {
		ids = []int64{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode text ids: %w", err)
	}

	query := s.db.Rebind(`INSERT INTO mistakes (` + mistakeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, text) DO UPDATE SET
			item_type = excluded.item_type,
			error_count = excluded.error_count,
			text_ids = excluded.text_ids,
			last_practiced_at = excluded.last_practiced_at`)

	_, err = s.db.ExecContext(ctx, query,
		entry.LearnerID.String(),
		entry.Text,
		string(entry.ItemType),
		entry.ErrorCount,
		string(encoded),
		entry.CreatedAt.UTC(),
		entry.LastPracticedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to upsert mistake", slog.Any("error", err))
		return store.NewStoreError("mistake", "upsert", "exec failed", MapError(err))
	}
	return nil
}

// Delete implements store.MistakeStore.
func (s *MistakeStore) Delete(ctx context.Context, learnerID uuid.UUID, text string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM mistakes WHERE learner_id = ? AND text = ?`)
	result, err := s.db.ExecContext(ctx, query, learnerID.String(), text)
	if err != nil {
		log.Error("failed to delete mistake", slog.Any("error", err))
		return store.NewStoreError("mistake", "delete", "exec failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrMistakeNotFound)
}

// List implements store.MistakeStore.
func (s *MistakeStore) List(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.MistakeEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + mistakeColumns + ` FROM mistakes WHERE learner_id = ?`
	args := []interface{}{learnerID.String()}
	if itemType != "" {
		query += ` AND item_type = ?`
		args = append(args, string(itemType))
	}
	query += ` ORDER BY last_practiced_at DESC, text`

	var rows []mistakeRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, s.db.Rebind(query), args...); err != nil {
		log.Error("failed to list mistakes", slog.Any("error", err))
		return nil, store.NewStoreError("mistake", "list", "query failed", MapError(err))
	}

	entries := make([]domain.MistakeEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toDomain()
		if err != nil {
			return nil, store.NewStoreError("mistake", "list", "decode failed", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Tracked implements store.MistakeStore.
func (s *MistakeStore) Tracked(ctx context.Context, learnerID uuid.UUID, texts []string) (map[string]bool, error) {
	tracked := make(map[string]bool, len(texts))
	if len(texts) == 0 {
		return tracked, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := sqlx.In(`SELECT text FROM mistakes WHERE learner_id = ? AND text IN (?)`,
		learnerID.String(), texts)
	if err != nil {
		return nil, fmt.Errorf("failed to build tracked query: %w", err)
	}

	var found []string
	if err := sqlx.SelectContext(ctx, s.db, &found, s.db.Rebind(query), args...); err != nil {
		log.Error("failed to query tracked mistakes", slog.Any("error", err))
		return nil, store.NewStoreError("mistake", "tracked", "query failed", MapError(err))
	}

	for _, text := range found {
		tracked[text] = true
	}
	return tracked, nil
}

// MasteredWordStore implements store.MasteredWordStore.
type MasteredWordStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

var _ store.MasteredWordStore = (*MasteredWordStore)(nil)

// NewMasteredWordStore creates a MasteredWordStore.
func NewMasteredWordStore(db store.DBTX, logger *slog.Logger) *MasteredWordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MasteredWordStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastered_word_store")),
		now:    time.Now,
	}
}

// WithTx returns a store bound to tx.
func (s *MasteredWordStore) WithTx(tx *sqlx.Tx) store.MasteredWordStore {
	return &MasteredWordStore{db: tx, logger: s.logger, now: s.now}
}

// SetMastered implements store.MasteredWordStore.
func (s *MasteredWordStore) SetMastered(ctx context.Context, learnerID uuid.UUID, textID int64, word string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`INSERT INTO legacy_mastered_words (learner_id, text_id, word, mastered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id, text_id, word) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, query, learnerID.String(), textID, word, s.now().UTC()); err != nil {
		log.Error("failed to set mastered flag", slog.Any("error", err))
		return store.NewStoreError("mastered_word", "set", "exec failed", MapError(err))
	}
	return nil
}

// ClearMastered implements store.MasteredWordStore.
func (s *MasteredWordStore) ClearMastered(ctx context.Context, learnerID uuid.UUID, textID int64, word string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM legacy_mastered_words WHERE learner_id = ? AND text_id = ? AND word = ?`)
	if _, err := s.db.ExecContext(ctx, query, learnerID.String(), textID, word); err != nil {
		log.Error("failed to clear mastered flag", slog.Any("error", err))
		return store.NewStoreError("mastered_word", "clear", "exec failed", MapError(err))
	}
	return nil
}

// ListMastered implements store.MasteredWordStore.
func (s *MasteredWordStore) ListMastered(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
) (map[string]bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`SELECT word FROM legacy_mastered_words WHERE learner_id = ? AND text_id = ?`)

	var words []string
	if err := sqlx.SelectContext(ctx, s.db, &words, query, learnerID.String(), textID); err != nil {
		log.Error("failed to list mastered words", slog.Any("error", err))
		return nil, store.NewStoreError("mastered_word", "list", "query failed", MapError(err))
	}

	mastered := make(map[string]bool, len(words))
	for _, w := range words {
		mastered[w] = true
	}
	return mastered, nil
}
