package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
)

// ProgressService tracks resumable sessions. For each (learner, text id, item
// type) the state moves NONE -> ACTIVE -> NONE, and an ACTIVE record older than
// the validity window is discarded on read (STALE).
type ProgressService interface {
	// SaveProgress persists the session, overwriting any previous record for
	// its key.
	SaveProgress(ctx context.Context, progress *domain.SessionProgress) error

	// GetProgress returns the live session for the key.
	// Returns ErrProgressNotFound if none exists, or ErrStaleProgress after
	// deleting a record older than the validity window.
	GetProgress(
		ctx context.Context,
		learnerID uuid.UUID,
		textID int64,
		itemType domain.ItemType,
	) (*domain.SessionProgress, error)

	// ClearProgress deletes the session for the key.
	// Returns ErrProgressNotFound if none exists.
	ClearProgress(ctx context.Context, learnerID uuid.UUID, textID int64, itemType domain.ItemType) error

	// SweepStale deletes every record older than the validity window and
	// returns how many were removed.
	SweepStale(ctx context.Context) (int64, error)

	// Validity returns the configured validity window.
	Validity() time.Duration
}

type progressServiceImpl struct {
	progress store.ProgressStore
	validity time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

var _ ProgressService = (*progressServiceImpl)(nil)

// ProgressOption configures a ProgressService.
type ProgressOption func(*progressServiceImpl)

// WithProgressClock sets the clock that staleness checks and sweeps compare
// against. It should be the clock the practice service stamps progress with.
func WithProgressClock(now func() time.Time) ProgressOption {
	return func(s *progressServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// NewProgressService creates a ProgressService. A non-positive validity falls
// back to domain.DefaultProgressValidity.
func NewProgressService(
	progress store.ProgressStore,
	validity time.Duration,
	logger *slog.Logger,
	opts ...ProgressOption,
) ProgressService {
	if progress == nil {
		panic("progress cannot be nil")
	}
	if validity <= 0 {
		validity = domain.DefaultProgressValidity
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &progressServiceImpl{
		progress: progress,
		validity: validity,
		logger:   logger.With(slog.String("component", "progress_service")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *progressServiceImpl) Validity() time.Duration {
	return s.validity
}

func (s *progressServiceImpl) SaveProgress(ctx context.Context, progress *domain.SessionProgress) error {
	if progress == nil {
		return NewServiceError("save_progress", "nil progress", ErrInvalidInput)
	}
	if err := progress.Validate(); err != nil {
		return NewServiceError("save_progress", "invalid progress", errors.Join(ErrInvalidInput, err))
	}
	if progress.SavedAt.IsZero() {
		progress.SavedAt = s.now().UTC()
	}
	if progress.StartedAt.IsZero() {
		progress.StartedAt = progress.SavedAt
	}

	if err := s.progress.Upsert(ctx, progress); err != nil {
		return NewServiceError("save_progress", "failed to save progress", err)
	}
	return nil
}

func (s *progressServiceImpl) GetProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) (*domain.SessionProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := s.progress.Get(ctx, learnerID, textID, itemType)
	if err != nil {
		return nil, NewServiceError("get_progress", "failed to load progress", err)
	}

	if p.IsStale(s.now(), s.validity) {
		log.Info("discarding stale progress",
			slog.String("learner_id", learnerID.String()),
			slog.Int64("text_id", textID),
			slog.String("item_type", string(itemType)),
			slog.Time("saved_at", p.SavedAt))
		if err := s.progress.Delete(ctx, learnerID, textID, itemType); err != nil &&
			!errors.Is(err, store.ErrProgressNotFound) {
			log.Warn("failed to delete stale progress", slog.Any("error", err))
		}
		return nil, ErrStaleProgress
	}

	return p, nil
}

func (s *progressServiceImpl) ClearProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) error {
	if err := s.progress.Delete(ctx, learnerID, textID, itemType); err != nil {
		return NewServiceError("clear_progress", "failed to delete progress", err)
	}
	return nil
}

func (s *progressServiceImpl) SweepStale(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.validity)
	n, err := s.progress.DeleteSavedBefore(ctx, cutoff)
	if err != nil {
		return 0, NewServiceError("sweep_progress", "failed to delete stale progress", err)
	}
	return n, nil
}
