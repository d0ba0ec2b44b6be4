package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/domain/srs"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/phrazzld/mastery-api/internal/store"
)

// Dependencies are the collaborators of the practice service.
type Dependencies struct {
	DB        *sqlx.DB
	Segments  store.SegmentStore
	Masteries store.WordMasteryStore
	Mastered  store.MasteredWordStore
	Ledger    service.LedgerService
	Progress  service.ProgressService
	History   service.HistoryService
	SRS       srs.Service
	// Now is the clock shared with the progress service; nil selects time.Now.
	Now func() time.Time
}

var _ PracticeService = (*practiceServiceImpl)(nil)

type practiceServiceImpl struct {
	db        *sqlx.DB
	segments  store.SegmentStore
	masteries store.WordMasteryStore
	mastered  store.MasteredWordStore
	ledger    service.LedgerService
	progress  service.ProgressService
	history   service.HistoryService
	srs       srs.Service
	logger    *slog.Logger
	now       func() time.Time
}

// NewPracticeService creates a PracticeService. It panics when a dependency
// is missing; a nil SRS falls back to the default SM-2 parameters.
func NewPracticeService(deps Dependencies, logger *slog.Logger) PracticeService {
	switch {
	case deps.DB == nil:
		panic("db cannot be nil")
	case deps.Segments == nil:
		panic("segments cannot be nil")
	case deps.Masteries == nil:
		panic("masteries cannot be nil")
	case deps.Mastered == nil:
		panic("mastered cannot be nil")
	case deps.Ledger == nil:
		panic("ledger cannot be nil")
	case deps.Progress == nil:
		panic("progress cannot be nil")
	case deps.History == nil:
		panic("history cannot be nil")
	}
	if deps.SRS == nil {
		deps.SRS = srs.NewDefaultService()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &practiceServiceImpl{
		db:        deps.DB,
		segments:  deps.Segments,
		masteries: deps.Masteries,
		mastered:  deps.Mastered,
		ledger:    deps.Ledger,
		progress:  deps.Progress,
		history:   deps.History,
		srs:       deps.SRS,
		logger:    logger.With(slog.String("component", "practice_service")),
		now:       deps.Now,
	}
}

func validateKey(textID int64, itemType domain.ItemType) error {
	if textID <= 0 {
		return fmt.Errorf("%w: text id must be positive", service.ErrInvalidInput)
	}
	if !itemType.Valid() {
		return fmt.Errorf("%w: unknown item type %q", service.ErrInvalidInput, itemType)
	}
	return nil
}

func (s *practiceServiceImpl) GetScheduledWords(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
	limit int,
) (*Composition, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateKey(textID, itemType); err != nil {
		return nil, err
	}

	segments, err := s.segments.GetSegments(ctx, textID, itemType)
	if err != nil {
		return nil, service.NewServiceError("get_scheduled_words", "failed to load segments", err)
	}
	if len(segments) == 0 {
		log.Debug("text has no segments",
			slog.Int64("text_id", textID),
			slog.String("item_type", string(itemType)))
		return nil, service.ErrNothingToPractice
	}

	ids := make([]int64, len(segments))
	for i, seg := range segments {
		ids[i] = seg.ID
	}
	records, err := s.masteries.ListForItems(ctx, learnerID, ids)
	if err != nil {
		return nil, service.NewServiceError("get_scheduled_words", "failed to load masteries", err)
	}

	byID := make(map[int64]domain.WordMastery, len(records))
	for _, m := range records {
		byID[m.ItemID] = m
	}

	composition := Compose(segments, byID, s.now().UTC(), limit)

	log.Debug("composed practice list",
		slog.String("learner_id", learnerID.String()),
		slog.Int64("text_id", textID),
		slog.Int("review_count", composition.ReviewCount),
		slog.Int("new_count", composition.NewCount))
	return &composition, nil
}

func (s *practiceServiceImpl) UpdateWordMastery(
	ctx context.Context,
	learnerID uuid.UUID,
	req UpdateRequest,
) (*domain.WordMastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.ItemID <= 0 {
		return nil, fmt.Errorf("%w: item id must be positive", service.ErrInvalidInput)
	}
	if !req.ItemType.Valid() {
		return nil, fmt.Errorf("%w: unknown item type %q", service.ErrInvalidInput, req.ItemType)
	}
	if domain.NormalizeText(req.Content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", service.ErrInvalidInput)
	}

	now := s.now().UTC()
	var updated *domain.WordMastery

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		masteries := s.masteries.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		current, err := masteries.Get(ctx, learnerID, req.ItemID)
		switch {
		case errors.Is(err, store.ErrWordMasteryNotFound):
			current, err = domain.NewWordMastery(learnerID, req.ItemID, req.Content, req.ItemType, now)
			if err != nil {
				return errors.Join(service.ErrInvalidInput, err)
			}
		case err != nil:
			return err
		}
		current.Content = req.Content
		current.ItemType = req.ItemType

		next, err := s.srs.Update(current, req.Correct, now)
		if err != nil {
			return err
		}
		if err := masteries.Upsert(ctx, next); err != nil {
			return err
		}

		if !req.Correct {
			if _, err := ledger.RecordMistake(ctx, learnerID, req.Content, req.TextID, req.ItemType); err != nil {
				return err
			}
		} else if next.IsMastered() {
			if err := ledger.ClearIfMastered(ctx, learnerID, req.Content); err != nil {
				return err
			}
		}

		updated = next
		return nil
	})
	if err != nil {
		log.Error("failed to update word mastery",
			slog.String("learner_id", learnerID.String()),
			slog.Int64("item_id", req.ItemID),
			slog.Any("error", err))
		return nil, service.NewServiceError("update_word_mastery", "failed to apply answer", err)
	}

	log.Debug("word mastery updated",
		slog.Int64("item_id", updated.ItemID),
		slog.Bool("correct", req.Correct),
		slog.Int("mastery_level", updated.MasteryLevel),
		slog.Int("interval_days", updated.IntervalDays))
	return updated, nil
}

func (s *practiceServiceImpl) GetWordMasteries(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.WordMastery, error) {
	if itemType != "" && !itemType.Valid() {
		return nil, fmt.Errorf("%w: unknown item type %q", service.ErrInvalidInput, itemType)
	}
	records, err := s.masteries.ListAll(ctx, learnerID, itemType)
	if err != nil {
		return nil, service.NewServiceError("get_word_masteries", "failed to list masteries", err)
	}
	return records, nil
}

func (s *practiceServiceImpl) StartSession(
	ctx context.Context,
	learnerID uuid.UUID,
	req StartRequest,
) (Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.Int64("text_id", req.TextID),
		slog.String("item_type", string(req.ItemType)))

	if err := validateKey(req.TextID, req.ItemType); err != nil {
		return nil, err
	}
	mode, err := domain.ParsePracticeMode(string(req.Mode))
	if err != nil {
		return nil, errors.Join(service.ErrInvalidInput, err)
	}

	if req.Restart {
		err := s.progress.ClearProgress(ctx, learnerID, req.TextID, req.ItemType)
		if err != nil && !errors.Is(err, service.ErrProgressNotFound) {
			return nil, err
		}
	} else {
		saved, err := s.progress.GetProgress(ctx, learnerID, req.TextID, req.ItemType)
		switch {
		case err == nil:
			log.Info("resuming session",
				slog.String("mode", string(saved.Mode)),
				slog.Int("current_index", saved.CurrentIndex),
				slog.Int("items", len(saved.Items)))
			return sessionFromProgress(*saved, true), nil
		case errors.Is(err, service.ErrProgressNotFound), errors.Is(err, service.ErrStaleProgress):
		default:
			log.Warn("failed to load saved progress, starting fresh", slog.Any("error", err))
		}
	}

	composition, err := s.composeSession(ctx, learnerID, req.TextID, req.ItemType, mode, req.Limit)
	if err != nil {
		return nil, err
	}
	items := composition.Items
	if len(items) == 0 {
		return nil, service.ErrNothingDue
	}

	progress, err := domain.NewSessionProgress(learnerID, req.TextID, req.ItemType, mode, items, req.Limit, s.now())
	if err != nil {
		return nil, errors.Join(service.ErrInvalidInput, err)
	}
	if err := s.progress.SaveProgress(ctx, progress); err != nil {
		log.Warn("failed to save new session progress", slog.Any("error", err))
	}

	log.Info("session started",
		slog.String("mode", string(mode)),
		slog.Int("items", len(items)))

	if mode == domain.PracticeModeLegacy {
		return &LegacySession{Progress: *progress}, nil
	}
	return &SpacedRepetitionSession{
		Progress:    *progress,
		NewCount:    composition.NewCount,
		ReviewCount: composition.ReviewCount,
	}, nil
}

func (s *practiceServiceImpl) AnswerInSession(
	ctx context.Context,
	learnerID uuid.UUID,
	req AnswerRequest,
) (*AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.Int64("text_id", req.TextID),
		slog.String("item_type", string(req.ItemType)))

	if err := validateKey(req.TextID, req.ItemType); err != nil {
		return nil, err
	}

	saved, err := s.progress.GetProgress(ctx, learnerID, req.TextID, req.ItemType)
	if errors.Is(err, service.ErrProgressNotFound) && req.ItemID != 0 {
		saved, err = s.rebuildProgress(ctx, learnerID, req, log)
	}
	if err != nil {
		return nil, err
	}

	current, ok := saved.Current()
	if !ok {
		return nil, service.ErrSessionComplete
	}
	if req.ItemID != 0 && req.ItemID != current.ID {
		synced, found := saved.SyncTo(req.ItemID)
		if !found {
			return nil, service.ErrItemMismatch
		}
		log.Warn("saved progress behind answered item, moving forward",
			slog.Int("saved_index", saved.CurrentIndex),
			slog.Int("current_index", synced.CurrentIndex))
		saved = &synced
		current, _ = saved.Current()
	}

	result := &AnswerResult{}
	switch session := sessionFromProgress(*saved, true).(type) {
	case *SpacedRepetitionSession:
		mastery, err := s.UpdateWordMastery(ctx, learnerID, UpdateRequest{
			ItemID:   current.ID,
			Content:  current.Content,
			ItemType: session.Progress.ItemType,
			Correct:  req.Correct,
			TextID:   session.Progress.TextID,
		})
		if err != nil {
			return nil, err
		}
		result.Mastery = mastery
	case *LegacySession:
		err := s.AnswerLegacy(ctx, learnerID, session.Progress.TextID, current.Content,
			session.Progress.ItemType, req.Correct)
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	advanced := saved.Advance(req.Correct, now)
	result.Progress = advanced

	if !advanced.IsComplete() {
		if err := s.progress.SaveProgress(ctx, &advanced); err != nil {
			log.Warn("failed to save session progress",
				slog.Int("current_index", advanced.CurrentIndex),
				slog.Any("error", err))
		}
		return result, nil
	}

	result.Completed = true
	if err := s.progress.ClearProgress(ctx, learnerID, req.TextID, req.ItemType); err != nil &&
		!errors.Is(err, service.ErrProgressNotFound) {
		log.Warn("failed to clear completed session", slog.Any("error", err))
	}

	history, err := domain.NewPracticeHistory(learnerID, advanced.TextID, advanced.ItemType, advanced.Mode,
		advanced.CorrectCount, advanced.IncorrectCount, now.Sub(advanced.StartedAt), now)
	if err != nil {
		log.Warn("failed to build practice history", slog.Any("error", err))
		return result, nil
	}
	if err := s.history.SaveHistory(ctx, history); err != nil {
		log.Warn("failed to save practice history", slog.Any("error", err))
		return result, nil
	}
	result.History = history

	log.Info("session completed",
		slog.Int("correct", advanced.CorrectCount),
		slog.Int("incorrect", advanced.IncorrectCount))
	return result, nil
}

// composeSession builds the item list of a new session. Legacy compositions
// carry no new and review totals.
func (s *practiceServiceImpl) composeSession(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
	mode domain.PracticeMode,
	limit int,
) (*Composition, error) {
	if mode == domain.PracticeModeLegacy {
		items, err := s.composeLegacyItems(ctx, learnerID, textID, itemType, limit)
		if err != nil {
			return nil, err
		}
		return &Composition{Items: items}, nil
	}
	return s.GetScheduledWords(ctx, learnerID, textID, itemType, limit)
}

// rebuildProgress recreates the progress of a session whose start was never
// saved. No answer has been recorded for such a session, so composing again
// yields the frozen list the learner is working through. The result is
// positioned at req.ItemID; ErrProgressNotFound is returned when that item is
// not part of the composition.
func (s *practiceServiceImpl) rebuildProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	req AnswerRequest,
	log *slog.Logger,
) (*domain.SessionProgress, error) {
	mode, err := domain.ParsePracticeMode(string(req.Mode))
	if err != nil {
		return nil, errors.Join(service.ErrInvalidInput, err)
	}

	composition, err := s.composeSession(ctx, learnerID, req.TextID, req.ItemType, mode, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrNothingToPractice) {
			return nil, service.ErrProgressNotFound
		}
		return nil, err
	}
	if len(composition.Items) == 0 {
		return nil, service.ErrProgressNotFound
	}

	progress, err := domain.NewSessionProgress(learnerID, req.TextID, req.ItemType, mode,
		composition.Items, req.Limit, s.now())
	if err != nil {
		return nil, errors.Join(service.ErrInvalidInput, err)
	}
	synced, found := progress.SyncTo(req.ItemID)
	if !found {
		return nil, service.ErrProgressNotFound
	}

	log.Warn("no saved progress for answered item, rebuilt session",
		slog.String("mode", string(mode)),
		slog.Int("current_index", synced.CurrentIndex),
		slog.Int("items", len(synced.Items)))
	return &synced, nil
}
