package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/service"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = time.Hour

// sweepTimeout bounds a single sweep run.
const sweepTimeout = 30 * time.Second

// ProgressSweeper periodically deletes saved sessions that are older than the
// progress validity window. Reads already discard such sessions lazily; the
// sweeper keeps abandoned ones from accumulating.
type ProgressSweeper struct {
	progress  service.ProgressService
	interval  time.Duration
	scheduler *gocron.Scheduler
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewProgressSweeper creates a sweeper that runs every interval.
func NewProgressSweeper(progress service.ProgressService, interval time.Duration, logger *slog.Logger) *ProgressSweeper {
	if progress == nil {
		panic("progress cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &ProgressSweeper{
		progress:  progress,
		interval:  interval,
		scheduler: s,
		logger:    logger.With(slog.String("component", "progress_sweeper")),
	}
}

// Start schedules the sweep and returns immediately. The first run happens
// right away.
func (s *ProgressSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("progress sweeper already started")
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return fmt.Errorf("failed to schedule progress sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.started = true

	s.logger.Info("progress sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("validity", s.progress.Validity()))
	return nil
}

// Stop halts the schedule. A sweep that is already running completes.
func (s *ProgressSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.scheduler.Stop()
	s.started = false
	s.logger.Info("progress sweeper stopped")
}

// Sweep runs one sweep and returns the number of deleted sessions.
func (s *ProgressSweeper) Sweep(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	start := time.Now()
	removed, err := s.progress.SweepStale(ctx)
	if err != nil {
		log.Error("progress sweep failed", slog.Any("error", err))
		return 0, err
	}

	level := slog.LevelDebug
	if removed > 0 {
		level = slog.LevelInfo
	}
	log.Log(ctx, level, "progress sweep finished",
		slog.Int64("removed", removed),
		slog.Duration("elapsed", time.Since(start)))
	return removed, nil
}

func (s *ProgressSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	runLogger := s.logger.With(slog.String("run_id", uuid.NewString()))
	ctx = logger.WithLogger(ctx, runLogger)

	// Errors are logged by Sweep; the schedule keeps going.
	_, _ = s.Sweep(ctx)
}
