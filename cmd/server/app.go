package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/phrazzld/mastery-api/internal/platform/sqlstore"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/phrazzld/mastery-api/internal/service/auth"
	"github.com/phrazzld/mastery-api/internal/service/practice"
	"github.com/phrazzld/mastery-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	jwtService      auth.JWTService
	practiceService practice.PracticeService
	progressService service.ProgressService
	ledgerService   service.LedgerService
	historyService  service.HistoryService
	exportService   service.ExportService

	// sweeper is nil when stale progress sweeping is disabled.
	sweeper *task.ProgressSweeper
}

// newApplication creates a new application instance with all dependencies
// initialized. The database connection must already be open and migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	segmentStore := sqlstore.NewSegmentStore(db, logger)
	masteryStore := sqlstore.NewWordMasteryStore(db, logger)
	masteredStore := sqlstore.NewMasteredWordStore(db, logger)
	mistakeStore := sqlstore.NewMistakeStore(db, logger)
	progressStore := sqlstore.NewProgressStore(db, logger)
	historyStore := sqlstore.NewHistoryStore(db, logger)

	app.ledgerService = service.NewLedgerService(mistakeStore, logger)
	clock := time.Now
	app.progressService = service.NewProgressService(progressStore, cfg.Practice.ProgressValidity, logger,
		service.WithProgressClock(clock))
	app.historyService = service.NewHistoryService(historyStore, logger)
	app.exportService = service.NewExportService(masteryStore, logger)

	app.practiceService = practice.NewPracticeService(practice.Dependencies{
		DB:        db,
		Segments:  segmentStore,
		Masteries: masteryStore,
		Mastered:  masteredStore,
		Ledger:    app.ledgerService,
		Progress:  app.progressService,
		History:   app.historyService,
		Now:       clock,
	}, logger)

	if cfg.Practice.SweepEnabled {
		app.sweeper = task.NewProgressSweeper(app.progressService, cfg.Practice.SweepInterval, logger)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts background jobs and the HTTP server, and blocks until the
// server shuts down.
func (app *application) Run(ctx context.Context) error {
	if app.sweeper != nil {
		if err := app.sweeper.Start(); err != nil {
			app.sweeper = nil
			app.cleanup()
			return fmt.Errorf("failed to start progress sweeper: %w", err)
		}
		app.logger.Info("Progress sweeper started", "interval", app.config.Practice.SweepInterval)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 10 * time.Second
