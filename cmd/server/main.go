// Package main implements the entry point for the Mastery API server, which
// schedules spaced repetition practice of text segments for learners.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/platform/sqlstore"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a database migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		slog.Error("Server terminated with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, sets up logging and the database, then either
// executes a migration command or serves HTTP until shutdown.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return sqlstore.Migrate(ctx, db.DB, cfg.Database.Driver, migrateCmd, log)
	}

	if cfg.Database.AutoMigrate {
		if err := sqlstore.Migrate(ctx, db.DB, cfg.Database.Driver, "up", log); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
