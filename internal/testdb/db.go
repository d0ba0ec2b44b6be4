package testdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/ciutil"
	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/phrazzld/mastery-api/internal/platform/sqlstore"
)

// Open returns a migrated, empty database that is closed and discarded when
// the test ends.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	cfg, cleanup, err := prepare(ctx, t, logger)
	if err != nil {
		t.Fatalf("failed to prepare test database: %v", err)
	}
	t.Cleanup(cleanup)

	db, err := sqlstore.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to open test database (%s): %v", ciutil.MaskSensitiveValue(cfg.URL), err)
	}
	// Registered after the schema cleanup so it runs first.
	t.Cleanup(func() { _ = db.Close() })

	if err := sqlstore.Migrate(ctx, db.DB, cfg.Driver, "up", logger); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func prepare(ctx context.Context, t *testing.T, logger *slog.Logger) (config.DatabaseConfig, func(), error) {
	baseURL := ciutil.GetTestDatabaseURL(logger)
	if baseURL == "" {
		return config.DatabaseConfig{
			Driver: sqlstore.DriverSQLite,
			URL:    "file:" + filepath.Join(t.TempDir(), "test.db"),
		}, func() {}, nil
	}

	admin, err := sqlstore.Open(ctx, config.DatabaseConfig{
		Driver:       sqlstore.DriverPostgres,
		URL:          baseURL,
		MaxOpenConns: 1,
	})
	if err != nil {
		return config.DatabaseConfig{}, nil, err
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		_ = admin.Close()
		return config.DatabaseConfig{}, nil, fmt.Errorf("failed to create schema: %w", err)
	}

	cleanup := func() {
		if _, err := admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("failed to drop test schema %s: %v", schema, err)
		}
		_ = admin.Close()
	}

	scoped, err := withSearchPath(baseURL, schema)
	if err != nil {
		cleanup()
		return config.DatabaseConfig{}, nil, err
	}

	return config.DatabaseConfig{
		Driver:       sqlstore.DriverPostgres,
		URL:          scoped,
		MaxOpenConns: 4,
	}, cleanup, nil
}

// withSearchPath points every connection of dbURL at schema.
func withSearchPath(dbURL, schema string) (string, error) {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	q := parsed.Query()
	q.Set("search_path", schema)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
