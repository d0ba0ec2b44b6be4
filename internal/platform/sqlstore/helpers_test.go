package sqlstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/stretchr/testify/require"
)

// testNow is a fixed instant used by store tests.
var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestDB opens a migrated SQLite database in a temporary directory.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{
		Driver: DriverSQLite,
		URL:    "file:" + filepath.Join(t.TempDir(), "mastery.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db.DB, DriverSQLite, "up", discardLogger()))
	return db
}

func newLearner() uuid.UUID {
	return uuid.New()
}
