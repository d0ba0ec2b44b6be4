package practice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/sqlstore"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/phrazzld/mastery-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

// testEnv wires a practice service to a migrated SQLite database.
type testEnv struct {
	db       *sqlx.DB
	svc      *practiceServiceImpl
	segments *sqlstore.SegmentStore
	progress *sqlstore.ProgressStore
	history  *sqlstore.HistoryStore
	ledger   service.LedgerService
	clock    time.Time

	progressSvc service.ProgressService
}

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.Open(t)
	log := discardLogger()
	env := &testEnv{
		db:       db,
		segments: sqlstore.NewSegmentStore(db, log),
		progress: sqlstore.NewProgressStore(db, log),
		history:  sqlstore.NewHistoryStore(db, log),
		ledger:   service.NewLedgerService(sqlstore.NewMistakeStore(db, log), log),
		clock:    testStart,
	}
	now := func() time.Time { return env.clock }
	env.progressSvc = service.NewProgressService(env.progress, domain.DefaultProgressValidity, log,
		service.WithProgressClock(now))

	env.svc = NewPracticeService(Dependencies{
		DB:        db,
		Segments:  env.segments,
		Masteries: sqlstore.NewWordMasteryStore(db, log),
		Mastered:  sqlstore.NewMasteredWordStore(db, log),
		Ledger:    env.ledger,
		Progress:  env.progressSvc,
		History:   service.NewHistoryService(env.history, log),
		Now:       now,
	}, log).(*practiceServiceImpl)

	return env
}

// segment stores contents as the word segments of textID and returns them.
func (e *testEnv) segment(t *testing.T, textID int64, contents ...string) []domain.Segment {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, e.segments.ReplaceSegments(ctx, textID, domain.ItemTypeWord, contents))
	segs, err := e.segments.GetSegments(ctx, textID, domain.ItemTypeWord)
	require.NoError(t, err)
	require.Len(t, segs, len(contents))
	return segs
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

// failSaves makes the next n progress saves of the practice service fail.
func (e *testEnv) failSaves(n int) *failingSaves {
	f := &failingSaves{ProgressService: e.progressSvc, remaining: n}
	e.svc.progress = f
	return f
}

// failingSaves is a ProgressService whose SaveProgress fails while remaining
// is positive.
type failingSaves struct {
	service.ProgressService
	remaining int
	failed    int
}

func (f *failingSaves) SaveProgress(ctx context.Context, p *domain.SessionProgress) error {
	if f.remaining > 0 {
		f.remaining--
		f.failed++
		return service.NewServiceError("save_progress", "failed to save progress", service.ErrStorageFailure)
	}
	return f.ProgressService.SaveProgress(ctx, p)
}

func newLearner() uuid.UUID {
	return uuid.New()
}
