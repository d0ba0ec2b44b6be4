package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/sqlstore"
	"github.com/phrazzld/mastery-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "error"},
		Database: config.DatabaseConfig{
			Driver: sqlstore.DriverSQLite,
			URL:    "file:" + filepath.Join(t.TempDir(), "server.db"),
		},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			TokenLifetimeMinutes: 60,
		},
		Practice: config.PracticeConfig{
			ProgressValidity:    24 * time.Hour,
			SweepInterval:       time.Hour,
			SweepEnabled:        true,
			DefaultSessionLimit: 2,
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := testConfig(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := newApplication(cfg, log, testdb.Open(t))
	require.NoError(t, err)
	return app
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	t.Run("wires the sweeper when enabled", func(t *testing.T) {
		t.Parallel()
		app := newTestApplication(t)
		assert.NotNil(t, app.sweeper)
		assert.NotNil(t, app.practiceService)
	})

	t.Run("rejects a short jwt secret", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Auth.JWTSecret = "short"
		_, err := newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
		assert.Error(t, err)
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()
	app := newTestApplication(t)
	router := app.setupRouter()

	learner := uuid.New()
	token, err := app.jwtService.GenerateToken(context.Background(), learner)
	require.NoError(t, err)

	do := func(method, path string, authorized bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if authorized {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("health", func(t *testing.T) {
		rr := do(http.MethodGet, "/health", false)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("api requires a token", func(t *testing.T) {
		rr := do(http.MethodGet, "/api/masteries", false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unsegmented text has nothing to practice", func(t *testing.T) {
		rr := do(http.MethodGet, "/api/texts/1/schedule", true)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("segmented text is scheduled with the default limit", func(t *testing.T) {
		segments := sqlstore.NewSegmentStore(app.db, app.logger)
		require.NoError(t, segments.ReplaceSegments(context.Background(), 2, domain.ItemTypeWord,
			[]string{"un", "deux", "trois"}))

		rr := do(http.MethodGet, "/api/texts/2/schedule", true)
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Words    []domain.ScheduledItem `json:"words"`
			NewCount int                    `json:"new_count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Len(t, body.Words, 2)
		assert.Equal(t, "un", body.Words[0].Content)
		assert.Equal(t, 2, body.NewCount)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		rr := do(http.MethodPost, "/api/texts/2/sessions", true)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = do(http.MethodPost, "/api/texts/2/sessions", true)
		require.Equal(t, http.StatusOK, rr.Code, "second start resumes")

		rr = do(http.MethodGet, "/api/texts/2/progress", true)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = do(http.MethodDelete, "/api/texts/2/progress", true)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = do(http.MethodGet, "/api/texts/2/progress", true)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestApplicationRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	app := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
