package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/mastery-api/internal/api"
	apiMiddleware "github.com/phrazzld/mastery-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	handlers := api.Handlers{
		Practice: api.NewPracticeHandler(
			app.practiceService,
			app.exportService,
			app.config.Practice.DefaultSessionLimit,
			app.logger,
		),
		Progress: api.NewProgressHandler(app.progressService, app.logger),
		Mistakes: api.NewMistakeHandler(app.ledgerService, app.logger),
		History:  api.NewHistoryHandler(app.historyService, app.logger),
	}
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", api.Routes(handlers, authMiddleware))

	r.Get("/health", app.health)

	return r
}

// health reports OK when the database answers a ping.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.logger.Error("Health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("Failed to write health check response", "error", err)
	}
}
