package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/mastery-api/internal/api/middleware"
)

// Handlers groups the handlers mounted under /api.
type Handlers struct {
	Practice *PracticeHandler
	Progress *ProgressHandler
	Mistakes *MistakeHandler
	History  *HistoryHandler
}

// Routes returns a function registering every authenticated route. It is
// meant to be mounted with chi's Route("/api", ...).
func Routes(h Handlers, auth *middleware.AuthMiddleware) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/texts/{textID}", func(r chi.Router) {
			r.Get("/schedule", h.Practice.GetSchedule)
			r.Post("/sessions", h.Practice.StartSession)
			r.Post("/sessions/answer", h.Practice.AnswerInSession)
			r.Post("/legacy", h.Practice.ComposeLegacy)
			r.Post("/legacy/answer", h.Practice.AnswerLegacy)

			r.Get("/progress", h.Progress.GetProgress)
			r.Put("/progress", h.Progress.SaveProgress)
			r.Delete("/progress", h.Progress.ClearProgress)
		})

		r.Get("/masteries", h.Practice.ListMasteries)
		r.Get("/masteries/export", h.Practice.ExportMasteries)
		r.Post("/masteries/{itemID}/answer", h.Practice.AnswerMastery)

		r.Get("/mistakes", h.Mistakes.ListMistakes)
		r.Delete("/mistakes", h.Mistakes.RemoveMistake)

		r.Get("/history", h.History.ListHistory)
		r.Get("/statistics", h.History.Statistics)
	}
}
