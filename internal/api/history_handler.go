package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/mastery-api/internal/api/shared"
	"github.com/phrazzld/mastery-api/internal/service"
)

// HistoryHandler exposes completed sessions and their statistics.
type HistoryHandler struct {
	history service.HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService, logger *slog.Logger) *HistoryHandler {
	if historyService == nil {
		panic("historyService cannot be nil")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HistoryHandler")
	}
	return &HistoryHandler{
		history: historyService,
		logger:  logger.With(slog.String("component", "history_handler")),
	}
}

// ListHistory handles GET /history.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	// 0 lets the service apply its default page size.
	limit, err := limitQuery(r, 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	histories, err := h.history.ListHistory(r.Context(), learnerID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list history")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HistoryResponse{Histories: histories})
}

// Statistics handles GET /statistics.
func (h *HistoryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	stats, err := h.history.Statistics(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
