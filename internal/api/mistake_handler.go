package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/mastery-api/internal/api/shared"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/service"
)

// MistakeHandler exposes the learner's mistake ledger.
type MistakeHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewMistakeHandler creates a new MistakeHandler.
func NewMistakeHandler(ledger service.LedgerService, logger *slog.Logger) *MistakeHandler {
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MistakeHandler")
	}
	return &MistakeHandler{
		ledger: ledger,
		logger: logger.With(slog.String("component", "mistake_handler")),
	}
}

// ListMistakes handles GET /mistakes.
func (h *MistakeHandler) ListMistakes(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	itemType, err := itemTypeQuery(r, "")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.ledger.ListTracked(r.Context(), learnerID, itemType)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list mistakes")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MistakesResponse{Mistakes: entries})
}

// RemoveMistake handles DELETE /mistakes?text=.
func (h *MistakeHandler) RemoveMistake(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	text := r.URL.Query().Get(queryText)
	if strings.TrimSpace(text) == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: text is required", domain.ErrValidation), "")
		return
	}

	if err := h.ledger.Remove(r.Context(), learnerID, text); err != nil {
		HandleAPIError(w, r, err, "Failed to remove mistake")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
