package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/mastery-api/internal/api/shared"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/service"
)

// ProgressHandler exposes saved session progress.
type ProgressHandler struct {
	progress service.ProgressService
	logger   *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if progressService == nil {
		panic("progressService cannot be nil")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{
		progress: progressService,
		logger:   logger.With(slog.String("component", "progress_handler")),
	}
}

// GetProgress handles GET /texts/{textID}/progress.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, itemType, ok := textKey(w, r)
	if !ok {
		return
	}

	progress, err := h.progress.GetProgress(r.Context(), learnerID, textID, itemType)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}

// SaveProgress handles PUT /texts/{textID}/progress.
func (h *ProgressHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, itemType, ok := textKey(w, r)
	if !ok {
		return
	}

	var req SaveProgressRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = domain.PracticeModeSpaced
	}

	progress := &domain.SessionProgress{
		LearnerID:      learnerID,
		TextID:         textID,
		ItemType:       itemType,
		Mode:           mode,
		Items:          req.Items,
		CurrentIndex:   req.CurrentIndex,
		CorrectCount:   req.CorrectCount,
		IncorrectCount: req.IncorrectCount,
		Limit:          req.Limit,
		StartedAt:      req.StartedAt,
	}
	if err := h.progress.SaveProgress(r.Context(), progress); err != nil {
		HandleAPIError(w, r, err, "Failed to save progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}

// ClearProgress handles DELETE /texts/{textID}/progress.
func (h *ProgressHandler) ClearProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, itemType, ok := textKey(w, r)
	if !ok {
		return
	}

	if err := h.progress.ClearProgress(r.Context(), learnerID, textID, itemType); err != nil {
		HandleAPIError(w, r, err, "Failed to clear progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
