package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/mastery-api/internal/api/shared"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/phrazzld/mastery-api/internal/service/practice"
)

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PracticeHandler handles scheduling, session, mastery and legacy requests.
type PracticeHandler struct {
	practice     practice.PracticeService
	export       service.ExportService
	defaultLimit int
	logger       *slog.Logger
}

// NewPracticeHandler creates a new PracticeHandler. defaultLimit applies when
// a request carries no limit.
func NewPracticeHandler(
	practiceService practice.PracticeService,
	exportService service.ExportService,
	defaultLimit int,
	logger *slog.Logger,
) *PracticeHandler {
	if practiceService == nil {
		panic("practiceService cannot be nil")
	}
	if exportService == nil {
		panic("exportService cannot be nil")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PracticeHandler")
	}
	return &PracticeHandler{
		practice:     practiceService,
		export:       exportService,
		defaultLimit: max(defaultLimit, 0),
		logger:       logger.With(slog.String("component", "practice_handler")),
	}
}

// GetSchedule handles GET /texts/{textID}/schedule.
func (h *PracticeHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, itemType, ok := textKey(w, r)
	if !ok {
		return
	}
	limit, err := limitQuery(r, h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	composition, err := h.practice.GetScheduledWords(r.Context(), learnerID, textID, itemType, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compose schedule")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, composition)
}

// StartSession handles POST /texts/{textID}/sessions. A live session for the
// key is resumed unless restart is set.
func (h *PracticeHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, itemType, ok := textKey(w, r)
	if !ok {
		return
	}

	// The body is optional; an empty one starts a default spaced session.
	var req StartSessionRequest
	if err := decodeAndValidate(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleAPIError(w, r, err, "")
		return
	}
	limit := h.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	session, err := h.practice.StartSession(r.Context(), learnerID, practice.StartRequest{
		TextID:   textID,
		ItemType: itemType,
		Mode:     req.Mode,
		Limit:    limit,
		Restart:  req.Restart,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	status := http.StatusCreated
	if session.Resumed() {
		status = http.StatusOK
	}
	log.Debug("session ready",
		slog.Int64("text_id", textID),
		slog.Bool("resumed", session.Resumed()))
	shared.RespondWithJSON(w, r, status, sessionToResponse(session))
}

// AnswerInSession handles POST /texts/{textID}/sessions/answer.
func (h *PracticeHandler) AnswerInSession(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, itemType, ok := textKey(w, r)
	if !ok {
		return
	}

	var req SessionAnswerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	limit := h.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	result, err := h.practice.AnswerInSession(r.Context(), learnerID, practice.AnswerRequest{
		TextID:   textID,
		ItemType: itemType,
		ItemID:   req.ItemID,
		Correct:  *req.Correct,
		Mode:     req.Mode,
		Limit:    limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// AnswerMastery handles POST /masteries/{itemID}/answer.
func (h *PracticeHandler) AnswerMastery(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	itemID, err := getPathInt64(r, "itemID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req MasteryAnswerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mastery, err := h.practice.UpdateWordMastery(r.Context(), learnerID, practice.UpdateRequest{
		ItemID:   itemID,
		Content:  req.Content,
		ItemType: req.ItemType,
		Correct:  *req.Correct,
		TextID:   req.TextID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update mastery")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mastery)
}

// ListMasteries handles GET /masteries.
func (h *PracticeHandler) ListMasteries(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	itemType, err := itemTypeQuery(r, "")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	masteries, err := h.practice.GetWordMasteries(r.Context(), learnerID, itemType)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list masteries")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MasteriesResponse{Masteries: masteries})
}

// ExportMasteries handles GET /masteries/export and returns an xlsx workbook.
func (h *PracticeHandler) ExportMasteries(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	itemType, err := itemTypeQuery(r, "")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	data, err := h.export.ExportMasteries(r.Context(), learnerID, itemType)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export masteries")
		return
	}

	filename := fmt.Sprintf("masteries-%s.xlsx", time.Now().UTC().Format("20060102"))
	shared.RespondWithAttachment(w, r, XLSXContentType, filename, data)
}

// ComposeLegacy handles POST /texts/{textID}/legacy.
func (h *PracticeHandler) ComposeLegacy(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, err := getPathInt64(r, "textID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req LegacyComposeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	words, err := h.practice.ComposeLegacy(r.Context(), learnerID, textID, req.Words)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compose practice list")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, LegacyComposeResponse{Words: words})
}

// AnswerLegacy handles POST /texts/{textID}/legacy/answer.
func (h *PracticeHandler) AnswerLegacy(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}
	textID, err := getPathInt64(r, "textID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req LegacyAnswerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	itemType := req.ItemType
	if itemType == "" {
		itemType = domain.ItemTypeWord
	}

	err = h.practice.AnswerLegacy(r.Context(), learnerID, textID, req.Word, itemType, *req.Correct)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
