package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/api/shared"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
)

// Query parameter names shared by the handlers.
const (
	queryItemType = "type"
	queryLimit    = "limit"
	queryText     = "text"
)

// requireLearner returns the authenticated learner. It writes a 401 response
// and returns false when the context has none.
func requireLearner(w http.ResponseWriter, r *http.Request, fallback *slog.Logger) (uuid.UUID, bool) {
	learnerID, ok := shared.GetLearnerID(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), fallback).Warn("learner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found or invalid")
		return uuid.Nil, false
	}
	return learnerID, true
}

// getPathInt64 extracts a positive integer id from the URL path parameters.
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// itemTypeQuery parses the type query parameter. An absent parameter yields
// fallback, which may be empty to mean "all types".
func itemTypeQuery(r *http.Request, fallback domain.ItemType) (domain.ItemType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(queryItemType))
	if raw == "" {
		return fallback, nil
	}
	return domain.ParseItemType(raw)
}

// limitQuery parses the limit query parameter. An absent parameter yields
// fallback; negative or non-numeric values are rejected.
func limitQuery(r *http.Request, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(queryLimit))
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrValidation)
	}
	return limit, nil
}

// decodeAndValidate decodes the JSON body into v and validates it.
func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := shared.DecodeJSON(r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return err
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrValidation, err)
	}
	return shared.ValidateRequest(v)
}

// textKey extracts the textID path parameter and the item type query
// parameter, defaulting to words. It writes an error response on failure.
func textKey(w http.ResponseWriter, r *http.Request) (int64, domain.ItemType, bool) {
	textID, err := getPathInt64(r, "textID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, "", false
	}
	itemType, err := itemTypeQuery(r, domain.ItemTypeWord)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, "", false
	}
	return textID, itemType, true
}
