package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/mastery-api/internal/api/shared"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/phrazzld/mastery-api/internal/service/auth"
	"github.com/phrazzld/mastery-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidSubject):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrProgressNotFound),
		errors.Is(err, service.ErrMistakeNotFound):
		return http.StatusNotFound

	// Conflict errors: the request is valid but the learner's state does not allow it
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidItemType),
		errors.Is(err, domain.ErrInvalidPracticeMode),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrStorageFailure):
		return http.StatusInternalServerError

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Invalid token"

	case errors.Is(err, service.ErrProgressNotFound):
		return "No saved progress"
	case errors.Is(err, service.ErrMistakeNotFound):
		return "Mistake not found"

	case errors.Is(err, service.ErrNothingToPractice):
		return "Nothing to practice, segment the text first"
	case errors.Is(err, service.ErrNothingDue):
		return "Nothing due for practice"
	case errors.Is(err, service.ErrStaleProgress):
		return "Saved progress has expired"
	case errors.Is(err, service.ErrSessionComplete):
		return "Session already complete"
	case errors.Is(err, service.ErrItemMismatch):
		return "Answer does not match the current item"
	case errors.Is(err, service.ErrInvalidState):
		return "Operation not allowed in the current state"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrInvalidItemType):
		return "Invalid item type"
	case errors.Is(err, domain.ErrInvalidPracticeMode):
		return "Invalid practice mode"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case MapErrorToStatusCode(err) == http.StatusBadRequest:
		return "Invalid request"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. For server
// errors a non-empty fallback replaces the generic message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", toSnakeCase(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func toSnakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "item_type":
		return "must be word, phrase or sentence"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
