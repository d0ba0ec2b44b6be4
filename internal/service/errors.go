package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/mastery-api/internal/store"
)

// Service errors - sentinel errors used across service implementations.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Storage errors are wrapped in ServiceError and also match ErrStorageFailure
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to HTTP status codes
var (
	// ErrInvalidState indicates that the request cannot be served from the
	// current state. API layer should map this to HTTP 409 Conflict.
	ErrInvalidState = errors.New("invalid state")

	// ErrNothingToPractice indicates that the text has no segmented items of the
	// requested type.
	ErrNothingToPractice = fmt.Errorf("%w: nothing to practice, segment the text first", ErrInvalidState)

	// ErrNothingDue indicates that the text has items but none is due for
	// review and none is new.
	ErrNothingDue = fmt.Errorf("%w: nothing due for practice", ErrInvalidState)

	// ErrStaleProgress indicates that saved progress was older than the
	// validity window and has been discarded.
	ErrStaleProgress = fmt.Errorf("%w: saved progress has expired", ErrInvalidState)

	// ErrSessionComplete indicates an answer for a session whose items have all
	// been answered.
	ErrSessionComplete = fmt.Errorf("%w: session already complete", ErrInvalidState)

	// ErrItemMismatch indicates that an answer names an item that is neither
	// the current one of the session nor further along it.
	ErrItemMismatch = fmt.Errorf("%w: answer does not match the remaining items", ErrInvalidState)

	// ErrStorageFailure indicates a durable read or write failed. The caller
	// retries the user action. API layer should map this to HTTP 500.
	ErrStorageFailure = errors.New("storage failure")

	// ErrInvalidInput indicates malformed arguments such as an unknown item type.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProgressNotFound indicates that no live session exists for the key.
	// API layer should map this to HTTP 404 Not Found.
	ErrProgressNotFound = errors.New("no saved progress")

	// ErrMistakeNotFound indicates that the text is not tracked in the ledger.
	// API layer should map this to HTTP 404 Not Found.
	ErrMistakeNotFound = errors.New("mistake not found")
)

// ServiceError wraps errors from the services with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_mistake", "save_progress")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// It returns known sentinel errors directly without wrapping, maps store
// not-found sentinels to their service counterparts, and marks anything else
// as a storage failure.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrProgressNotFound),
		errors.Is(err, ErrMistakeNotFound),
		errors.Is(err, ErrStorageFailure):
		return err
	case errors.Is(err, store.ErrProgressNotFound):
		return ErrProgressNotFound
	case errors.Is(err, store.ErrMistakeNotFound):
		return ErrMistakeNotFound
	case errors.Is(err, store.ErrInvalidEntity):
		return &ServiceError{
			Operation: operation,
			Message:   message,
			Err:       fmt.Errorf("%w: %w", ErrInvalidInput, err),
		}
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       fmt.Errorf("%w: %w", ErrStorageFailure, err),
	}
}
