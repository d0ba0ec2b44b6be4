// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidItemType is returned when an item type is not word, phrase or sentence.
	ErrInvalidItemType = errors.New("invalid item type")

	// ErrInvalidPracticeMode is returned when a practice mode is not recognized.
	ErrInvalidPracticeMode = errors.New("invalid practice mode")
)
