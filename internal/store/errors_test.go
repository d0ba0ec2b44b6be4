package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("failed to do something: %w", ErrNotFound), true},
		{"ErrWordMasteryNotFound", ErrWordMasteryNotFound, true},
		{"ErrMistakeNotFound", ErrMistakeNotFound, true},
		{"wrapped ErrProgressNotFound", fmt.Errorf("get: %w", ErrProgressNotFound), true},
		{"ErrDuplicate", ErrDuplicate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrNotFound))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("word_mastery", "upsert", "failed to save", cause)

	assert.Equal(t, "upsert operation on word_mastery failed: failed to save: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("progress", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on progress failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
