package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)
	traceID := GetTraceID(ctxWithTrace)
	assert.Len(t, traceID, 32, "Expected trace ID length to be 32 hex characters (16 bytes)")

	// Original context should remain unchanged
	assert.Empty(t, GetTraceID(ctx))
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), TraceIDKey, 123) // Not a string
	assert.Empty(t, GetTraceID(ctx))
}

func TestGenerateTraceID(t *testing.T) {
	t.Parallel()

	const iterations = 1000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := generateTraceID()
		_, err := hex.DecodeString(id)
		require.NoError(t, err, "Expected valid hex string")
		require.False(t, seen[id], "Generated duplicate trace ID")
		seen[id] = true
	}
}

func TestLearnerID(t *testing.T) {
	t.Parallel()

	_, ok := GetLearnerID(context.Background())
	assert.False(t, ok)

	_, ok = GetLearnerID(WithLearnerID(context.Background(), uuid.Nil))
	assert.False(t, ok, "nil learner is rejected")

	_, ok = GetLearnerID(context.WithValue(context.Background(), LearnerIDContextKey, "not-a-uuid"))
	assert.False(t, ok)

	learner := uuid.New()
	got, ok := GetLearnerID(WithLearnerID(context.Background(), learner))
	require.True(t, ok)
	assert.Equal(t, learner, got)
}
