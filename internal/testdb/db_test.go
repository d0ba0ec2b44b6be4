package testdb

import (
	"context"
	"testing"

	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_IsolatedAndMigrated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := Open(t)
	second := Open(t)

	segments := sqlstore.NewSegmentStore(first, nil)
	require.NoError(t, segments.ReplaceSegments(ctx, 1, domain.ItemTypeWord, []string{"un"}))

	got, err := sqlstore.NewSegmentStore(second, nil).GetSegments(ctx, 1, domain.ItemTypeWord)
	require.NoError(t, err)
	assert.Empty(t, got, "databases must not share rows")
}

func TestWithSearchPath(t *testing.T) {
	t.Parallel()

	got, err := withSearchPath("postgres://a:b@db:5432/mastery?sslmode=disable", "test_x")
	require.NoError(t, err)
	assert.Equal(t, "postgres://a:b@db:5432/mastery?search_path=test_x&sslmode=disable", got)
}
