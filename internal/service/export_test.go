package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/mocks"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportMasteries(t *testing.T) {
	t.Parallel()

	learner := uuid.New()
	next := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	last := next.Add(-72 * time.Hour)
	var requestedType domain.ItemType

	masteries := &mocks.MockWordMasteryStore{
		ListAllFn: func(_ context.Context, _ uuid.UUID, itemType domain.ItemType) ([]domain.WordMastery, error) {
			requestedType = itemType
			return []domain.WordMastery{
				{LearnerID: learner, ItemID: 1, Content: "river", ItemType: domain.ItemTypeWord,
					MasteryLevel: 3, EaseFactor: 2.56, IntervalDays: 15, NextReviewAt: next, LastReviewAt: &last, ReviewCount: 3},
				{LearnerID: learner, ItemID: 2, Content: "stone", ItemType: domain.ItemTypeWord,
					MasteryLevel: 0, EaseFactor: 2.3, IntervalDays: 1, NextReviewAt: next, ReviewCount: 1},
			}, nil
		},
	}
	svc := service.NewExportService(masteries, nil)

	data, err := svc.ExportMasteries(context.Background(), learner, domain.ItemTypeWord)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeWord, requestedType)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(service.MasterySheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per record")
	assert.Equal(t, "Item ID", rows[0][0])
	assert.Equal(t, "Reviews", rows[0][8])
	assert.Equal(t, []string{"1", "river", "word", "3", "2.56", "15", "2025-04-01T08:00:00Z", "2025-03-29T08:00:00Z", "3"}, rows[1])
	assert.Equal(t, "stone", rows[2][1])
	assert.Equal(t, "", rows[2][7])
}

func TestExportService_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	svc := service.NewExportService(&mocks.MockWordMasteryStore{}, nil)
	_, err := svc.ExportMasteries(ctx, uuid.New(), "paragraph")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	failing := &mocks.MockWordMasteryStore{
		ListAllFn: func(context.Context, uuid.UUID, domain.ItemType) ([]domain.WordMastery, error) {
			return nil, errors.New("query failed")
		},
	}
	_, err = service.NewExportService(failing, nil).ExportMasteries(ctx, uuid.New(), "")
	assert.ErrorIs(t, err, service.ErrStorageFailure)
}
