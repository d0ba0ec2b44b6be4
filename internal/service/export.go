package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/store"
	"github.com/xuri/excelize/v2"
)

// MasterySheetName is the sheet written by ExportMasteries.
const MasterySheetName = "Masteries"

// MasterySheetHeader is the first row of the export.
var MasterySheetHeader = []interface{}{
	"Item ID", "Content", "Type", "Level", "Ease", "Interval", "Next Review", "Last Review", "Reviews",
}

// ExportService renders mastery records as a spreadsheet.
type ExportService interface {
	// ExportMasteries returns an xlsx workbook with one row per mastery record of
	// the learner, restricted to itemType when it is not empty.
	ExportMasteries(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]byte, error)
}

type exportServiceImpl struct {
	masteries store.WordMasteryStore
	logger    *slog.Logger
}

var _ ExportService = (*exportServiceImpl)(nil)

// NewExportService creates an ExportService.
func NewExportService(masteries store.WordMasteryStore, logger *slog.Logger) ExportService {
	if masteries == nil {
		panic("masteries cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &exportServiceImpl{
		masteries: masteries,
		logger:    logger.With(slog.String("component", "export_service")),
	}
}

func (s *exportServiceImpl) ExportMasteries(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if itemType != "" && !itemType.Valid() {
		return nil, NewServiceError("export_masteries", "unknown item type", ErrInvalidInput)
	}

	records, err := s.masteries.ListAll(ctx, learnerID, itemType)
	if err != nil {
		return nil, NewServiceError("export_masteries", "failed to list masteries", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("failed to close workbook", slog.Any("error", err))
		}
	}()

	if err := f.SetSheetName("Sheet1", MasterySheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	header := MasterySheetHeader
	if err := f.SetSheetRow(MasterySheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, m := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		lastReview := ""
		if m.LastReviewAt != nil {
			lastReview = m.LastReviewAt.UTC().Format(time.RFC3339)
		}
		row := []interface{}{
			m.ItemID,
			m.Content,
			string(m.ItemType),
			m.MasteryLevel,
			m.EaseFactor,
			m.IntervalDays,
			m.NextReviewAt.UTC().Format(time.RFC3339),
			lastReview,
			m.ReviewCount,
		}
		if err := f.SetSheetRow(MasterySheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	log.Debug("masteries exported",
		slog.String("learner_id", learnerID.String()),
		slog.Int("rows", len(records)))
	return buf.Bytes(), nil
}
