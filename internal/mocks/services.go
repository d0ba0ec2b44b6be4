package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/service"
)

// MockLedgerService implements service.LedgerService for testing.
type MockLedgerService struct {
	RecordMistakeFn func(
		ctx context.Context,
		learnerID uuid.UUID,
		text string,
		textID int64,
		itemType domain.ItemType,
	) (*domain.MistakeEntry, error)
	ClearIfMasteredFn func(ctx context.Context, learnerID uuid.UUID, text string) error
	IsTrackedFn       func(ctx context.Context, learnerID uuid.UUID, text string) (bool, error)
	TrackedAmongFn    func(ctx context.Context, learnerID uuid.UUID, texts []string) (map[string]bool, error)
	ListTrackedFn     func(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]domain.MistakeEntry, error)
	RemoveFn          func(ctx context.Context, learnerID uuid.UUID, text string) error
}

var _ service.LedgerService = (*MockLedgerService)(nil)

// RecordMistake implements service.LedgerService.
func (m *MockLedgerService) RecordMistake(
	ctx context.Context,
	learnerID uuid.UUID,
	text string,
	textID int64,
	itemType domain.ItemType,
) (*domain.MistakeEntry, error) {
	if m.RecordMistakeFn != nil {
		return m.RecordMistakeFn(ctx, learnerID, text, textID, itemType)
	}
	return domain.NewMistakeEntry(learnerID, domain.NormalizeText(text), itemType, textID, time.Now())
}

// ClearIfMastered implements service.LedgerService.
func (m *MockLedgerService) ClearIfMastered(ctx context.Context, learnerID uuid.UUID, text string) error {
	if m.ClearIfMasteredFn != nil {
		return m.ClearIfMasteredFn(ctx, learnerID, text)
	}
	return nil
}

// IsTracked implements service.LedgerService.
func (m *MockLedgerService) IsTracked(ctx context.Context, learnerID uuid.UUID, text string) (bool, error) {
	if m.IsTrackedFn != nil {
		return m.IsTrackedFn(ctx, learnerID, text)
	}
	return false, nil
}

// TrackedAmong implements service.LedgerService.
func (m *MockLedgerService) TrackedAmong(
	ctx context.Context,
	learnerID uuid.UUID,
	texts []string,
) (map[string]bool, error) {
	if m.TrackedAmongFn != nil {
		return m.TrackedAmongFn(ctx, learnerID, texts)
	}
	return map[string]bool{}, nil
}

// ListTracked implements service.LedgerService.
func (m *MockLedgerService) ListTracked(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]domain.MistakeEntry, error) {
	if m.ListTrackedFn != nil {
		return m.ListTrackedFn(ctx, learnerID, itemType)
	}
	return []domain.MistakeEntry{}, nil
}

// Remove implements service.LedgerService.
func (m *MockLedgerService) Remove(ctx context.Context, learnerID uuid.UUID, text string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, learnerID, text)
	}
	return nil
}

// WithTx implements service.LedgerService. The mock ignores the transaction.
func (m *MockLedgerService) WithTx(_ *sqlx.Tx) service.LedgerService {
	return m
}

// MockProgressService implements service.ProgressService for testing.
type MockProgressService struct {
	SaveProgressFn func(ctx context.Context, progress *domain.SessionProgress) error
	GetProgressFn  func(
		ctx context.Context,
		learnerID uuid.UUID,
		textID int64,
		itemType domain.ItemType,
	) (*domain.SessionProgress, error)
	ClearProgressFn func(ctx context.Context, learnerID uuid.UUID, textID int64, itemType domain.ItemType) error
	SweepStaleFn    func(ctx context.Context) (int64, error)

	// ValidityWindow is returned by Validity; zero means the domain default.
	ValidityWindow time.Duration
}

var _ service.ProgressService = (*MockProgressService)(nil)

// SaveProgress implements service.ProgressService.
func (m *MockProgressService) SaveProgress(ctx context.Context, progress *domain.SessionProgress) error {
	if m.SaveProgressFn != nil {
		return m.SaveProgressFn(ctx, progress)
	}
	return nil
}

// GetProgress implements service.ProgressService.
func (m *MockProgressService) GetProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) (*domain.SessionProgress, error) {
	if m.GetProgressFn != nil {
		return m.GetProgressFn(ctx, learnerID, textID, itemType)
	}
	return nil, service.ErrProgressNotFound
}

// ClearProgress implements service.ProgressService.
func (m *MockProgressService) ClearProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	textID int64,
	itemType domain.ItemType,
) error {
	if m.ClearProgressFn != nil {
		return m.ClearProgressFn(ctx, learnerID, textID, itemType)
	}
	return nil
}

// SweepStale implements service.ProgressService.
func (m *MockProgressService) SweepStale(ctx context.Context) (int64, error) {
	if m.SweepStaleFn != nil {
		return m.SweepStaleFn(ctx)
	}
	return 0, nil
}

// Validity implements service.ProgressService.
func (m *MockProgressService) Validity() time.Duration {
	if m.ValidityWindow > 0 {
		return m.ValidityWindow
	}
	return domain.DefaultProgressValidity
}

// MockHistoryService implements service.HistoryService for testing.
type MockHistoryService struct {
	SaveHistoryFn func(ctx context.Context, history *domain.PracticeHistory) error
	ListHistoryFn func(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.PracticeHistory, error)
	StatisticsFn  func(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error)
}

var _ service.HistoryService = (*MockHistoryService)(nil)

// SaveHistory implements service.HistoryService.
func (m *MockHistoryService) SaveHistory(ctx context.Context, history *domain.PracticeHistory) error {
	if m.SaveHistoryFn != nil {
		return m.SaveHistoryFn(ctx, history)
	}
	return nil
}

// ListHistory implements service.HistoryService.
func (m *MockHistoryService) ListHistory(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]domain.PracticeHistory, error) {
	if m.ListHistoryFn != nil {
		return m.ListHistoryFn(ctx, learnerID, limit)
	}
	return []domain.PracticeHistory{}, nil
}

// Statistics implements service.HistoryService.
func (m *MockHistoryService) Statistics(ctx context.Context, learnerID uuid.UUID) (*domain.PracticeStatistics, error) {
	if m.StatisticsFn != nil {
		return m.StatisticsFn(ctx, learnerID)
	}
	return &domain.PracticeStatistics{}, nil
}

// MockExportService implements service.ExportService for testing.
type MockExportService struct {
	ExportMasteriesFn func(ctx context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]byte, error)
}

var _ service.ExportService = (*MockExportService)(nil)

// ExportMasteries implements service.ExportService.
func (m *MockExportService) ExportMasteries(
	ctx context.Context,
	learnerID uuid.UUID,
	itemType domain.ItemType,
) ([]byte, error) {
	if m.ExportMasteriesFn != nil {
		return m.ExportMasteriesFn(ctx, learnerID, itemType)
	}
	return []byte{}, nil
}
