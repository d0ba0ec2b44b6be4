// Command segment-import loads text segments from an xlsx workbook into the
// database. The first sheet must have a header row followed by rows of
// text_id, item_type and content; segments keep their row order within each
// (text_id, item_type) key, and every key found replaces its stored segments.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/platform/logger"
	"github.com/phrazzld/mastery-api/internal/platform/sqlstore"
	"github.com/phrazzld/mastery-api/internal/store"
	"github.com/xuri/excelize/v2"
)

// segmentKey identifies the segment list of one text.
type segmentKey struct {
	TextID   int64
	ItemType domain.ItemType
}

// segmentBatch is the ordered content of one key.
type segmentBatch struct {
	Key      segmentKey
	Contents []string
}

func main() {
	path := flag.String("file", "", "Path to the xlsx workbook")
	flag.Parse()

	if err := run(context.Background(), *path); err != nil {
		slog.Error("segment import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("-file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	batches, err := readSegments(f)
	if err != nil {
		return err
	}

	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return importSegments(ctx, sqlstore.NewSegmentStore(db, log), batches, log)
}

// readSegments parses the first sheet of the workbook into batches, in the
// order their keys first appear.
func readSegments(r io.Reader) ([]segmentBatch, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var batches []segmentBatch
	index := make(map[segmentKey]int)
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected text_id, item_type and content", i+1)
		}

		textID, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil || textID <= 0 {
			return nil, fmt.Errorf("row %d: invalid text_id %q", i+1, row[0])
		}
		itemType, err := domain.ParseItemType(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		content := strings.TrimSpace(row[2])
		if content == "" {
			return nil, fmt.Errorf("row %d: %w", i+1, domain.ErrEmptyContent)
		}

		key := segmentKey{TextID: textID, ItemType: itemType}
		pos, ok := index[key]
		if !ok {
			pos = len(batches)
			index[key] = pos
			batches = append(batches, segmentBatch{Key: key})
		}
		batches[pos].Contents = append(batches[pos].Contents, content)
	}

	return batches, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// importSegments replaces the stored segments of every batch.
func importSegments(ctx context.Context, segments store.SegmentStore, batches []segmentBatch, log *slog.Logger) error {
	for _, b := range batches {
		if err := segments.ReplaceSegments(ctx, b.Key.TextID, b.Key.ItemType, b.Contents); err != nil {
			return fmt.Errorf("failed to import text %d (%s): %w", b.Key.TextID, b.Key.ItemType, err)
		}
	}
	log.Info("segment import completed", slog.Int("keys", len(batches)))
	return nil
}
