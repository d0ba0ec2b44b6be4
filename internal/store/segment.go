package store

import (
	"context"

	"github.com/phrazzld/mastery-api/internal/domain"
)

// SegmentStore is the read model of the segmentation collaborator.
type SegmentStore interface {
	// GetSegments returns the items of a text in segmentation order. The order is
	// stable for as long as the segments are not replaced.
	GetSegments(ctx context.Context, textID int64, itemType domain.ItemType) ([]domain.Segment, error)

	// ReplaceSegments swaps the items of (textID, itemType) for contents, in order.
	ReplaceSegments(ctx context.Context, textID int64, itemType domain.ItemType, contents []string) error
}
