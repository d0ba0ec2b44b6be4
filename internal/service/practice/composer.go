package practice

import (
	"sort"
	"time"

	"github.com/phrazzld/mastery-api/internal/domain"
)

// Composition is an ordered practice list with its pool totals.
type Composition struct {
	Items       []domain.ScheduledItem `json:"words"`
	NewCount    int                    `json:"new_count"`
	ReviewCount int                    `json:"review_count"`
}

type reviewCandidate struct {
	segment domain.Segment
	mastery domain.WordMastery
	order   int
}

// Compose blends due reviews with new items.
//
// Candidates are taken in segmentation order. Items with a mastery record are
// seen; the due ones form the review pool, sorted by next review time, then by
// lower mastery level, then by segmentation order. Items without a record form
// the new pool in segmentation order. Seen items that are not due are left out.
//
// A non-positive limit returns both pools in full, reviews first. A positive
// limit fills from the review pool before the new pool.
func Compose(
	candidates []domain.Segment,
	masteries map[int64]domain.WordMastery,
	now time.Time,
	limit int,
) Composition {
	var review []reviewCandidate
	var fresh []domain.Segment

	for i, seg := range candidates {
		m, seen := masteries[seg.ID]
		if !seen {
			fresh = append(fresh, seg)
			continue
		}
		if m.IsDue(now) {
			review = append(review, reviewCandidate{segment: seg, mastery: m, order: i})
		}
	}

	sort.SliceStable(review, func(i, j int) bool {
		a, b := review[i], review[j]
		if !a.mastery.NextReviewAt.Equal(b.mastery.NextReviewAt) {
			return a.mastery.NextReviewAt.Before(b.mastery.NextReviewAt)
		}
		if a.mastery.MasteryLevel != b.mastery.MasteryLevel {
			return a.mastery.MasteryLevel < b.mastery.MasteryLevel
		}
		return a.order < b.order
	})

	takeReview, takeNew := len(review), len(fresh)
	if limit > 0 {
		takeReview = min(takeReview, limit)
		takeNew = min(takeNew, limit-takeReview)
	}

	items := make([]domain.ScheduledItem, 0, takeReview+takeNew)
	for _, rc := range review[:takeReview] {
		items = append(items, domain.ScheduledItem{
			ID:           rc.segment.ID,
			Content:      rc.segment.Content,
			Type:         rc.segment.Type,
			MasteryLevel: rc.mastery.MasteryLevel,
		})
	}
	for _, seg := range fresh[:takeNew] {
		items = append(items, domain.ScheduledItem{
			ID:      seg.ID,
			Content: seg.Content,
			Type:    seg.Type,
			IsNew:   true,
		})
	}

	return Composition{
		Items:       items,
		NewCount:    takeNew,
		ReviewCount: takeReview,
	}
}
