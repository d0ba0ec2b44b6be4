package domain

import (
	"fmt"
	"strings"
)

// ItemType classifies a practice item extracted from a text.
type ItemType string

// Supported item types.
const (
	ItemTypeWord     ItemType = "word"
	ItemTypePhrase   ItemType = "phrase"
	ItemTypeSentence ItemType = "sentence"
)

// ParseItemType converts a raw string into an ItemType.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseItemType(raw string) (ItemType, error) {
	switch t := ItemType(strings.ToLower(strings.TrimSpace(raw))); t {
	case ItemTypeWord, ItemTypePhrase, ItemTypeSentence:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidItemType, raw)
	}
}

// Valid reports whether t is one of the supported item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeWord, ItemTypePhrase, ItemTypeSentence:
		return true
	}
	return false
}

// Segment is one ordered item produced by the segmentation collaborator for a text.
type Segment struct {
	ID      int64    `json:"id" db:"id"`
	TextID  int64    `json:"text_id" db:"text_id"`
	Type    ItemType `json:"type" db:"item_type"`
	Content string   `json:"content" db:"content"`
	Order   int      `json:"order" db:"order_index"`
}

// ScheduledItem is a single entry of a composed practice session.
type ScheduledItem struct {
	ID           int64    `json:"id"`
	Content      string   `json:"content"`
	Type         ItemType `json:"type"`
	MasteryLevel int      `json:"mastery_level"`
	IsNew        bool     `json:"is_new"`
}

// NormalizeText returns the canonical form used to key ledger entries and
// mastered flags: surrounding whitespace removed, lower-cased.
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
