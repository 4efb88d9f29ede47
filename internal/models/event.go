// Package models defines the notices exchanged between timelines and the
// history view engine.
package models

import "time"

// NoticeType categorizes timeline notices.
type NoticeType string

const (
	// Item notices
	NoticeItemAdded   NoticeType = "item.added"
	NoticeItemRemoved NoticeType = "item.removed"
	NoticeItemResized NoticeType = "item.resized"

	// View notices
	NoticeViewRemoved NoticeType = "view.removed"

	// Timeline notices
	NoticeHistoryCleared NoticeType = "history.cleared"
)

// Notice is emitted synchronously by a timeline whenever its content changes.
// Subscribers see the notice before the mutating call returns, so any repair
// they perform happens before the next query.
type Notice struct {
	// ID is the unique identifier for the notice.
	ID string `json:"id"`

	// Timestamp is when the mutation happened.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the notice.
	Type NoticeType `json:"type"`

	// Timeline names the timeline that changed (live, migrated).
	Timeline string `json:"timeline"`

	// ItemID is the affected item, zero for timeline-wide notices.
	ItemID int64 `json:"item_id,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IsItemNotice reports whether the notice concerns a single item.
func (n *Notice) IsItemNotice() bool {
	switch n.Type {
	case NoticeItemAdded, NoticeItemRemoved, NoticeItemResized, NoticeViewRemoved:
		return true
	default:
		return false
	}
}
