package models

import (
	"strings"
	"time"
)

// MessageKind distinguishes chat messages from service lines.
type MessageKind string

const (
	MessageKindText    MessageKind = "text"
	MessageKindService MessageKind = "service"
	MessageKindPhoto   MessageKind = "photo"
)

// History names the timeline a message belongs to.
type History string

const (
	HistoryLive     History = "live"
	HistoryMigrated History = "migrated"
)

// Message is a stored chat message.
type Message struct {
	// ID is the store-assigned sequence number, also the timeline item id.
	ID int64 `json:"id"`

	// UID is a globally unique identifier.
	UID string `json:"uid"`

	// History is the timeline the message belongs to.
	History History `json:"history"`

	// Kind is the message kind.
	Kind MessageKind `json:"kind"`

	// Author is the display name of the sender.
	Author string `json:"author"`

	// Body is the plain text.
	Body string `json:"body"`

	// Link is an optional URL attached to the message.
	Link string `json:"link,omitempty"`

	// GroupID ties album members together; zero when ungrouped.
	GroupID int64 `json:"group_id,omitempty"`

	// CanForward and CanDelete are per-message permissions.
	CanForward bool `json:"can_forward"`
	CanDelete  bool `json:"can_delete"`

	// MigrateMarker flags the message duplicated across the history junction.
	MigrateMarker bool `json:"migrate_marker,omitempty"`

	// CreatedAt is when the message was sent.
	CreatedAt time.Time `json:"created_at"`
}

// IsService reports whether the message is a service line.
func (m *Message) IsService() bool {
	return m.Kind == MessageKindService
}

// Validate checks the fields the store requires.
func (m *Message) Validate() error {
	validation := &ValidationErrors{}
	if m.History != HistoryLive && m.History != HistoryMigrated {
		validation.Add("history", ErrInvalidHistory)
	}
	switch m.Kind {
	case MessageKindText, MessageKindService, MessageKindPhoto:
	default:
		validation.Add("kind", ErrInvalidKind)
	}
	if strings.TrimSpace(m.Author) == "" && !m.IsService() {
		validation.Add("author", ErrMissingAuthor)
	}
	return validation.Err()
}
