// Package chat defines the core domain types shared by the store, the
// timeline engine, and the TUI.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a single room message. Messages are immutable once stored;
// edits are represented as replacement messages with a fresh item ID but
// the same event ID.
type Message struct {
	// ID is the stable timeline item identifier.
	ID string
	// EventID identifies the underlying event for permalinks and read
	// receipts. Distinct from ID so local echoes can be reconciled.
	EventID string
	// Seq is the store-assigned monotonic sequence, used as the
	// pagination cursor. Zero until the message has been appended.
	Seq int64

	RoomID string
	Sender string
	Body   string
	Time   time.Time
}

// NewMessage builds a message ready for appending to a room.
func NewMessage(roomID, sender, body string) Message {
	now := time.Now().UTC()
	return Message{
		ID:      uuid.NewString(),
		EventID: "$" + uuid.NewString(),
		RoomID:  strings.TrimSpace(roomID),
		Sender:  strings.TrimSpace(sender),
		Body:    body,
		Time:    now,
	}
}

// Valid reports whether the message carries the fields the store requires.
func (m Message) Valid() bool {
	return m.ID != "" && m.EventID != "" && m.RoomID != "" && m.Sender != ""
}
