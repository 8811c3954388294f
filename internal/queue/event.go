// Package queue defines message payloads exchanged over the message broker.
package queue

// NoteUpdatedEvent is published after a note update succeeds. It carries
// enough for downstream consumers to build an audit trail without querying
// the primary database.
type NoteUpdatedEvent struct {
	NoteID    uint64 `json:"note_id"`
	UserID    uint64 `json:"user_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updated_at"`
}
