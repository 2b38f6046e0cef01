// Package domain contains core concepts of the interaction engine.
// This file defines direct messages and their derived conversation views.
// Messages are immutable once created; only the read flag moves, false to
// true, and only through the receiver's read action.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message between two users.
type Message struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  time.Time
	Read       bool
}

// PartnerOf returns the other participant from the given user's side.
func (m Message) PartnerOf(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ConversationSummary is the per-partner rollup shown in the chat list.
// It is recomputed from the message log on every query, never stored.
type ConversationSummary struct {
	PartnerID     string
	LastMessageID uuid.UUID
	LastMessage   string
	LastSenderID  string
	LastTimestamp time.Time
	UnreadCount   int
}
