package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReactionType is one of the two selectable reaction kinds. The zero value
// stands for "no reaction" and is what a toggle-off resolves to.
type ReactionType string

const (
	ReactionNone    ReactionType = ""
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// Valid reports whether t is a selectable kind (none is not selectable).
func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// Reaction is the single row a user may hold against a piece of content.
// At most one exists per (UserID, ContentID); re-applying the current type
// deletes it, applying the other type mutates it in place.
type Reaction struct {
	ID        uuid.UUID
	UserID    string
	ContentID uuid.UUID
	Type      ReactionType
	CreatedAt time.Time
}
