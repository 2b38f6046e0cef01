package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is a piece of shared content reactions and comments attach to.
// Likes and Dislikes are tallies derived from the reaction rows at query
// time; they are never persisted on the post itself.
type Post struct {
	ID        uuid.UUID
	AuthorID  string
	Content   string
	CreatedAt time.Time
	Likes     int
	Dislikes  int
}

// Comment belongs to exactly one post.
type Comment struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
