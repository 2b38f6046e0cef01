package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationReaction NotificationType = "reaction"
	NotificationComment  NotificationType = "comment"
)

// Notification is produced by reaction and comment events and delivered
// best-effort over the live push path; it stays retrievable by pull either
// way. The read flag only moves false to true.
type Notification struct {
	ID        uuid.UUID
	UserID    string
	Type      NotificationType
	Message   string
	Data      map[string]string
	Read      bool
	CreatedAt time.Time
}
