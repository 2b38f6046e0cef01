//go:generate go run go.uber.org/mock/mockgen -source=contracts.go -destination=../mocks/mock_services_contracts.go -package=mocks
package services

import (
	"context"

	"huddle/domain"

	"github.com/google/uuid"
)

// Publisher is the live push path. Fire-and-forget: implementations never
// block and never report delivery.
type Publisher interface {
	DeliverNotification(userID string, n domain.Notification)
	DeliverMessage(receiverID string, m domain.Message)
}

// Presence answers "is this user reachable right now".
type Presence interface {
	Online(userID string) bool
}

// Indexer keeps the full-text message index in step with the store.
type Indexer interface {
	IndexMessage(m domain.Message) error
	Remove(id uuid.UUID) error
	Search(ctx context.Context, userID, query string, limit int) ([]uuid.UUID, error)
}
