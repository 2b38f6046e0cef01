package services

import (
	"context"
	"sync"
	"testing"

	"huddle/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakePublisher records pushes instead of emitting them.
type fakePublisher struct {
	mu            sync.Mutex
	notifications []domain.Notification
	messages      []domain.Message
	recipients    []string
}

func (p *fakePublisher) DeliverNotification(userID string, n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
	p.recipients = append(p.recipients, userID)
}

func (p *fakePublisher) DeliverMessage(receiverID string, m domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, m)
	p.recipients = append(p.recipients, receiverID)
}

type fakePresence struct {
	online map[string]bool
}

func (p fakePresence) Online(userID string) bool { return p.online[userID] }

// fakeIndexer tracks index membership without a real index.
type fakeIndexer struct {
	mu      sync.Mutex
	indexed map[uuid.UUID]domain.Message
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: make(map[uuid.UUID]domain.Message)}
}

func (i *fakeIndexer) IndexMessage(m domain.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed[m.ID] = m
	return nil
}

func (i *fakeIndexer) Remove(id uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.indexed, id)
	return nil
}

func (i *fakeIndexer) Search(_ context.Context, userID, _ string, _ int) ([]uuid.UUID, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var ids []uuid.UUID
	for id, m := range i.indexed {
		if m.SenderID == userID || m.ReceiverID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
