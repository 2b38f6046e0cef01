package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"huddle/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func message(sender, receiver, content string) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}

func Test_Search_ScopedToParticipant(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	mine := message("alice", "bob", "lunch at the harbor")
	theirs := message("clara", "dan", "lunch at noon")
	req.NoError(index.IndexMessage(mine))
	req.NoError(index.IndexMessage(theirs))

	ids, err := index.Search(context.Background(), "alice", "lunch", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{mine.ID}, ids)

	// The receiver finds it too.
	ids, err = index.Search(context.Background(), "bob", "harbor", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{mine.ID}, ids)

	// An outsider finds nothing.
	ids, err = index.Search(context.Background(), "eve", "lunch", 10)
	req.NoError(err)
	req.Empty(ids)
}

func Test_Search_RemovedMessage(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	m := message("alice", "bob", "delete me")
	req.NoError(index.IndexMessage(m))
	req.NoError(index.Remove(m.ID))

	ids, err := index.Search(context.Background(), "alice", "delete", 10)
	req.NoError(err)
	req.Empty(ids)
}
