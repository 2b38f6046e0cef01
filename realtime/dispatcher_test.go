package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"huddle/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func startDispatcher(t *testing.T, registry *Registry) *Dispatcher {
	t.Helper()
	dispatcher := NewDispatcher(slog.Default(), registry, 64)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = dispatcher.Run(ctx) }()
	return dispatcher
}

func Test_Deliver_PerRecipient_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &recordingSink{}
	registry.Register(uuid.New(), "alice", sink)
	dispatcher := startDispatcher(t, registry)

	for i := 0; i < 10; i++ {
		dispatcher.DeliverMessage("alice", domain.Message{
			ID:      uuid.New(),
			Content: fmt.Sprintf("msg-%d", i),
		})
	}

	req.Eventually(func() bool { return len(sink.snapshot()) == 10 },
		time.Second, 5*time.Millisecond)

	// Pushes leave in Deliver* invocation order for a single recipient.
	for i, event := range sink.snapshot() {
		req.Equal(EventNewMessage, event.Type)
		req.Equal(fmt.Sprintf("msg-%d", i), event.Data.(domain.Message).Content)
	}
}

func Test_Deliver_Offline_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	online := &recordingSink{}
	registry.Register(uuid.New(), "bob", online)
	dispatcher := startDispatcher(t, registry)

	// Nobody is live for "ghost": the push vanishes without error.
	dispatcher.DeliverNotification("ghost", domain.Notification{ID: uuid.New()})
	dispatcher.DeliverNotification("bob", domain.Notification{ID: uuid.New()})

	req.Eventually(func() bool { return len(online.snapshot()) == 1 },
		time.Second, 5*time.Millisecond)
	req.Equal(EventNewNotification, online.snapshot()[0].Type)
}

func Test_Deliver_Fanout_AllConnections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	phone, laptop := &recordingSink{}, &recordingSink{}
	registry.Register(uuid.New(), "alice", phone)
	registry.Register(uuid.New(), "alice", laptop)
	dispatcher := startDispatcher(t, registry)

	dispatcher.DeliverMessage("alice", domain.Message{ID: uuid.New(), Content: "hi"})

	req.Eventually(func() bool {
		return len(phone.snapshot()) == 1 && len(laptop.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
}
