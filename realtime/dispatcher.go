package realtime

import (
	"context"
	"log/slog"

	"huddle/domain"
	"huddle/observability"
)

// Push event names, as the client sees them.
const (
	EventNewNotification = "newNotification"
	EventNewMessage      = "newMessage"
)

type envelope struct {
	userID string
	event  Event
}

// Dispatcher fans events out to a user's live connections, best effort.
// All emits flow through one loop, so pushes to a given recipient leave in
// the order Deliver* was called; nothing is ordered across recipients. An
// offline recipient is a silent no-op: the payload stays retrievable
// through the pull endpoints.
//
// Dispatcher is not a message broker: no delivery guarantee, no retries, no
// durability beyond what the store already holds.
type Dispatcher struct {
	log      *slog.Logger
	registry *Registry
	queue    chan envelope
}

func NewDispatcher(log *slog.Logger, registry *Registry, bufferSize int) *Dispatcher {
	return &Dispatcher{
		log:      log,
		registry: registry,
		queue:    make(chan envelope, bufferSize),
	}
}

// DeliverNotification pushes a full notification record to the user's
// private room. Never blocks; a saturated queue drops the push.
func (d *Dispatcher) DeliverNotification(userID string, n domain.Notification) {
	d.enqueue(userID, Event{Type: EventNewNotification, Data: n})
}

// DeliverMessage pushes a new direct message to the receiver's room only;
// the sender already holds the message from its own request.
func (d *Dispatcher) DeliverMessage(receiverID string, m domain.Message) {
	d.enqueue(receiverID, Event{Type: EventNewMessage, Data: m})
}

func (d *Dispatcher) enqueue(userID string, event Event) {
	select {
	case d.queue <- envelope{userID: userID, event: event}:
	default:
		d.log.Warn("dispatch queue full, push lost", "user_id", userID, "event", event.Type)
	}
}

// Run drains the queue until the context is cancelled. Implements the
// supervised Worker contract.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case env := <-d.queue:
			d.emit(env)
		case <-ctx.Done():
			d.log.Debug("context done, stopping dispatcher")
			return nil
		}
	}
}

func (d *Dispatcher) emit(env envelope) {
	sinks := d.registry.SinksFor(env.userID)
	if len(sinks) == 0 {
		observability.PushesSkipped.Inc()
		return
	}
	for _, sink := range sinks {
		sink.Send(env.event)
	}
	observability.PushesDelivered.WithLabelValues(env.event.Type).Inc()
}
