// Package realtime tracks which users are reachable over a live connection
// and fans application events out to them. The registry is the single piece
// of shared mutable state every connection touches; all operations on it are
// O(1) map work under one lock and never perform I/O.
package realtime

import (
	"sync"

	"huddle/observability"

	"github.com/google/uuid"
)

// Event is one outbound push frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Sink is the write side of one live connection. Send must not block: a
// saturated connection drops the frame rather than stalling the dispatch
// loop.
type Sink interface {
	Send(e Event)
}

// Registry maps users to their live connections and back. A user may hold
// zero, one or many concurrent connections (multi-device); a connection
// always belongs to exactly one user. The forward map (users) and the
// inverse map (connections) are mutated together under one lock so neither
// can hold an entry the other lacks.
type Registry struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]string          // connection -> user
	users       map[string]map[uuid.UUID]Sink // user -> connection -> sink
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[uuid.UUID]string),
		users:       make(map[string]map[uuid.UUID]Sink),
	}
}

// Register binds a connection to a user and joins it to the user's private
// delivery room. Idempotent: re-registering an existing connection under
// the same user replaces its sink.
func (r *Registry) Register(connID uuid.UUID, userID string, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.connections[connID]; ok && previous != userID {
		r.detach(connID, previous)
	}
	if _, known := r.connections[connID]; !known {
		observability.ActiveConnections.Inc()
	}
	r.connections[connID] = userID
	if r.users[userID] == nil {
		r.users[userID] = make(map[uuid.UUID]Sink)
	}
	r.users[userID][connID] = sink
}

// Rebind moves a live connection to a new identity, keeping its sink. Used
// by the join announcement after a reconnect: the previous binding is
// overwritten, never merged, so a connection cannot linger under a stale
// identity. Unknown connections are ignored.
func (r *Registry) Rebind(connID uuid.UUID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.connections[connID]
	if !ok {
		return
	}
	if previous == userID {
		return
	}
	sink := r.users[previous][connID]
	r.detach(connID, previous)
	r.connections[connID] = userID
	if r.users[userID] == nil {
		r.users[userID] = make(map[uuid.UUID]Sink)
	}
	r.users[userID][connID] = sink
}

// Unregister removes a connection from both maps. Safe to call on every
// teardown path, including repeats.
func (r *Registry) Unregister(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.connections[connID]
	if !ok {
		return
	}
	r.detach(connID, userID)
	delete(r.connections, connID)
	observability.ActiveConnections.Dec()
}

// detach removes the forward entry only. Callers hold the lock and settle
// the inverse map themselves.
func (r *Registry) detach(connID uuid.UUID, userID string) {
	if members, ok := r.users[userID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.users, userID)
		}
	}
}

// SinksFor returns the sinks of every live connection of the user.
// Empty for an offline or unknown user, never an error.
func (r *Registry) SinksFor(userID string) []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.users[userID]
	if len(members) == 0 {
		return nil
	}
	sinks := make([]Sink, 0, len(members))
	for _, sink := range members {
		sinks = append(sinks, sink)
	}
	return sinks
}

// LiveConnectionsOf returns the connection ids of the user's live set.
func (r *Registry) LiveConnectionsOf(userID string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.users[userID]
	ids := make([]uuid.UUID, 0, len(members))
	for connID := range members {
		ids = append(ids, connID)
	}
	return ids
}

// Online reports presence: true iff the user has at least one live
// connection.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}
