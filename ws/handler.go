// Package ws is the websocket edge of the realtime engine: it
// authenticates the handshake, registers the connection, and runs the
// read/write pumps. Everything behind it speaks realtime.Event.
package ws

import (
	"log/slog"
	"net/http"

	"huddle/auth"
	"huddle/realtime"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the fronting proxy.
		return true
	},
}

// Handler upgrades authenticated requests into registered connections.
type Handler struct {
	log        *slog.Logger
	registry   *realtime.Registry
	verifier   auth.Verifier
	sendBuffer int
}

func NewHandler(log *slog.Logger, registry *realtime.Registry, verifier auth.Verifier, sendBuffer int) *Handler {
	return &Handler{log: log, registry: registry, verifier: verifier, sendBuffer: sendBuffer}
}

// ServeHTTP performs the connect handshake. The bearer token travels in
// the "token" query parameter or the Authorization header; a token that
// fails verification closes the attempt before the upgrade, so no
// anonymous or partially registered connection ever exists.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	userID, err := h.verifier.Verify(token)
	if err != nil {
		h.log.Warn("handshake rejected", "from", r.RemoteAddr, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade failed", "user_id", userID, "error", err)
		return
	}

	connID := uuid.New()
	client := &Client{
		id:       connID,
		conn:     conn,
		send:     make(chan []byte, h.sendBuffer),
		registry: h.registry,
		log:      h.log.With("connection_id", connID.String(), "user_id", userID),
	}
	// A reconnecting client re-announces itself with a fresh token; the
	// binding is overwritten, never merged.
	client.rebind = func(raw string) error {
		rebindUserID, err := h.verifier.Verify(raw)
		if err != nil {
			return err
		}
		h.registry.Rebind(client.id, rebindUserID)
		return nil
	}

	h.registry.Register(client.id, userID, client)
	h.log.Info("connection registered", "connection_id", client.id, "user_id", userID)

	go client.writePump()
	go client.readPump()
}
