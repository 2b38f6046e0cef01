package ws

import (
	"log/slog"
	"time"

	"huddle/observability"
	"huddle/realtime"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024
)

// Client is one live websocket connection. It is the concrete
// realtime.Sink the registry holds for this connection: the dispatcher
// hands it events, the write pump hands them to the wire.
type Client struct {
	id       uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	registry *realtime.Registry
	rebind   func(token string) error
	log      *slog.Logger
}

// Send implements realtime.Sink. Never blocks: a connection that cannot
// keep up loses the frame, it does not stall the dispatch loop.
func (c *Client) Send(e realtime.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		c.log.Error("failed to marshal push event", "event", e.Type, "error", err)
		return
	}
	select {
	case c.send <- payload:
	default:
		observability.FramesDropped.Inc()
		c.log.Warn("send buffer full, frame dropped", "event", e.Type)
	}
}

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinPayload struct {
	Token string `json:"token"`
}

// readPump pumps inbound frames off the websocket until the connection
// dies. Whatever the teardown path, the deferred unregister runs: that is
// the cancellation signal of this connection, nothing else propagates.
func (c *Client) readPump() {
	defer func() {
		c.registry.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("unexpected close", "error", err)
			}
			return
		}
		c.handleFrame(payload)
	}
}

func (c *Client) handleFrame(payload []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		c.log.Warn("unreadable frame", "error", err)
		return
	}
	switch frame.Type {
	case "join_user":
		var join joinPayload
		if err := json.Unmarshal(frame.Data, &join); err != nil {
			c.log.Warn("unreadable join payload", "error", err)
			return
		}
		if err := c.rebind(join.Token); err != nil {
			c.log.Warn("join rejected", "error", err)
		}
	default:
		c.log.Warn("unknown frame type", "type", frame.Type)
	}
}

// writePump pumps queued frames onto the wire and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("write failed, closing", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
