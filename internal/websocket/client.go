package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// conn is the subset of *websocket.Conn the client uses; tests substitute a
// mock.
type conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

type Client struct {
	id     string
	hub    *Hub
	conn   conn
	send   chan []byte
	userID uint
}

func NewClient(hub *Hub, c *websocket.Conn, userID uint) *Client {
	return &Client{
		id:     uuid.New().String(),
		hub:    hub,
		conn:   c,
		send:   make(chan []byte, 256),
		userID: userID,
	}
}

func (c *Client) UserID() uint {
	return c.userID
}

// ReadPump reads inbound frames until the connection drops, then leaves
// the room. Runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "clientID", c.id, "userID", c.userID, "error", err)
			}
			return
		}

		var in Inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			c.sendError("INVALID_FRAME", "invalid frame format")
			continue
		}

		switch in.Action {
		case actionMessage:
			if err := c.hub.PublishMessage(in.Room, c.userID, in.Message); err != nil {
				slog.Warn("publish failed", "clientID", c.id, "userID", c.userID, "error", err)
				c.sendError("PUBLISH_FAILED", "could not publish message")
			}
		default:
			c.sendError("UNKNOWN_ACTION", "unknown action "+in.Action)
		}
	}
}

// WritePump drains the send buffer onto the wire and keeps the connection
// alive with pings. Runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend enqueues without blocking; a full buffer means the client is too
// slow and the hub will drop it.
func (c *Client) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(code, message string) {
	data, err := newEvent(EventError, errorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.trySend(data)
}
