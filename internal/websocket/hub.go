package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"wconnect-service/internal/models"
	"wconnect-service/internal/services"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisEventChannel carries events between hub instances. Each instance
// tags what it publishes with its own id and ignores its echoes.
const redisEventChannel = "wconnect:events"

// envelope is one fan-out unit: an encoded event addressed to a user's
// room, or broadcast to everyone except the sender.
type envelope struct {
	Origin  string          `json:"origin"`
	Room    uint            `json:"room,omitempty"`
	Global  bool            `json:"global,omitempty"`
	Exclude uint            `json:"exclude,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Hub maintains per-user rooms and fans realtime events out to them.
// Delivery is best-effort: a client that cannot keep up is dropped and
// will recover state from its next history fetch.
type Hub struct {
	clients map[*Client]bool
	rooms   map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	publish    chan envelope

	// Optional cross-instance bridge and presence tracking.
	redis    *redis.Client
	presence presenceTracker

	id     string
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// presenceTracker is the subset of services.RedisService the hub needs;
// tests substitute a recorder.
type presenceTracker interface {
	SetUserOnline(ctx context.Context, userID uint) error
	SetUserOffline(ctx context.Context, userID uint) error
}

func NewHub(redisClient *redis.Client, presence *services.RedisService) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	hub := &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan envelope, 256),
		redis:      redisClient,
		id:         uuid.New().String(),
		ctx:        ctx,
		cancel:     cancel,
	}
	// A typed nil would make the interface non-nil.
	if presence != nil {
		hub.presence = presence
	}
	return hub
}

func (h *Hub) Run() {
	if h.redis != nil {
		go h.redisListener()
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case env := <-h.publish:
			h.deliverLocal(env)
			if h.redis != nil {
				go h.publishRedis(env)
			}

		case <-h.ctx.Done():
			slog.Info("realtime hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// Join subscribes a connected client to its own room. Room membership is
// mutated only by the owning connection: join on connect, leave on
// disconnect.
func (h *Hub) Join(c *Client) {
	select {
	case h.register <- c:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// PublishMessage fans a persisted message out to the recipient's room, or
// to everyone except the sender when room is GLOBAL.
func (h *Hub) PublishMessage(room string, senderID uint, message json.RawMessage) error {
	data, err := newEvent(EventNewMessage, message)
	if err != nil {
		return err
	}

	if room == GlobalRoom {
		return h.enqueue(envelope{Origin: h.id, Global: true, Exclude: senderID, Data: data})
	}

	target, err := strconv.ParseUint(room, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room %q: %w", room, err)
	}
	return h.enqueue(envelope{Origin: h.id, Room: uint(target), Data: data})
}

// PublishReadReceipt pushes a read receipt to the original sender's room.
func (h *Hub) PublishReadReceipt(userID uint, receipt models.ReadReceipt) error {
	data, err := newEvent(EventReadReceipt, receipt)
	if err != nil {
		return err
	}
	return h.enqueue(envelope{Origin: h.id, Room: userID, Data: data})
}

func (h *Hub) enqueue(env envelope) error {
	select {
	case h.publish <- env:
		return nil
	case <-h.ctx.Done():
		return fmt.Errorf("hub is shut down")
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	if h.rooms[c.userID] == nil {
		h.rooms[c.userID] = make(map[*Client]bool)
	}
	h.rooms[c.userID][c] = true
	h.mu.Unlock()

	slog.Info("client joined room", "clientID", c.id, "userID", c.userID)

	if h.presence != nil {
		if err := h.presence.SetUserOnline(h.ctx, c.userID); err != nil {
			slog.Error("failed to set user online", "userID", c.userID, "error", err)
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	lastSession := false
	if room := h.rooms[c.userID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.userID)
			lastSession = true
		}
	}
	h.mu.Unlock()

	close(c.send)
	slog.Info("client left room", "clientID", c.id, "userID", c.userID)

	// The user stays online while any other session is still connected.
	if h.presence != nil && lastSession {
		if err := h.presence.SetUserOffline(h.ctx, c.userID); err != nil {
			slog.Error("failed to set user offline", "userID", c.userID, "error", err)
		}
	}
}

// deliverLocal writes the event to every matching client on this instance.
// A client with a full send buffer is dropped rather than blocking the
// rest of the fan-out.
func (h *Hub) deliverLocal(env envelope) {
	var dropped []*Client

	h.mu.RLock()
	if env.Global {
		for c := range h.clients {
			if c.userID == env.Exclude {
				continue
			}
			if !c.trySend(env.Data) {
				dropped = append(dropped, c)
			}
		}
	} else {
		for c := range h.rooms[env.Room] {
			if !c.trySend(env.Data) {
				dropped = append(dropped, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range dropped {
		slog.Warn("dropping slow client", "clientID", c.id, "userID", c.userID)
		h.removeClient(c)
	}
}

func (h *Hub) publishRedis(env envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		slog.Error("failed to marshal realtime envelope", "error", err)
		return
	}
	if err := h.redis.Publish(h.ctx, redisEventChannel, payload).Err(); err != nil {
		slog.Error("redis publish failed", "error", err)
	}
}

// redisListener distributes events published by other hub instances to the
// clients connected to this one.
func (h *Hub) redisListener() {
	pubsub := h.redis.Subscribe(h.ctx, redisEventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Error("failed to unmarshal realtime envelope", "error", err)
				continue
			}
			if env.Origin == h.id {
				continue
			}
			h.deliverLocal(env)

		case <-h.ctx.Done():
			return
		}
	}
}
