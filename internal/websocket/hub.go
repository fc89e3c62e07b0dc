package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"research-library-be/internal/pkg/logger"
	"research-library-be/pkg/library"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope is what travels over the Redis channel between instances.
type envelope struct {
	Origin string         `json:"origin"`
	Change library.Change `json:"change"`
}

// Hub pushes library changes to connected clients of the same scope and
// relays them to other instances through Redis.
type Hub struct {
	// Registered clients: scope -> connections (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb     *redis.Client
	channel string

	// origin tags our own Redis messages so we skip them on the way back.
	origin string

	// onRemote runs for changes made by other instances.
	onRemote func(change library.Change)

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, channel string, log logger.ILogger, onRemote func(change library.Change)) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		channel:    channel,
		origin:     uuid.NewString(),
		onRemote:   onRemote,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Scope] = append(h.clients[client.Scope], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"scope": client.Scope})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Scope]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.Scope] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.Scope]) == 0 {
					delete(h.clients, client.Scope)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"scope": client.Scope})
				}
			}
			h.mu.Unlock()
		}
	}
}

func encodeChange(change library.Change) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "library_change",
		"data": change,
	})
	return data
}

// Publish delivers change to local clients of its scope and to other instances.
func (h *Hub) Publish(ctx context.Context, change library.Change) {
	h.deliver(change.Scope().String(), encodeChange(change))

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(envelope{Origin: h.origin, Change: change})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, h.channel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to relay change to Redis", map[string]interface{}{"channel": h.channel, "error": err})
	}
}

func (h *Hub) deliver(scope string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[scope] {
		select {
		case client.Send <- data:
		default:
			// Slow reader: drop rather than block every writer on one socket.
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"scope": scope})
		}
	}
}

// ClientCount returns the number of open connections for scope.
func (h *Hub) ClientCount(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[scope])
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	h.logger.Info("Hub", "Listening for library changes", map[string]interface{}{"channel": h.channel})
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			h.handleRemote([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleRemote(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err})
		return
	}
	if env.Origin == h.origin {
		return
	}

	if h.onRemote != nil {
		h.onRemote(env.Change)
	}
	h.deliver(env.Change.Scope().String(), encodeChange(env.Change))
}
