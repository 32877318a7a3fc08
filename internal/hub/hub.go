// Package hub fans the current state out to all live display connections.
package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/showdeck/showdeck/internal/logger"
)

// Message type constants for the push envelope
const (
	MessagePresentation = "presentation"
	MessagePlayer       = "player"
)

// ClientConn is the narrow connection surface the hub writes to.
// *websocket.Conn satisfies it.
type ClientConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Envelope wraps every push so clients can demux presentation and player
// state on one connection.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// client pairs a connection with its write lock. gorilla/websocket allows at
// most one concurrent writer per connection, and broadcasts arrive from both
// HTTP handlers and the player's listener goroutine.
type client struct {
	mu   sync.Mutex
	conn ClientConn
}

func (c *client) write(data []byte, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.Close()
}

// Hub is a latest-value fan-out channel, not a durable queue: no
// acknowledgment, no retry, no per-client backlog. Clients that miss a push
// self-heal on the next one since every push carries full state.
type Hub struct {
	writeTimeout time.Duration
	log          zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

// New creates a new hub. writeTimeout bounds each client write so a slow
// client cannot serialize delivery to the others.
func New(writeTimeout time.Duration) *Hub {
	return &Hub{
		writeTimeout: writeTimeout,
		log:          logger.With("hub"),
		clients:      make(map[string]*client),
	}
}

// Register adds a client without an initial push. Clients must pull current
// state once immediately after connecting, which closes the
// register-after-last-push race.
func (h *Hub) Register(id string, conn ClientConn) {
	h.mu.Lock()
	h.clients[id] = &client{conn: conn}
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Debug().
		Str("client_id", id).
		Int("client_count", count).
		Msg("Display client registered")
}

// Unregister removes a client and closes its connection. Idempotent.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	cl, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	cl.close()

	h.log.Debug().
		Str("client_id", id).
		Int("client_count", count).
		Msg("Display client unregistered")
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast serializes the payload once and writes it to every registered
// client. A failing client write is isolated: it is logged, the client is
// unregistered, and delivery to all other clients is unaffected.
func (h *Hub) Broadcast(msgType string, payload interface{}) error {
	data, err := json.Marshal(Envelope{Type: msgType, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to serialize broadcast payload: %w", err)
	}

	type target struct {
		id string
		cl *client
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.clients))
	for id, cl := range h.clients {
		targets = append(targets, target{id: id, cl: cl})
	}
	h.mu.RUnlock()

	var failed []string
	for _, t := range targets {
		if err := t.cl.write(data, h.writeTimeout); err != nil {
			h.log.Warn().
				Err(err).
				Str("client_id", t.id).
				Str("message_type", msgType).
				Msg("Display client write failed, dropping client")
			failed = append(failed, t.id)
		}
	}

	for _, id := range failed {
		h.Unregister(id)
	}

	h.log.Debug().
		Str("message_type", msgType).
		Int("delivered", len(targets)-len(failed)).
		Int("failed", len(failed)).
		Msg("State broadcast")
	return nil
}

// Close unregisters and closes every client, used on shutdown
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, cl := range clients {
		cl.close()
	}
}
