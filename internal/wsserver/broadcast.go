// Package wsserver streams classified events to local WebSocket clients,
// for dashboards or overlay UIs watching the monitored room.
package wsserver

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/user/danmaku/internal/types"
)

const clientSendBuffer = 64

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// trySend queues msg without blocking. Returns false when the client is
// closed or its buffer is full. The mutex orders sends against close so a
// disconnect racing a broadcast can never send on a closed channel.
func (c *client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close is idempotent: the read pump and a slow-client eviction may both
// tear the same client down.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Message is the wire envelope sent to clients.
type Message struct {
	Type   string        `json:"type"` // "snapshot" | "event"
	Event  *types.Event  `json:"event,omitempty"`
	Recent []types.Event `json:"recent,omitempty"`
}

// Broadcaster fans events out to connected clients and keeps a ring of
// recent events that is replayed as a snapshot to each new client. Clients
// that cannot keep up are disconnected rather than allowed to stall the
// stream.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]bool

	ringMu sync.Mutex
	ring   []types.Event
	ringN  int
}

// NewBroadcaster creates a Broadcaster remembering the last ringSize events.
func NewBroadcaster(ringSize int) *Broadcaster {
	if ringSize <= 0 {
		ringSize = 50
	}
	return &Broadcaster{
		clients: make(map[*client]bool),
		ringN:   ringSize,
	}
}

// AddClient registers a connection and sends it the recent-event snapshot.
func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	b.ringMu.Lock()
	recent := make([]types.Event, len(b.ring))
	copy(recent, b.ring)
	b.ringMu.Unlock()

	data, _ := json.Marshal(Message{Type: "snapshot", Recent: recent})
	// A client too slow for even the snapshot just catches live events.
	c.trySend(data)
	return c
}

// RemoveClient unregisters a connection and closes its send channel.
func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// Emit implements sink.Target: record the event in the ring and broadcast
// it to every connected client.
func (b *Broadcaster) Emit(ev types.Event) bool {
	b.ringMu.Lock()
	b.ring = append(b.ring, ev)
	if len(b.ring) > b.ringN {
		b.ring = b.ring[len(b.ring)-b.ringN:]
	}
	b.ringMu.Unlock()

	data, err := json.Marshal(Message{Type: "event", Event: &ev})
	if err != nil {
		slog.Error("broadcast marshal failed", "error", err)
		return false
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			slog.Warn("ws client too slow, disconnecting")
			b.RemoveClient(c)
		}
	}
	return true
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
