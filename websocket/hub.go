// Package websocket pushes live zone updates to dashboards.
// file: websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"nilakkal-parking/logger"
)

// DefaultTopic is used when a client does not pick one.
const DefaultTopic = "zones"

// broadcastBuffer bounds the number of queued broadcasts.
const broadcastBuffer = 256

// Messenger is what the parking service needs from the hub.
type Messenger interface {
	BroadcastMessage(topic string, message map[string]interface{})
}

type envelope struct {
	topic   string
	payload []byte
}

// Hub tracks connections and fans broadcasts out to them.
type Hub struct {
	mu          sync.Mutex
	connections map[*Connection]bool
	broadcast   chan envelope

	// OnConnect, if set, builds the first message sent to a new client.
	OnConnect func(topic string) map[string]interface{}
}

var _ Messenger = (*Hub)(nil)

// NewHub creates an idle hub. Call Run to start dispatching.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan envelope, broadcastBuffer),
	}
}

// Run dispatches queued broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case env := <-h.broadcast:
			h.dispatch(env)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// BroadcastMessage queues message for every client on topic. It never
// blocks; when the queue is full the message is dropped.
func (h *Hub) BroadcastMessage(topic string, message map[string]interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		logger.Error.Printf("[Hub.BroadcastMessage] Error marshalling message: %v", err)
		return
	}
	select {
	case h.broadcast <- envelope{topic: topic, payload: payload}:
	default:
		logger.Warn.Printf("[Hub.BroadcastMessage] Broadcast queue full, dropping %s message", topic)
	}
}

// dispatch delivers env to matching connections. An empty topic reaches everyone.
func (h *Hub) dispatch(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		if env.topic != "" && c.topic != env.topic {
			continue
		}
		select {
		case c.send <- env.payload:
		default:
			logger.Warn.Printf("[Hub.dispatch] Dropping broadcast message for connection %v", c.conn.RemoteAddr())
		}
	}
}

// ConnectionCount returns the number of live clients.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	count := len(h.connections)
	h.mu.Unlock()
	logger.Info.Printf("[Hub] Registered %v on topic %q (%d connected)", c.conn.RemoteAddr(), c.topic, count)
}

// unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
		logger.Info.Printf("[Hub] Unregistered %v (%d connected)", c.conn.RemoteAddr(), len(h.connections))
	}
}

func (h *Hub) setTopic(c *Connection, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.topic = topic
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		delete(h.connections, c)
		close(c.send)
	}
}
