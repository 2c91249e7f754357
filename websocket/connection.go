// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"nilakkal-parking/logger"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents a single WebSocket connection for one dashboard.
type Connection struct {
	hub   *Hub
	conn  WSConn
	send  chan []byte
	topic string
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048
	sendBuffer     = 64
)

// Upgrader upgrades HTTP requests to WebSocket connections.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Dashboards may be served from another origin.
		return true
	},
}

// ClientMessage is the JSON sent by dashboards.
type ClientMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

func newConnection(h *Hub, conn WSConn, topic string) *Connection {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Connection{hub: h, conn: conn, send: make(chan []byte, sendBuffer), topic: topic}
}

// ServeWs upgrades the request and starts the read and write pumps.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	logger.Info.Printf("[ServeWs] Upgrading to WS: remoteAddr=%v, topic=%q", r.RemoteAddr, topic)

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}
	h.attach(newConnection(h, wsConn, topic))
}

// attach registers c, queues the greeting and starts the pumps.
func (h *Hub) attach(c *Connection) {
	h.register(c)
	if h.OnConnect != nil {
		c.queue(h.OnConnect(c.topic))
	}
	go c.readPump()
	go c.writePump()
}

// queue marshals msg onto the send buffer without blocking.
func (c *Connection) queue(msg map[string]interface{}) {
	if msg == nil {
		return
	}
	out, err := json.Marshal(msg)
	if err != nil {
		logger.Error.Printf("[Connection.queue] Error marshalling message: %v", err)
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if !c.hub.connections[c] {
		return
	}
	select {
	case c.send <- out:
	default:
		logger.Warn.Printf("[Connection.queue] Dropping message for connection %v", c.conn.RemoteAddr())
	}
}

// readPump handles inbound messages from the client.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			return
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d", messageType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		c.handleIncoming(msg)
	}
}

// handleIncoming processes an inbound client message.
func (c *Connection) handleIncoming(msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		topic := msg.Topic
		if topic == "" {
			topic = DefaultTopic
		}
		c.hub.setTopic(c, topic)
		logger.Info.Printf("[handleIncoming] %v subscribed to %q", c.conn.RemoteAddr(), topic)
		if c.hub.OnConnect != nil {
			c.queue(c.hub.OnConnect(topic))
		}
	case "ping":
		c.queue(map[string]interface{}{"action": "pong"})
	default:
		logger.Debug.Printf("[handleIncoming] Unhandled action: %s", msg.Action)
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				logger.Debug.Printf("[writePump] Send channel closed for %v", c.conn.RemoteAddr())
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}
