package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 8
)

// wsClient owns one connection. Only writeLoop writes to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// wsHub fans screen snapshots out to every connected display. A display
// that falls sendBuffer messages behind is dropped.
type wsHub struct {
	log *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

func newWSHub(log *zap.Logger) *wsHub {
	return &wsHub{log: log, clients: make(map[*wsClient]struct{})}
}

func (h *wsHub) Add(conn *websocket.Conn, first any) *wsClient {
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	if data, err := json.Marshal(first); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
		go c.writeLoop()
		return c
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()
	return c
}

func (h *wsHub) Remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *wsHub) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("ws payload not encodable", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Info("ws client too slow, dropping", zap.String("remote", c.conn.RemoteAddr().String()))
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *wsHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every display and refuses new ones.
func (h *wsHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop drains control frames until the display goes away.
func (h *wsHub) readLoop(c *wsClient) {
	defer h.Remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.log.Debug("ws disconnected", zap.Error(err))
			return
		}
	}
}
