// Package websocket pushes catalog events to WebSocket clients.
//
// The stream is server to client. A client may narrow it by sending
//
//	{"types": ["catalog.updated"]}
//
// after which only the listed event types are delivered; an empty list
// restores the full stream.
package websocket

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/mediathek/pkg/constants"
)

// Message is the JSON frame written to clients.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type subscription struct {
	Types []string `json:"types"`
}

// Hub tracks connected clients. Clients that cannot keep up are dropped.
type Hub struct {
	logger *zerolog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
	stopped bool
}

// NewHub returns an empty hub.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[*Client]struct{})}
}

// Run blocks until ctx ends, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.mu.Lock()
	h.stopped = true
	for c := range h.clients {
		h.drop(c)
	}
	h.mu.Unlock()
	h.logger.Info().Msg("WebSocket hub shut down")
}

// Register adds c. A hub that has stopped closes c immediately.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		close(c.send)
		return
	}
	h.clients[c] = struct{}{}
	h.logger.Debug().Str("client_id", c.id).Int("total_clients", len(h.clients)).Msg("WebSocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.drop(c)
		h.logger.Debug().Str("client_id", c.id).Int("total_clients", len(h.clients)).Msg("WebSocket client disconnected")
	}
}

// drop must be called with mu held.
func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// Broadcast queues msg on every client that wants its type.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(msg.Type) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.logger.Warn().Str("client_id", c.id).Msg("WebSocket client too slow, dropped")
			h.drop(c)
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Client is one WebSocket connection served by ReadPump and WritePump.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	mu    sync.RWMutex
	types []string
}

// NewClient wraps conn. Call Hub.Register, then start both pumps.
func NewClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan Message, constants.ChannelBufferSize),
	}
}

// ID returns the client id.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) wants(eventType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types) == 0 || slices.Contains(c.types, eventType)
}

func (c *Client) subscribe(types []string) {
	c.mu.Lock()
	c.types = slices.Clone(types)
	c.mu.Unlock()
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// ReadPump applies subscription messages until the connection closes,
// then unregisters the client. Frames that are not subscriptions are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket read error")
			}
			return
		}
		var sub subscription
		if json.Unmarshal(data, &sub) == nil {
			c.subscribe(sub.Types)
		}
	}
}

// WritePump writes queued messages and keepalive pings until the hub
// closes the send queue or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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
