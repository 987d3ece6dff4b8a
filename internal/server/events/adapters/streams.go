// Package adapters connects the event broker to its transports.
//
// Each adapter implements events.Subscriber. The stream adapters hand events
// to the SSE broadcaster and the WebSocket hub, which own their client
// connections; AMQPSubscriber publishes to a RabbitMQ fanout exchange.
package adapters

import (
	"strconv"

	"github.com/agentstation/mediathek/internal/server/events"
	"github.com/agentstation/mediathek/internal/server/sse"
	ws "github.com/agentstation/mediathek/internal/server/websocket"
)

// Compile-time interface checks.
var (
	_ events.Subscriber = (*SSESubscriber)(nil)
	_ events.Subscriber = (*WebSocketSubscriber)(nil)
)

// SSESubscriber forwards events to an SSE broadcaster.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates a new SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send hands the event to every SSE client. The broker sequence number
// becomes the event id so clients can resume with Last-Event-ID.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(event.Type),
		ID:    strconv.FormatUint(event.Seq, 10),
		Data:  event.Data,
	})
	return nil
}

// Close is a no-op; the broadcaster has its own lifecycle.
func (s *SSESubscriber) Close() error {
	return nil
}

// WebSocketSubscriber forwards events to a WebSocket hub.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a new WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send hands the event to every WebSocket client.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	return nil
}

// Close is a no-op; the hub has its own lifecycle.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
