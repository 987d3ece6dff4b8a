package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/mediathek/internal/server/events"
	ws "github.com/agentstation/mediathek/internal/server/websocket"
	"github.com/agentstation/mediathek/pkg/logging"
)

// HandleWebSocket handles WebSocket connections at /api/v1/updates/ws.
// @Summary WebSocket updates
// @Description WebSocket stream of catalog events
// @Tags updates
// @Success 101 "Switching Protocols"
// @Router /api/v1/updates/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	clientID := logging.RequestID(r.Context())
	if clientID == "" {
		clientID = uuid.NewString()
	}
	client := ws.NewClient(clientID, h.wsHub, conn)
	h.wsHub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.broker.Publish(events.ClientConnected, map[string]any{
		"client_id": clientID,
		"transport": "websocket",
		"at":        time.Now(),
	})
}

// HandleSSE handles Server-Sent Events at /api/v1/updates/stream.
// @Summary SSE updates stream
// @Description Server-Sent Events stream of catalog events
// @Tags updates
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /api/v1/updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	// streams outlive the server write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug().Err(err).Msg("Write deadline not adjustable")
	}
	h.sseBroadcaster.ServeHTTP(w, r)
}
