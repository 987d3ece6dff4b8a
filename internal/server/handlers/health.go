package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/mediathek/internal/server/response"
)

// Liveness is the body of the health probe.
type Liveness struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Readiness is the body of the readiness probe.
type Readiness struct {
	Status     string `json:"status"`
	Shows      int    `json:"shows"`
	Generation uint64 `json:"generation"`
	Busy       bool   `json:"busy"`
	Streams    int    `json:"streams"`
}

// HandleHealth handles GET /health and /api/v1/health.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=Liveness}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, Liveness{
		Status:  "healthy",
		Service: "mediathek-api",
		Version: h.app.Version(),
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready once the
// catalog client is open, even while the catalog is still empty.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=Readiness}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}
	response.OK(w, Readiness{
		Status:     "ready",
		Shows:      client.Snapshot().Len(),
		Generation: client.Generation(),
		Busy:       client.Busy(),
		Streams:    h.wsHub.ClientCount() + h.sseBroadcaster.ClientCount(),
	})
}
