package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/agentstation/mediathek"
	"github.com/agentstation/mediathek/internal/server/events"
	"github.com/agentstation/mediathek/internal/server/response"
	"github.com/agentstation/mediathek/pkg/errors"
)

// HandleUpdate handles POST /api/v1/update.
// @Summary Trigger catalog update
// @Description Downloads a show list and refreshes the catalog in the background
// @Tags admin
// @Produce json
// @Param kind query string false "full or partial (default: partial)"
// @Success 202 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 409 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /api/v1/update [post].
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("kind")
	if raw == "" {
		raw = string(mediathek.UpdatePartial)
	}
	kind, err := mediathek.ParseUpdateKind(raw)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	if !client.RequestDownload(kind) {
		response.ErrorFromType(w, errors.ErrBusy)
		return
	}

	h.logger.Info().Str("update_kind", string(kind)).Msg("Catalog update requested")
	h.broker.Publish(events.UpdateRequested, map[string]any{"kind": kind})
	response.Accepted(w, map[string]any{
		"status": "accepted",
		"kind":   kind,
	})
}

// HandleStats handles GET /api/v1/stats.
// @Summary Catalog statistics
// @Description Catalog size, refresh state, and server statistics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security ApiKeyAuth
// @Router /api/v1/stats [get].
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	snap := client.Snapshot()
	var updatedOn *time.Time
	if t := client.Settings().DatabaseUpdatedOn(); !t.IsZero() {
		updatedOn = &t
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response.OK(w, map[string]any{
		"catalog": map[string]any{
			"shows":      snap.Len(),
			"channels":   len(snap.Channels()),
			"generation": client.Generation(),
			"busy":       client.Busy(),
			"updated_on": updatedOn,
			"database":   client.DatabasePath(),
		},
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      memStats.Alloc / 1024 / 1024,
			"memory_sys_mb":  memStats.Sys / 1024 / 1024,
		},
		"events": map[string]any{
			"published_total": h.broker.EventsPublished(),
			"dropped_total":   h.broker.EventsDropped(),
			"queue_depth":     h.broker.QueueDepth(),
			"subscribers":     h.broker.SubscriberCount(),
		},
		"realtime": map[string]any{
			"websocket_clients": h.wsHub.ClientCount(),
			"sse_clients":       h.sseBroadcaster.ClientCount(),
		},
		"cache": h.cache.GetStats(),
	})
}
