// Package handlers implements the catalog API endpoints.
package handlers

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/mediathek/cmd/application"
	"github.com/agentstation/mediathek/internal/server/cache"
	"github.com/agentstation/mediathek/internal/server/events"
	"github.com/agentstation/mediathek/internal/server/sse"
	ws "github.com/agentstation/mediathek/internal/server/websocket"
)

// Deps are the server components the handlers read from and publish to.
type Deps struct {
	App      application.Application
	Cache    *cache.Cache
	Broker   *events.Broker
	Hub      *ws.Hub
	SSE      *sse.Broadcaster
	Upgrader websocket.Upgrader
	Logger   *zerolog.Logger
	Started  time.Time
}

// Handlers serves the API routes.
type Handlers struct {
	app            application.Application
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New returns handlers over d. A zero Started means now.
func New(d Deps) *Handlers {
	if d.Started.IsZero() {
		d.Started = time.Now()
	}
	return &Handlers{
		app:            d.App,
		cache:          d.Cache,
		broker:         d.Broker,
		wsHub:          d.Hub,
		sseBroadcaster: d.SSE,
		upgrader:       d.Upgrader,
		logger:         d.Logger,
		startTime:      d.Started,
	}
}
