// Package server exposes the catalog over HTTP.
//
// Reads come from the current snapshot through a short-lived response
// cache that is flushed whenever the catalog publishes a new one. Catalog
// hooks feed an event broker whose subscribers are the WebSocket hub, the
// SSE stream and, when configured, a RabbitMQ exchange.
//
//	srv, err := server.New(app, server.DefaultConfig())
//	srv.Start()
//	defer srv.Shutdown(ctx)
//	http.ListenAndServe(cfg.Addr(), srv.Handler())
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentstation/mediathek"
	"github.com/agentstation/mediathek/cmd/application"
	"github.com/agentstation/mediathek/internal/server/cache"
	"github.com/agentstation/mediathek/internal/server/events"
	"github.com/agentstation/mediathek/internal/server/events/adapters"
	"github.com/agentstation/mediathek/internal/server/middleware"
	"github.com/agentstation/mediathek/internal/server/sse"
	ws "github.com/agentstation/mediathek/internal/server/websocket"
	"github.com/agentstation/mediathek/pkg/constants"
)

// Server owns the API's background components.
type Server struct {
	app    application.Application
	config Config
	logger *zerolog.Logger

	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader

	stop       context.CancelFunc
	ctx        context.Context
	background conc.WaitGroup
	startTime  time.Time
}

// New connects the server to the catalog of app. It fails when the
// catalog cannot be opened or the AMQP broker cannot be reached.
func New(app application.Application, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	logger := app.Logger()

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		cache:          cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		broker:         events.NewBroker(logger),
		wsHub:          ws.NewHub(logger),
		sseBroadcaster: sse.NewBroadcaster(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// browsers are gated by CORS and the API key, not by origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}
	if err := s.subscribeTransports(); err != nil {
		return nil, err
	}
	if err := s.connectHooks(); err != nil {
		return nil, err
	}
	s.ctx, s.stop = context.WithCancel(context.Background())
	return s, nil
}

func (s *Server) subscribeTransports() error {
	s.broker.Subscribe(adapters.NewWebSocketSubscriber(s.wsHub))
	s.broker.Subscribe(adapters.NewSSESubscriber(s.sseBroadcaster))
	if s.config.AMQPURL == "" {
		return nil
	}
	pub, err := adapters.NewAMQPSubscriber(s.config.AMQPURL, s.config.AMQPExchange, s.logger)
	if err != nil {
		return err
	}
	s.broker.Subscribe(pub)
	s.logger.Info().Str("exchange", s.config.AMQPExchange).Msg("Publishing catalog events to AMQP")
	return nil
}

// connectHooks flushes the response cache on every new snapshot and
// turns catalog notifications into broker events.
func (s *Server) connectHooks() error {
	client, err := s.app.Client()
	if err != nil {
		return err
	}
	client.OnUpdated(func(info mediathek.UpdateInfo) {
		s.cache.Clear()
		s.broker.Publish(events.CatalogUpdated, info)
	})
	client.OnUpdateFailed(func(reason string, err error) {
		s.broker.Publish(events.CatalogUpdateFailed, map[string]any{
			"reason": reason,
			"error":  err.Error(),
		})
	})
	return nil
}

// Start runs the broker, the stream transports and the rate limiter
// sweep until Shutdown.
func (s *Server) Start() {
	for _, run := range []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run} {
		s.background.Go(func() { run(s.ctx) })
	}
	if s.rateLimiter != nil {
		s.background.Go(s.sweepVisitors)
	}
}

func (s *Server) sweepVisitors() {
	t := time.NewTicker(constants.CacheCleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.rateLimiter.Cleanup()
		}
	}
}

// Handler returns the routed and middleware-wrapped API.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops the background components and waits for them until
// ctx ends. Open streams are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info().Msg("API background services stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("API background services did not stop in time")
		return ctx.Err()
	}
}

// Cache returns the response cache.
func (s *Server) Cache() *cache.Cache { return s.cache }

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker { return s.broker }

// StartTime returns when New ran.
func (s *Server) StartTime() time.Time { return s.startTime }
