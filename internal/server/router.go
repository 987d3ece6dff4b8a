package server

import (
	"net/http"

	"github.com/agentstation/mediathek/internal/server/handlers"
	"github.com/agentstation/mediathek/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(handlers.Deps{
		App:      s.app,
		Cache:    s.cache,
		Broker:   s.broker,
		Hub:      s.wsHub,
		SSE:      s.sseBroadcaster,
		Upgrader: s.upgrader,
		Logger:   s.logger,
		Started:  s.startTime,
	})

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints (no auth required)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Catalog
	mux.HandleFunc("GET "+prefix+"/shows", h.HandleListShows)
	mux.HandleFunc("GET "+prefix+"/shows/{id}", h.HandleGetShow)
	mux.HandleFunc("GET "+prefix+"/channels", h.HandleChannels)
	mux.HandleFunc("GET "+prefix+"/topics", h.HandleTopics)

	// Admin
	mux.HandleFunc("POST "+prefix+"/update", h.HandleUpdate)
	mux.HandleFunc("GET "+prefix+"/stats", h.HandleStats)

	// Real-time
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleSSE)
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if s.rateLimiter != nil {
		handler = middleware.RateLimit(s.rateLimiter)(handler)
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.HeaderName = cfg.AuthHeader
		if cfg.APIKey != "" {
			authConfig.APIKey = cfg.APIKey
		}
		authConfig.PublicPaths = []string{"/health", cfg.PathPrefix + "/health", cfg.PathPrefix + "/ready"}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Always on; request ids outermost so every log line carries one
	return middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	)(handler)
}
