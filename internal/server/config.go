package server

import (
	"net"
	"strconv"
	"time"
)

// Config is the listener, security and fan-out setup of the API server.
type Config struct {
	Host       string
	Port       int
	PathPrefix string

	CORSEnabled bool
	CORSOrigins []string

	AuthEnabled bool
	AuthHeader  string
	APIKey      string

	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
	// CacheTTL bounds how long a query result is served from memory.
	CacheTTL time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// AMQPURL enables publishing catalog events to AMQPExchange.
	AMQPURL      string
	AMQPExchange string
}

// DefaultConfig serves /api/v1 on localhost:8080.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8080,
		PathPrefix:   "/api/v1",
		AuthHeader:   "X-API-Key",
		RateLimit:    100,
		CacheTTL:     5 * time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  2 * time.Minute,
		AMQPExchange: "mediathek.events",
	}
}

// Addr is the host:port to listen on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// withDefaults fills the fields New cannot run without.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.PathPrefix == "" {
		c.PathPrefix = d.PathPrefix
	}
	if c.AuthHeader == "" {
		c.AuthHeader = d.AuthHeader
	}
	if c.AMQPExchange == "" {
		c.AMQPExchange = d.AMQPExchange
	}
	return c
}
