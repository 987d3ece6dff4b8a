// Package sse streams catalog events to HTTP clients as text/event-stream.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/mediathek/pkg/constants"
)

const (
	keepAlive = 30 * time.Second
	// replay is how many recent events a reconnecting client can catch up on.
	replay = 64
)

// Event is one frame of the stream. IDs that parse as integers can be
// resumed from with the Last-Event-ID request header.
type Event struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data"`
}

// Broadcaster delivers events to every connected stream. A client whose
// buffer is full misses the event rather than stalling the others.
type Broadcaster struct {
	logger *zerolog.Logger

	mu      sync.RWMutex
	clients map[chan Event]struct{}
	history []Event
	stopped bool
	done    chan struct{}
}

// NewBroadcaster returns an idle broadcaster. Run ends it.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		logger:  logger,
		clients: make(map[chan Event]struct{}),
		done:    make(chan struct{}),
	}
}

// Run blocks until ctx ends, then disconnects all clients.
func (b *Broadcaster) Run(ctx context.Context) {
	<-ctx.Done()
	b.mu.Lock()
	b.stopped = true
	for c := range b.clients {
		close(c)
		delete(b.clients, c)
	}
	b.mu.Unlock()
	close(b.done)
	b.logger.Info().Msg("SSE broadcaster shut down")
}

// Broadcast sends ev to all clients and remembers it for replay.
func (b *Broadcaster) Broadcast(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.history = append(b.history, ev)
	if len(b.history) > replay {
		b.history = b.history[len(b.history)-replay:]
	}
	for c := range b.clients {
		select {
		case c <- ev:
		default:
			b.logger.Warn().Str("event", ev.Event).Msg("SSE client buffer full, event skipped")
		}
	}
}

// ClientCount returns the number of open streams.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// subscribe registers a client and returns the events it missed after
// lastID. ok is false once the broadcaster has stopped.
func (b *Broadcaster) subscribe(lastID string) (c chan Event, missed []Event, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, nil, false
	}
	c = make(chan Event, constants.ChannelBufferSize)
	b.clients[c] = struct{}{}
	if after, err := strconv.ParseUint(lastID, 10, 64); err == nil {
		for _, ev := range b.history {
			if id, err := strconv.ParseUint(ev.ID, 10, 64); err == nil && id > after {
				missed = append(missed, ev)
			}
		}
	}
	b.logger.Debug().Int("total_clients", len(b.clients)).Msg("SSE client connected")
	return c, missed, true
}

func (b *Broadcaster) unsubscribe(c chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c)
	}
	b.logger.Debug().Int("total_clients", len(b.clients)).Msg("SSE client disconnected")
}

// ServeHTTP streams to one client until the request ends or Run returns.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	c, missed, ok := b.subscribe(r.Header.Get("Last-Event-ID"))
	if !ok {
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	}
	defer b.unsubscribe(c)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	b.write(w, Event{Event: "connected", Data: map[string]any{"timestamp": time.Now()}})
	for _, ev := range missed {
		b.write(w, ev)
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case ev, open := <-c:
			if !open {
				return
			}
			b.write(w, ev)
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keepalive\n\n")
		case <-r.Context().Done():
			return
		}
		flusher.Flush()
	}
}

func (b *Broadcaster) write(w io.Writer, ev Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		b.logger.Error().Err(err).Str("event", ev.Event).Msg("SSE event data not encodable")
		return
	}
	if ev.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", ev.Event)
	}
	if ev.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
