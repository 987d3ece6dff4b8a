package mediathek

import (
	"sync"
	"time"

	"github.com/agentstation/mediathek/pkg/logging"
)

// UpdateInfo describes a published refresh.
type UpdateInfo struct {
	Kind      UpdateKind    `json:"kind"`
	Shows     int           `json:"shows"`
	Previous  int           `json:"previous"`
	Rows      int           `json:"rows"`
	Skipped   int           `json:"skipped"`
	UpdatedOn time.Time     `json:"updated_on"`
	Took      time.Duration `json:"took"`
}

// Hook function types for catalog events
type (
	// UpdatedHook is called after a new snapshot is published
	UpdatedHook func(info UpdateInfo)

	// UpdateFailedHook is called when a refresh fails; the catalog is unchanged
	UpdateFailedHook func(reason string, err error)
)

// Hooks registers callbacks for catalog events.
// Callbacks run on the refresh goroutine and must not block.
type Hooks interface {
	// OnUpdated registers a callback for published refreshes
	OnUpdated(fn UpdatedHook)

	// OnUpdateFailed registers a callback for failed refreshes
	OnUpdateFailed(fn UpdateFailedHook)
}

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// hooks manages event callbacks for catalog updates
type hooks struct {
	mu             sync.RWMutex
	onUpdated      []UpdatedHook
	onUpdateFailed []UpdateFailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnUpdated registers a callback for published refreshes.
func (c *client) OnUpdated(fn UpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onUpdated = append(c.hooks.onUpdated, fn)
}

// OnUpdateFailed registers a callback for failed refreshes.
func (c *client) OnUpdateFailed(fn UpdateFailedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onUpdateFailed = append(c.hooks.onUpdateFailed, fn)
}

func (h *hooks) updated(info UpdateInfo) {
	h.mu.RLock()
	fns := h.onUpdated
	h.mu.RUnlock()
	for _, fn := range fns {
		safeCall("updated", func() { fn(info) })
	}
}

func (h *hooks) updateFailed(reason string, err error) {
	h.mu.RLock()
	fns := h.onUpdateFailed
	h.mu.RUnlock()
	for _, fn := range fns {
		safeCall("update_failed", func() { fn(reason, err) })
	}
}

// safeCall keeps a panicking hook from taking down the refresh worker.
func safeCall(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Str("event", event).Interface("panic", r).Msg("Hook panicked")
		}
	}()
	fn()
}
