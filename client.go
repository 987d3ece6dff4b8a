// Package mediathek provides the main entry point for the show catalog.
// It keeps a searchable catalog of broadcast shows that is refreshed from
// the MediathekView show lists while queries keep running.
//
// The catalog is an immutable snapshot. A refresh builds a new snapshot in
// the background, persists it and then publishes it with a single atomic
// swap, so a reader always sees one complete catalog.
//
// Example usage:
//
//	// Create a client with the database in ~/.mediathek
//	mt, err := mediathek.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mt.Close()
//
//	// Register event hooks
//	mt.OnUpdated(func(info mediathek.UpdateInfo) {
//	    log.Printf("catalog now holds %d shows", info.Shows)
//	})
//
//	// Query the catalog
//	for _, id := range mt.Query(snapshot.Query{Channel: "arte", SortColumn: snapshot.SortByDate}) {
//	    show := mt.MustShow(id)
//	    fmt.Println(show.Title)
//	}
//
//	// Refresh synchronously from the configured list URLs
//	if err := mt.UpdateNow(ctx, mediathek.UpdatePartial); err != nil {
//	    log.Fatal(err)
//	}
package mediathek

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentstation/mediathek/internal/persistence"
	"github.com/agentstation/mediathek/internal/settings"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/logging"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// Client manages the show catalog with background refreshes and event hooks.
type Client interface {

	// Catalog provides lock-free read access to the current snapshot
	Catalog

	// Updater handles full and partial refreshes
	Updater

	// Persistence handles catalog persistence operations
	Persistence

	// AutoUpdater provides access to automatic update controls
	AutoUpdater

	// Hooks provides access to event callback registration
	Hooks

	// Settings returns the persisted user settings
	Settings() *settings.Settings

	// Close stops auto updates and waits for a running refresh
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// current is the published snapshot, never nil
	current    atomic.Pointer[snapshot.Snapshot]
	generation atomic.Uint64

	// refresh state, at most one refresh runs at a time
	busy   atomic.Bool
	worker conc.WaitGroup

	store    *persistence.Store
	settings *settings.Settings

	// auto update state
	autoMu       sync.Mutex
	updateTicker *time.Ticker       // update ticker to trigger auto-updates
	stopCh       chan struct{}      // stop channel to stop auto-updates
	updateCancel context.CancelFunc // cancel function for the update goroutine
	autoDone     chan struct{}      // closed when the update goroutine exits

	hooks *hooks // event hooks for catalog updates
}

// New creates a new Client instance with the given options.
// A missing or unreadable database is not an error: the catalog starts empty.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		store:   persistence.New(o.fs, o.databasePath()),
		hooks:   newHooks(),
	}
	c.current.Store(snapshot.Empty())

	log := c.log(context.Background())
	log.Debug().Str("path", c.store.Path()).Msg("Opening catalog")

	// settings
	c.settings = o.settings
	if c.settings == nil {
		if c.settings, err = settings.Load(o.fs, o.settingsPath()); err != nil {
			log.Warn().Err(err).Msg("Settings unreadable, using defaults")
			c.settings = settings.New()
		}
	}
	if o.fetcher == nil {
		o.fetcher = o.newFetcher(c.settings.UserAgent())
	}

	// load the persisted catalog
	if snap, err := c.load(); err != nil {
		if errors.IsNotFound(err) {
			log.Info().Str("path", c.store.Path()).Msg("No database yet, starting with an empty catalog")
		} else {
			log.Warn().Err(err).Str("path", c.store.Path()).Msg("Database unreadable, starting with an empty catalog")
		}
	} else {
		c.publish(snap)
		log.Info().Int("shows", snap.Len()).Int("channels", len(snap.Channels())).Msg("Catalog loaded")
	}

	// start auto-updates if enabled
	if o.autoUpdatesEnabled {
		if err := c.AutoUpdatesOn(); err != nil {
			return nil, errors.WrapResource("start", "auto-updates", "", err)
		}
	}

	return c, nil
}

// Settings returns the persisted user settings.
func (c *client) Settings() *settings.Settings {
	return c.settings
}

// publish swaps in snap and bumps the generation.
func (c *client) publish(snap *snapshot.Snapshot) *snapshot.Snapshot {
	prev := c.current.Swap(snap)
	c.generation.Add(1)
	return prev
}

// log returns the context logger, falling back to WithLogger's.
func (c *client) log(ctx context.Context) *zerolog.Logger {
	l := logging.FromContext(ctx)
	if l == logging.Default() && c.options.logger != nil {
		return c.options.logger
	}
	return l
}
