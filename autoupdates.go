package mediathek

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoUpdater = (*client)(nil)

// AutoUpdater provides controls for automatic catalog updates.
type AutoUpdater interface {
	// AutoUpdatesOn begins checking for a stale catalog on an interval
	AutoUpdatesOn() error

	// AutoUpdatesOff stops automatic updates
	AutoUpdatesOff() error
}

// AutoUpdatesOn begins automatic updates.
// On every tick the catalog is refreshed when the settings consider it stale.
func (c *client) AutoUpdatesOn() error {
	if c.options.autoUpdateInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoUpdateInterval",
			Value:   c.options.autoUpdateInterval,
			Message: "update interval must be positive",
		}
	}

	// Stop any existing auto-updates to prevent resource leaks
	if err := c.AutoUpdatesOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	c.stopCh = make(chan struct{})
	c.autoDone = make(chan struct{})
	c.updateTicker = time.NewTicker(c.options.autoUpdateInterval)

	ctx, cancel := context.WithCancel(context.Background())
	c.updateCancel = cancel

	go func(parentCtx context.Context, ticker *time.Ticker, stopCh, done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				c.autoUpdate(parentCtx)
			case <-parentCtx.Done():
				return
			case <-stopCh:
				return
			}
		}
	}(ctx, c.updateTicker, c.stopCh, c.autoDone)

	c.log(ctx).Debug().Dur("interval", c.options.autoUpdateInterval).Msg("Auto updates on")
	return nil
}

// autoUpdate runs one staleness check.
func (c *client) autoUpdate(parentCtx context.Context) {
	if !c.settings.NeedsUpdate(c.options.now()) {
		return
	}

	kind := UpdatePartial
	if c.current.Load().Len() == 0 || c.settings.DatabaseUpdatedOn().IsZero() {
		kind = UpdateFull
	}

	updateCtx, cancel := context.WithTimeout(parentCtx, constants.UpdateContextTimeout)
	err := c.UpdateNow(updateCtx, kind)
	cancel()

	switch {
	case err == nil:
	case errors.IsBusy(err):
		// a manual refresh is running
	case stderrors.Is(err, context.Canceled):
	default:
		c.log(parentCtx).Error().Err(err).Str("update_kind", string(kind)).Msg("Auto-update failed")
	}
}

// AutoUpdatesOff stops automatic updates. It is safe to call repeatedly.
func (c *client) AutoUpdatesOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	if c.updateTicker != nil {
		c.updateTicker.Stop()
		c.updateTicker = nil
	}
	if c.updateCancel != nil {
		c.updateCancel()
		c.updateCancel = nil
	}
	if c.stopCh != nil {
		select {
		case <-c.stopCh:
			// Already closed
		default:
			close(c.stopCh)
		}
	}
	return nil
}

// autoUpdatesRunning reports whether the update goroutine is alive.
func (c *client) autoUpdatesRunning() bool {
	c.autoMu.Lock()
	done := c.autoDone
	c.autoMu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
