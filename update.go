package mediathek

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/mediathek/internal/settings"
	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/feed"
	"github.com/agentstation/mediathek/pkg/logging"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// UpdateKind selects a full rebuild or a partial merge.
type UpdateKind string

// Update kinds.
const (
	UpdateFull    UpdateKind = "full"
	UpdatePartial UpdateKind = "partial"
)

// ParseUpdateKind accepts "full" and "partial".
func ParseUpdateKind(s string) (UpdateKind, error) {
	switch UpdateKind(s) {
	case UpdateFull, UpdatePartial:
		return UpdateKind(s), nil
	}
	return "", errors.NewValidationError("kind", s, "must be full or partial")
}

func (k UpdateKind) list() settings.ListKind {
	if k == UpdatePartial {
		return settings.PartialList
	}
	return settings.FullList
}

// FailureReason is the reason passed to update-failed hooks.
const FailureReason = "Failed to parse or save data."

// DownloadFailureReason is the reason passed to update-failed hooks when no
// mirror served the list.
const DownloadFailureReason = "Failed to download show list."

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater refreshes the catalog from show list data.
type Updater interface {
	// RequestFullUpdate replaces the catalog with the shows in data in the
	// background. It returns false and does nothing while a refresh runs.
	RequestFullUpdate(data []byte) bool

	// RequestPartialUpdate merges the shows in data into the catalog in the
	// background. It returns false and does nothing while a refresh runs.
	RequestPartialUpdate(data []byte) bool

	// RequestDownload downloads the list of kind and refreshes in the
	// background. It returns false and does nothing while a refresh runs.
	RequestDownload(kind UpdateKind) bool

	// UpdateNow downloads the list of kind and refreshes synchronously.
	// It returns errors.ErrBusy while another refresh runs.
	UpdateNow(ctx context.Context, kind UpdateKind) error

	// Busy reports whether a refresh is running
	Busy() bool

	// WaitForFinished blocks until the background refresh has finished
	WaitForFinished()
}

// RequestFullUpdate starts a background full rebuild.
func (c *client) RequestFullUpdate(data []byte) bool {
	return c.request(UpdateFull, data)
}

// RequestPartialUpdate starts a background partial merge.
func (c *client) RequestPartialUpdate(data []byte) bool {
	return c.request(UpdatePartial, data)
}

func (c *client) request(kind UpdateKind, data []byte) bool {
	if !c.busy.CompareAndSwap(false, true) {
		c.log(context.Background()).Debug().Str("update_kind", string(kind)).Msg("Refresh already running, request dropped")
		return false
	}
	c.worker.Go(func() {
		defer c.busy.Store(false)
		ctx := logging.WithUpdateKind(context.Background(), string(kind))
		_ = c.refresh(ctx, kind, data)
	})
	return true
}

// RequestDownload starts a background download and refresh.
func (c *client) RequestDownload(kind UpdateKind) bool {
	if !c.busy.CompareAndSwap(false, true) {
		c.log(context.Background()).Debug().Str("update_kind", string(kind)).Msg("Refresh already running, download dropped")
		return false
	}
	c.worker.Go(func() {
		defer c.busy.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), constants.UpdateContextTimeout)
		defer cancel()
		_ = c.download(logging.WithUpdateKind(ctx, string(kind)), kind)
	})
	return true
}

// Busy reports whether a refresh is running.
func (c *client) Busy() bool {
	return c.busy.Load()
}

// WaitForFinished blocks until the background refresh has finished.
func (c *client) WaitForFinished() {
	c.worker.Wait()
}

// UpdateNow downloads the list of kind and refreshes the catalog.
func (c *client) UpdateNow(ctx context.Context, kind UpdateKind) error {
	if !c.busy.CompareAndSwap(false, true) {
		return errors.ErrBusy
	}
	defer c.busy.Store(false)
	return c.download(logging.WithUpdateKind(ctx, string(kind)), kind)
}

// download fetches the list of kind and refreshes the catalog from it.
func (c *client) download(ctx context.Context, kind UpdateKind) error {
	urls := c.settings.ListURLs(kind.list())
	c.log(ctx).Info().Strs("urls", urls).Msg("Downloading show list")

	data, err := c.options.fetcher.Fetch(ctx, urls)
	if err != nil {
		err = errors.NewUpdateError(string(kind), "download failed", err)
		c.hooks.updateFailed(DownloadFailureReason, err)
		return err
	}
	return c.refresh(ctx, kind, data)
}

// refresh builds, persists and publishes a new snapshot from data.
// Failures fire the update-failed hooks once and leave the catalog unchanged.
func (c *client) refresh(ctx context.Context, kind UpdateKind, data []byte) (err error) {
	log := c.log(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = errors.NewUpdateError(string(kind), "refresh panicked", fmt.Errorf("%v", r))
		}
		if err != nil {
			log.Error().Err(err).Str("update_kind", string(kind)).Msg("Refresh failed")
			c.hooks.updateFailed(FailureReason, err)
		}
	}()

	var tx snapshot.Transaction
	prev := c.current.Load()
	if kind == UpdatePartial {
		tx = snapshot.NewPartial(prev)
	} else {
		tx = snapshot.NewFull()
	}

	r, err := feed.Decompress(data)
	if err != nil {
		return errors.NewUpdateError(string(kind), "decompress", err)
	}
	stats, err := feed.Parse(r, tx)
	if err != nil {
		return errors.NewUpdateError(string(kind), "parse", err)
	}

	next := tx.Commit()
	if err := c.persist(next); err != nil {
		return errors.NewUpdateError(string(kind), "save", err)
	}

	c.publish(next)

	now := c.options.now()
	if err := c.settings.SetDatabaseUpdatedOn(now); err != nil {
		log.Warn().Err(err).Msg("Could not record update time")
	}

	info := UpdateInfo{
		Kind:      kind,
		Shows:     next.Len(),
		Previous:  prev.Len(),
		Rows:      stats.Rows,
		Skipped:   stats.Skipped,
		UpdatedOn: now,
		Took:      time.Since(start),
	}
	log.Info().
		Str("update_kind", string(kind)).
		Int("shows", info.Shows).
		Int("previous", info.Previous).
		Int("rows", info.Rows).
		Int("skipped", info.Skipped).
		Dur("took", info.Took).
		Msg("Catalog updated")

	c.hooks.updated(info)
	return nil
}
