package mediathek

import (
	"bytes"
	"context"

	"github.com/agentstation/mediathek/pkg/codec"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles catalog persistence operations.
type Persistence interface {
	// Save writes the published snapshot to the database file
	Save(ctx context.Context) error

	// DatabasePath returns the database file location
	DatabasePath() string
}

// Save writes the published snapshot to the database file.
func (c *client) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := c.current.Load()
	if err := c.persist(snap); err != nil {
		return err
	}
	c.log(ctx).Debug().Int("shows", snap.Len()).Str("path", c.store.Path()).Msg("Catalog saved")
	return nil
}

// DatabasePath returns the database file location.
func (c *client) DatabasePath() string {
	return c.store.Path()
}

// persist encodes snap and replaces the database file.
func (c *client) persist(snap *snapshot.Snapshot) error {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, snap.Shows(), codec.WithCompression(c.options.compress)); err != nil {
		return errors.WrapResource("encode", "catalog", "", err)
	}
	return c.store.Write(buf.Bytes())
}

// load reads the database file into a snapshot.
func (c *client) load() (*snapshot.Snapshot, error) {
	data, err := c.store.Read()
	if err != nil {
		return nil, err
	}
	list, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	tx := snapshot.NewFull()
	for _, show := range list {
		tx.Append(show)
	}
	return tx.Commit(), nil
}
