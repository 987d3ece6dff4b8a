package mediathek

import (
	"github.com/agentstation/mediathek/pkg/shows"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

// Compile-time interface check to ensure proper implementation.
var _ Catalog = (*client)(nil)

// Catalog answers lookups against the published snapshot.
// Every call loads the snapshot once; ids are only valid for the snapshot
// they came from, so callers pairing Query and Show across a refresh
// should hold Snapshot() and use it directly.
type Catalog interface {
	// Query returns the ids of matching shows in result order
	Query(q snapshot.Query) []snapshot.ID

	// Show returns the show with the given id
	Show(id snapshot.ID) (shows.Show, error)

	// MustShow is Show for ids known to be valid; it panics otherwise
	MustShow(id snapshot.ID) shows.Show

	// Channels returns the sorted distinct channels
	Channels() []string

	// Topics returns the topics of channel, or all topics when channel is empty
	Topics(channel string) []string

	// Snapshot returns the published snapshot
	Snapshot() *snapshot.Snapshot

	// Generation increases every time a new snapshot is published
	Generation() uint64
}

// Snapshot returns the published snapshot.
func (c *client) Snapshot() *snapshot.Snapshot {
	return c.current.Load()
}

// Generation returns the publish counter.
func (c *client) Generation() uint64 {
	return c.generation.Load()
}

// Query runs q with the configured precedence unless q sets one.
func (c *client) Query(q snapshot.Query) []snapshot.ID {
	if q.Precedence == snapshot.ChannelFirst {
		q.Precedence = c.options.precedence
	}
	return c.current.Load().Query(q)
}

// Show returns the show with the given id.
func (c *client) Show(id snapshot.ID) (shows.Show, error) {
	return c.current.Load().Show(id)
}

// MustShow returns the show with the given id and panics when id is out of range.
func (c *client) MustShow(id snapshot.ID) shows.Show {
	show, err := c.Show(id)
	if err != nil {
		panic(err)
	}
	return show
}

// Channels returns the sorted distinct channels.
func (c *client) Channels() []string {
	return c.current.Load().Channels()
}

// Topics returns the topics of channel.
func (c *client) Topics(channel string) []string {
	return c.current.Load().Topics(channel)
}
