package snapshot

import (
	"slices"

	"github.com/agentstation/mediathek/pkg/shows"
)

// Transaction accumulates shows and produces a new Snapshot.
// A Transaction is used by a single goroutine and only once: calling
// Append or Commit after Commit panics.
type Transaction interface {
	// Append adds a show to the working set.
	Append(show shows.Show)

	// Commit sorts and indexes the working set.
	Commit() *Snapshot
}

// Compile-time interface checks.
var (
	_ Transaction = (*Full)(nil)
	_ Transaction = (*Partial)(nil)
)

const committedMsg = "snapshot: transaction already committed"

// Full replaces the catalog with the appended shows.
type Full struct {
	list      []shows.Show
	committed bool
}

// NewFull starts a transaction that discards the current catalog.
func NewFull() *Full {
	return &Full{}
}

// Append adds show unconditionally.
func (tx *Full) Append(show shows.Show) {
	if tx.committed {
		panic(committedMsg)
	}
	tx.list = append(tx.list, show)
}

// Commit returns the new Snapshot.
func (tx *Full) Commit() *Snapshot {
	if tx.committed {
		panic(committedMsg)
	}
	tx.committed = true
	list := tx.list
	tx.list = nil
	return build(list)
}

// Partial merges appended shows into a previous catalog.
// A show whose Key matches an existing entry replaces it, any other show is added.
type Partial struct {
	list      []shows.Show
	positions map[shows.Key]int
	committed bool
}

// NewPartial starts a transaction on top of prev. prev is not modified.
func NewPartial(prev *Snapshot) *Partial {
	if prev == nil {
		prev = Empty()
	}
	tx := &Partial{
		list:      slices.Clone(prev.shows),
		positions: make(map[shows.Key]int, len(prev.shows)),
	}
	for i, show := range tx.list {
		tx.positions[show.Key()] = i
	}
	return tx
}

// Append replaces the show with the same identity or adds show.
func (tx *Partial) Append(show shows.Show) {
	if tx.committed {
		panic(committedMsg)
	}
	key := show.Key()
	if i, ok := tx.positions[key]; ok {
		tx.list[i] = show
		return
	}
	tx.positions[key] = len(tx.list)
	tx.list = append(tx.list, show)
}

// Commit returns the merged Snapshot.
func (tx *Partial) Commit() *Snapshot {
	if tx.committed {
		panic(committedMsg)
	}
	tx.committed = true
	list := tx.list
	tx.list, tx.positions = nil, nil
	return build(list)
}

// Len returns the size of the working set.
func (tx *Full) Len() int { return len(tx.list) }

// Len returns the size of the working set.
func (tx *Partial) Len() int { return len(tx.list) }
