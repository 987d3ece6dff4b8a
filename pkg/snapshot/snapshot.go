// Package snapshot holds the immutable, indexed view of the show catalog
// and the transactions that build new views.
//
// A Snapshot is built once by Transaction.Commit and is never modified
// afterwards. Readers may share one Snapshot across goroutines without
// locking; a newer catalog is always a new Snapshot.
package snapshot

import (
	"cmp"
	"slices"
	"sort"
	"strconv"

	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
)

// ID is the position of a show inside the Snapshot it was obtained from.
type ID = int

// topicPair is one entry of the topic index. channel holds the folded form.
type topicPair struct {
	channel string
	topic   string
}

func compareTopicPair(a, b topicPair) int {
	if c := cmp.Compare(a.channel, b.channel); c != 0 {
		return c
	}
	return cmp.Compare(a.topic, b.topic)
}

// Snapshot is an immutable catalog view.
//
// @immutable
type Snapshot struct {
	shows []shows.Show

	// aligned with shows, folded
	byChannel []string
	byTopic   []string
	byTitle   []string

	channels []string
	topics   []topicPair
}

var empty = &Snapshot{}

// Empty returns the catalog without shows.
func Empty() *Snapshot {
	return empty
}

// canonicalOrder sorts channel ascending, then newest first.
func canonicalOrder(a, b shows.Show) int {
	if c := cmp.Compare(a.Channel, b.Channel); c != 0 {
		return c
	}
	return newestFirst(a, b)
}

// build sorts list in place into canonical order and indexes it.
// The Snapshot takes ownership of list.
func build(list []shows.Show) *Snapshot {
	if len(list) == 0 {
		return empty
	}

	slices.SortStableFunc(list, canonicalOrder)

	f := newFolder()
	s := &Snapshot{
		shows:     list,
		byChannel: make([]string, len(list)),
		byTopic:   make([]string, len(list)),
		byTitle:   make([]string, len(list)),
	}

	for i, show := range list {
		channel := f.fold(show.Channel)
		s.byChannel[i] = channel
		s.byTopic[i] = f.fold(show.Topic)
		s.byTitle[i] = f.fold(show.Title)

		if pos, found := slices.BinarySearch(s.channels, show.Channel); !found {
			s.channels = slices.Insert(s.channels, pos, show.Channel)
		}

		pair := topicPair{channel: channel, topic: show.Topic}
		if pos, found := slices.BinarySearchFunc(s.topics, pair, compareTopicPair); !found {
			s.topics = slices.Insert(s.topics, pos, pair)
		}
	}

	return s
}

// Len returns the number of shows.
func (s *Snapshot) Len() int {
	return len(s.shows)
}

// Show returns the show with the given id.
func (s *Snapshot) Show(id ID) (shows.Show, error) {
	if id < 0 || id >= len(s.shows) {
		return shows.Show{}, errors.NewNotFoundError("show", strconv.Itoa(id))
	}
	return s.shows[id], nil
}

// Shows returns a copy of all shows in storage order.
func (s *Snapshot) Shows() []shows.Show {
	return slices.Clone(s.shows)
}

// All iterates over the shows in storage order.
func (s *Snapshot) All(yield func(ID, shows.Show) bool) {
	for i, show := range s.shows {
		if !yield(i, show) {
			return
		}
	}
}

// Channels returns the distinct channels, sorted.
func (s *Snapshot) Channels() []string {
	return slices.Clone(s.channels)
}

// Topics returns the distinct topics of a channel, or of every channel when
// channel is empty. Channel matching is case-insensitive.
func (s *Snapshot) Topics(channel string) []string {
	if channel == "" {
		out := make([]string, len(s.topics))
		for i, p := range s.topics {
			out[i] = p.topic
		}
		return out
	}

	key := Fold(channel)
	lo := sort.Search(len(s.topics), func(i int) bool {
		return s.topics[i].channel >= key
	})
	hi := sort.Search(len(s.topics), func(i int) bool {
		return s.topics[i].channel > key
	})

	out := make([]string, 0, hi-lo)
	for _, p := range s.topics[lo:hi] {
		out = append(out, p.topic)
	}
	return out
}
