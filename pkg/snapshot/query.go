package snapshot

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
)

// SortColumn chooses the sort key of a query result.
type SortColumn int

// Sort columns.
const (
	SortByChannel SortColumn = iota
	SortByTopic
	SortByTitle
	SortByDate
	SortByTime
	SortByDuration
)

var sortColumnNames = map[SortColumn]string{
	SortByChannel:  "channel",
	SortByTopic:    "topic",
	SortByTitle:    "title",
	SortByDate:     "date",
	SortByTime:     "time",
	SortByDuration: "duration",
}

// String returns the column name.
func (c SortColumn) String() string {
	if name, ok := sortColumnNames[c]; ok {
		return name
	}
	return fmt.Sprintf("SortColumn(%d)", int(c))
}

// ParseSortColumn converts a column name to a SortColumn.
// An empty name selects SortByChannel.
func ParseSortColumn(s string) (SortColumn, error) {
	if s == "" {
		return SortByChannel, nil
	}
	for c, name := range sortColumnNames {
		if strings.EqualFold(s, name) {
			return c, nil
		}
	}
	return 0, errors.NewValidationError("sort", s, "must be one of channel, topic, title, date, time, duration")
}

// textual columns sort by folded text and break ties by recency.
func (c SortColumn) textual() bool {
	return c == SortByChannel || c == SortByTopic || c == SortByTitle
}

// SortOrder is the direction of a sort.
type SortOrder int

// Sort orders.
const (
	Ascending SortOrder = iota
	Descending
)

// String returns "asc" or "desc".
func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortOrder accepts asc, ascending, desc and descending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(s) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return 0, errors.NewValidationError("order", s, "must be asc or desc")
}

// Precedence decides which filter drives the initial scan of a query.
type Precedence int

const (
	// ChannelFirst scans by channel, then topic, then title.
	ChannelFirst Precedence = iota
	// TitleFirst scans by title, then topic, then channel.
	TitleFirst
)

// String returns the precedence name.
func (p Precedence) String() string {
	if p == TitleFirst {
		return "title-first"
	}
	return "channel-first"
}

// ParsePrecedence accepts channel-first and title-first.
func ParsePrecedence(s string) (Precedence, error) {
	switch strings.ToLower(s) {
	case "", "channel", "channel-first":
		return ChannelFirst, nil
	case "title", "title-first":
		return TitleFirst, nil
	}
	return 0, errors.NewValidationError("precedence", s, "must be channel-first or title-first")
}

// Query describes a filtered, sorted lookup.
// Filters match as case-insensitive substrings; empty filters match everything.
type Query struct {
	Channel    string
	Topic      string
	Title      string
	SortColumn SortColumn
	SortOrder  SortOrder
	Precedence Precedence
}

type criterion struct {
	index []string
	key   string
}

// criteria returns the non-empty filters in scan order.
func (q Query) criteria(s *Snapshot) []criterion {
	f := newFolder()
	channel := criterion{s.byChannel, f.fold(q.Channel)}
	topic := criterion{s.byTopic, f.fold(q.Topic)}
	title := criterion{s.byTitle, f.fold(q.Title)}

	ordered := []criterion{channel, topic, title}
	if q.Precedence == TitleFirst {
		ordered = []criterion{title, topic, channel}
	}
	return slices.DeleteFunc(ordered, func(c criterion) bool {
		return c.key == ""
	})
}

// Query returns the ids of the matching shows in result order.
func (s *Snapshot) Query(q Query) []ID {
	var ids []ID

	criteria := q.criteria(s)
	if len(criteria) == 0 {
		ids = make([]ID, len(s.shows))
		for i := range ids {
			ids[i] = i
		}
	} else {
		ids = collect(criteria[0])
		for _, c := range criteria[1:] {
			ids = filter(ids, c)
		}
	}

	s.sort(ids, q.SortColumn, q.SortOrder)
	return ids
}

func collect(c criterion) []ID {
	var ids []ID
	for i, value := range c.index {
		if strings.Contains(value, c.key) {
			ids = append(ids, i)
		}
	}
	return ids
}

func filter(ids []ID, c criterion) []ID {
	return slices.DeleteFunc(ids, func(id ID) bool {
		return !strings.Contains(c.index[id], c.key)
	})
}

func (s *Snapshot) sort(ids []ID, column SortColumn, order SortOrder) {
	if column.textual() {
		var text []string
		switch column {
		case SortByChannel:
			text = s.byChannel
		case SortByTopic:
			text = s.byTopic
		default:
			text = s.byTitle
		}

		slices.SortStableFunc(ids, func(a, b ID) int {
			c := cmp.Compare(text[a], text[b])
			if order == Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
			return newestFirst(s.shows[a], s.shows[b])
		})
		return
	}

	var key func(shows.Show) int64
	switch column {
	case SortByDate:
		key = func(show shows.Show) int64 { return int64(show.Date) }
	case SortByTime:
		key = func(show shows.Show) int64 { return int64(show.Time) }
	default:
		key = func(show shows.Show) int64 { return int64(show.Duration) }
	}

	slices.SortStableFunc(ids, func(a, b ID) int {
		c := cmp.Compare(key(s.shows[a]), key(s.shows[b]))
		if order == Descending {
			return -c
		}
		return c
	})
}

func newestFirst(a, b shows.Show) int {
	if c := cmp.Compare(b.Date, a.Date); c != 0 {
		return c
	}
	return cmp.Compare(b.Time, a.Time)
}
