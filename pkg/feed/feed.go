// Package feed parses MediathekView show lists ("Filmliste").
//
// A list is a JSON object with repeated keys. The first "Filmliste" entry
// carries list metadata, the second the column names, and every "X" entry is
// one show row. Rows leave channel and topic empty when they repeat the
// previous row's value.
package feed

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
)

const format = "filmliste"

// Sink receives parsed shows. snapshot.Transaction implements it.
type Sink interface {
	Append(show shows.Show)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(shows.Show)

// Append calls f.
func (f SinkFunc) Append(show shows.Show) { f(show) }

// row columns
const (
	colChannel     = 0
	colTopic       = 1
	colTitle       = 2
	colDate        = 3
	colTime        = 4
	colDuration    = 5
	colDescription = 7
	colURL         = 8
	colWebsite     = 9
	colURLSmall    = 12
	colURLLarge    = 14

	minColumns = colURLLarge + 1
)

// ParseStats summarises a parsed list.
type ParseStats struct {
	Rows    int    // shows passed to the sink
	Skipped int    // rows without enough columns or without a URL
	Created string // creation stamp from the list metadata
}

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// IsXZ reports whether data starts with the xz stream magic.
func IsXZ(data []byte) bool {
	return bytes.HasPrefix(data, xzMagic)
}

// Decompress returns a reader over the plain list, unpacking xz when needed.
func Decompress(data []byte) (io.Reader, error) {
	if !IsXZ(data) {
		return bytes.NewReader(data), nil
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParseError("xz", "", "invalid xz stream", err)
	}
	return r, nil
}

// Parse reads a list from r and appends every show to sink.
func Parse(r io.Reader, sink Sink) (ParseStats, error) {
	var stats ParseStats

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err == io.EOF {
		return stats, errors.NewParseError(format, "", "empty document", nil)
	}
	if err != nil {
		return stats, wrap(dec, "invalid document", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return stats, wrap(dec, "document is not an object", nil)
	}

	var (
		prev      shows.Show
		metaSeen  bool
		row       []string
		parsedAny bool
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return stats, wrap(dec, "invalid key", err)
		}
		key, _ := tok.(string)

		switch key {
		case "X":
			row = row[:0]
			if err := dec.Decode(&row); err != nil {
				return stats, wrap(dec, "invalid show row", err)
			}
			parsedAny = true

			show, ok := convert(row, &prev)
			if !ok {
				stats.Skipped++
				continue
			}
			sink.Append(show)
			stats.Rows++

		case "Filmliste":
			var meta []string
			if err := dec.Decode(&meta); err != nil {
				return stats, wrap(dec, "invalid list header", err)
			}
			if !metaSeen && len(meta) > 0 {
				stats.Created = meta[0]
			}
			metaSeen = true

		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return stats, wrap(dec, "invalid value", err)
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return stats, wrap(dec, "unterminated document", err)
	}
	if !parsedAny && !metaSeen {
		return stats, errors.NewParseError(format, "", "document holds no list", nil)
	}
	return stats, nil
}

func wrap(dec *json.Decoder, message string, err error) error {
	return &errors.ParseError{
		Format:  format,
		Offset:  dec.InputOffset(),
		Message: message,
		Err:     err,
	}
}

// convert maps a row to a show. prev carries channel and topic between rows.
func convert(row []string, prev *shows.Show) (shows.Show, bool) {
	if len(row) < minColumns {
		return shows.Show{}, false
	}

	channel := row[colChannel]
	if channel == "" {
		channel = prev.Channel
	}
	topic := row[colTopic]
	if topic == "" {
		topic = prev.Topic
	}
	prev.Channel, prev.Topic = channel, topic

	if row[colURL] == "" {
		return shows.Show{}, false
	}

	show := shows.Show{
		Channel:     channel,
		Topic:       topic,
		Title:       row[colTitle],
		Date:        parseDate(row[colDate]),
		Time:        parseClock(row[colTime]),
		Duration:    parseClock(row[colDuration]),
		Description: row[colDescription],
		Website:     row[colWebsite],
		URL:         row[colURL],
	}
	show.URLSmallOffset, show.URLSmallSuffix = parseAlternate(row[colURLSmall])
	show.URLLargeOffset, show.URLLargeSuffix = parseAlternate(row[colURLLarge])
	return show, true
}

// parseDate accepts dd.mm.yyyy and returns the zero Date otherwise.
func parseDate(s string) shows.Date {
	t, err := time.Parse("02.01.2006", s)
	if err != nil {
		return 0
	}
	return shows.DateOf(t)
}

// parseClock accepts hh:mm:ss and returns zero otherwise.
func parseClock(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	var total time.Duration
	for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0
		}
		total += time.Duration(n) * unit
	}
	return total
}

// parseAlternate splits "offset|suffix". A value without a separator is a
// complete URL and is stored with offset zero.
func parseAlternate(s string) (uint16, string) {
	if s == "" {
		return 0, ""
	}
	offset, suffix, found := strings.Cut(s, "|")
	if !found {
		return 0, s
	}
	n, err := strconv.Atoi(offset)
	if err != nil || n < 0 {
		return 0, suffix
	}
	return uint16(min(n, 1<<16-1)), suffix
}
