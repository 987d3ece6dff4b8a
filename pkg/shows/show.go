// Package shows defines the broadcast show record held by the catalog.
//
// A Show is a plain value. Once constructed it is passed and stored by value
// and never modified, so any number of goroutines may read it concurrently.
package shows

import (
	"time"
)

// URLKind selects which media quality a caller prefers.
type URLKind string

// URL kinds.
const (
	URLDefault URLKind = "default"
	URLSmall   URLKind = "small"
	URLLarge   URLKind = "large"
)

// ParseURLKind converts a string to a URLKind. Unknown values map to URLDefault.
func ParseURLKind(s string) URLKind {
	switch URLKind(s) {
	case URLSmall:
		return URLSmall
	case URLLarge:
		return URLLarge
	default:
		return URLDefault
	}
}

// Key is the identity of a show: two records with equal keys describe the same broadcast.
type Key struct {
	Channel string
	Topic   string
	Title   string
	URL     string
}

// Show is one catalog entry.
//
// @immutable
type Show struct {
	Channel string `json:"channel" yaml:"channel"`
	Topic   string `json:"topic" yaml:"topic"`
	Title   string `json:"title" yaml:"title"`

	Date     Date          `json:"date" yaml:"date"`
	Time     time.Duration `json:"time" yaml:"time"` // since midnight
	Duration time.Duration `json:"duration" yaml:"duration"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Website     string `json:"website,omitempty" yaml:"website,omitempty"`

	URL            string `json:"url" yaml:"url"`
	URLSmallOffset uint16 `json:"url_small_offset,omitempty" yaml:"url_small_offset,omitempty"`
	URLSmallSuffix string `json:"url_small_suffix,omitempty" yaml:"url_small_suffix,omitempty"`
	URLLargeOffset uint16 `json:"url_large_offset,omitempty" yaml:"url_large_offset,omitempty"`
	URLLargeSuffix string `json:"url_large_suffix,omitempty" yaml:"url_large_suffix,omitempty"`
}

// Key returns the identity tuple of the show.
func (s Show) Key() Key {
	return Key{
		Channel: s.Channel,
		Topic:   s.Topic,
		Title:   s.Title,
		URL:     s.URL,
	}
}

// URLSmall returns the low quality media URL, or "" if the show has none.
func (s Show) URLSmall() string {
	return alternateURL(s.URL, s.URLSmallOffset, s.URLSmallSuffix)
}

// URLLarge returns the high quality media URL, or "" if the show has none.
func (s Show) URLLarge() string {
	return alternateURL(s.URL, s.URLLargeOffset, s.URLLargeSuffix)
}

// PreferredURL returns the URL of the requested kind, falling back to URL.
func (s Show) PreferredURL(kind URLKind) string {
	var u string
	switch kind {
	case URLSmall:
		u = s.URLSmall()
	case URLLarge:
		u = s.URLLarge()
	}
	if u == "" {
		return s.URL
	}
	return u
}

// Timestamp combines date and time of day into a UTC instant.
func (s Show) Timestamp() time.Time {
	return s.Date.Time().Add(s.Time)
}

// alternateURL keeps the first offset bytes of base and appends suffix.
func alternateURL(base string, offset uint16, suffix string) string {
	if suffix == "" {
		return ""
	}
	n := min(int(offset), len(base))
	return base[:n] + suffix
}
