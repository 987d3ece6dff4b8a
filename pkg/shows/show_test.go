package shows_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/mediathek/pkg/shows"
)

func TestAlternateURLs(t *testing.T) {
	show := shows.Show{
		URL:            "https://cdn.example.org/video/hd/clip.mp4",
		URLSmallOffset: 30,
		URLSmallSuffix: "sd/clip.mp4",
		URLLargeOffset: 200,
		URLLargeSuffix: "_4k.mp4",
	}

	tests := []struct {
		name string
		kind shows.URLKind
		want string
	}{
		{"small replaces tail", shows.URLSmall, "https://cdn.example.org/video/sd/clip.mp4"},
		{"large offset is clamped", shows.URLLarge, "https://cdn.example.org/video/hd/clip.mp4_4k.mp4"},
		{"default", shows.URLDefault, show.URL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, show.PreferredURL(tt.kind))
		})
	}
}

func TestPreferredURLFallsBack(t *testing.T) {
	show := shows.Show{URL: "https://example.org/a.mp4", URLSmallOffset: 10}

	assert.Empty(t, show.URLSmall())
	assert.Empty(t, show.URLLarge())
	assert.Equal(t, show.URL, show.PreferredURL(shows.URLSmall))
	assert.Equal(t, show.URL, show.PreferredURL(shows.URLLarge))
}

func TestKey(t *testing.T) {
	a := shows.Show{Channel: "ARD", Topic: "News", Title: "Morning", URL: "u", Description: "one"}
	b := a
	b.Description = "two"
	b.Date = shows.NewDate(2024, 1, 2)

	assert.Equal(t, a.Key(), b.Key())

	b.URL = "v"
	assert.NotEqual(t, a.Key(), b.Key())

	seen := map[shows.Key]bool{a.Key(): true}
	assert.True(t, seen[shows.Show{Channel: "ARD", Topic: "News", Title: "Morning", URL: "u"}.Key()])
}

func TestParseURLKind(t *testing.T) {
	assert.Equal(t, shows.URLSmall, shows.ParseURLKind("small"))
	assert.Equal(t, shows.URLLarge, shows.ParseURLKind("large"))
	assert.Equal(t, shows.URLDefault, shows.ParseURLKind("huge"))
}

func TestDate(t *testing.T) {
	d := shows.NewDate(2024, time.January, 2)

	assert.Equal(t, "2024-01-02", d.String())
	assert.Equal(t, d+1, shows.NewDate(2024, time.January, 3))
	assert.Equal(t, d, shows.DateOf(time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)))
	assert.True(t, shows.Date(0).IsZero())
	assert.Empty(t, shows.Date(0).String())

	show := shows.Show{Date: d, Time: 20*time.Hour + 15*time.Minute}
	assert.Equal(t, time.Date(2024, 1, 2, 20, 15, 0, 0, time.UTC), show.Timestamp())
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "01:02:03", shows.FormatClock(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "00:00:00", shows.FormatClock(-time.Second))
}
