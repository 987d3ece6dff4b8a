package snapshot_test

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

func show(channel, topic, title string, date shows.Date, clock time.Duration) shows.Show {
	return shows.Show{
		Channel: channel,
		Topic:   topic,
		Title:   title,
		Date:    date,
		Time:    clock,
		URL:     "https://example.org/" + channel + "/" + title,
	}
}

func fixture() []shows.Show {
	return []shows.Show{
		show("ZDF", "Nachrichten", "heute", shows.NewDate(2024, 1, 1), 19*time.Hour),
		show("ARD", "News", "Morning", shows.NewDate(2024, 1, 2), 8*time.Hour),
		show("ARD", "News", "Evening", shows.NewDate(2024, 1, 1), 20*time.Hour),
		show("arte", "Kultur", "Metropolis", shows.NewDate(2024, 1, 3), 21*time.Hour),
		show("ARD", "Sport", "Sportschau", shows.NewDate(2024, 1, 2), 18*time.Hour),
		show("ARTE.de", "Kultur", "Tracks", shows.NewDate(2024, 1, 2), 22*time.Hour),
		show("ZDF", "Nachrichten", "heute journal", shows.NewDate(2024, 1, 1), 22*time.Hour),
	}
}

func commitFull(list []shows.Show) *snapshot.Snapshot {
	tx := snapshot.NewFull()
	for _, s := range list {
		tx.Append(s)
	}
	return tx.Commit()
}

func TestEmpty(t *testing.T) {
	s := snapshot.Empty()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Channels())
	assert.Empty(t, s.Topics(""))
	assert.Empty(t, s.Query(snapshot.Query{}))
	assert.Same(t, s, snapshot.NewFull().Commit())
}

func TestCanonicalOrder(t *testing.T) {
	s := commitFull(fixture())
	list := s.Shows()
	require.Len(t, list, len(fixture()))

	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		if prev.Channel != cur.Channel {
			assert.Less(t, prev.Channel, cur.Channel)
			continue
		}
		assert.True(t, prev.Timestamp().Compare(cur.Timestamp()) >= 0,
			"%s at %d should not be older than %s", prev.Title, i-1, cur.Title)
	}

	assert.Equal(t, "Sportschau", list[0].Title)
	assert.Equal(t, "Morning", list[1].Title)
	assert.Equal(t, "Evening", list[2].Title)
}

func TestIndicesAlignWithShows(t *testing.T) {
	s := commitFull(fixture())

	for id, sh := range s.All {
		for _, q := range []snapshot.Query{
			{Channel: sh.Channel},
			{Topic: sh.Topic},
			{Title: sh.Title},
		} {
			assert.Contains(t, s.Query(q), id)
		}
	}
}

func TestChannels(t *testing.T) {
	s := commitFull(fixture())

	channels := s.Channels()
	assert.Equal(t, []string{"ARD", "ARTE.de", "ZDF", "arte"}, channels)
	assert.True(t, slices.IsSorted(channels))

	// callers cannot modify the snapshot
	channels[0] = "changed"
	assert.Equal(t, "ARD", s.Channels()[0])
}

func TestTopics(t *testing.T) {
	s := commitFull(append(fixture(),
		show("ard", "Kinder", "Maus", shows.NewDate(2024, 1, 1), 9*time.Hour),
	))

	tests := []struct {
		name    string
		channel string
		want    []string
	}{
		{"exact channel", "ARD", []string{"Kinder", "News", "Sport"}},
		{"case-insensitive", "aRd", []string{"Kinder", "News", "Sport"}},
		{"no substring match", "AR", []string{}},
		{"folded channel", "ARTE", []string{"Kultur"}},
		{"unknown", "3sat", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Topics(tt.channel))
		})
	}

	t.Run("all topics", func(t *testing.T) {
		assert.Equal(t,
			[]string{"Kinder", "News", "Sport", "Kultur", "Kultur", "Nachrichten"},
			s.Topics(""))
	})
}

func TestFoldingIsUnicodeAware(t *testing.T) {
	s := commitFull([]shows.Show{
		show("ÖRF", "Ärzte", "Straße", shows.NewDate(2024, 1, 1), 0),
		show("O\u0308RF", "Ärzte", "Straßenfeger", shows.NewDate(2024, 1, 1), 0),
	})

	assert.Len(t, s.Query(snapshot.Query{Channel: "örf"}), 2)
	assert.Len(t, s.Query(snapshot.Query{Topic: "ÄRZTE"}), 2)
	assert.Equal(t, []string{"Ärzte"}, s.Topics("öRF"))
	assert.Equal(t, "straße", snapshot.Fold("STRAßE"))
}

func TestShowOutOfRange(t *testing.T) {
	s := commitFull(fixture())

	_, err := s.Show(len(fixture()))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = s.Show(-1)
	assert.True(t, errors.IsNotFound(err))

	got, err := s.Show(0)
	require.NoError(t, err)
	assert.Equal(t, "ARD", got.Channel)
}

func TestNoDuplicateIdentities(t *testing.T) {
	s := commitFull(fixture())

	seen := make(map[shows.Key]bool)
	for _, sh := range s.Shows() {
		assert.False(t, seen[sh.Key()], "duplicate %v", sh.Key())
		seen[sh.Key()] = true
	}
}
