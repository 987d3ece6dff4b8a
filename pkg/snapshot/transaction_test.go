package snapshot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mediathek/pkg/shows"
	"github.com/agentstation/mediathek/pkg/snapshot"
)

func TestFullReplacesCatalog(t *testing.T) {
	prev := commitFull(fixture())

	tx := snapshot.NewFull()
	tx.Append(show("3sat", "Kultur", "Kulturzeit", shows.NewDate(2024, 2, 1), 19*time.Hour))
	assert.Equal(t, 1, tx.Len())
	next := tx.Commit()

	assert.Equal(t, 1, next.Len())
	assert.Equal(t, []string{"3sat"}, next.Channels())
	assert.Equal(t, len(fixture()), prev.Len(), "previous snapshot must not change")
}

func TestFullKeepsEveryAppend(t *testing.T) {
	s := commitFull(fixture())
	assert.ElementsMatch(t, fixture(), s.Shows())
}

func TestPartialReplacesMatchingIdentity(t *testing.T) {
	prev := commitFull(fixture())

	updated := show("ARD", "News", "Morning", shows.NewDate(2024, 1, 2), 8*time.Hour)
	updated.Description = "updated"
	updated.Duration = 15 * time.Minute

	tx := snapshot.NewPartial(prev)
	tx.Append(updated)
	next := tx.Commit()

	require.Equal(t, prev.Len(), next.Len())

	matches := 0
	for _, sh := range next.Shows() {
		if sh.Key() == updated.Key() {
			matches++
			assert.Equal(t, "updated", sh.Description)
			assert.Equal(t, 15*time.Minute, sh.Duration)
		}
	}
	assert.Equal(t, 1, matches)

	// other entries are untouched
	for _, sh := range prev.Shows() {
		if sh.Key() != updated.Key() {
			assert.Contains(t, next.Shows(), sh)
		}
	}

	// the previous snapshot still has the old record
	for _, sh := range prev.Shows() {
		if sh.Key() == updated.Key() {
			assert.Empty(t, sh.Description)
		}
	}
}

func TestPartialAddsNovelIdentity(t *testing.T) {
	prev := commitFull(fixture())

	novel := show("ARD", "News", "Morning", shows.NewDate(2024, 1, 2), 8*time.Hour)
	novel.URL = "https://example.org/other.mp4"

	tx := snapshot.NewPartial(prev)
	tx.Append(novel)
	next := tx.Commit()

	assert.Equal(t, prev.Len()+1, next.Len())
	assert.Contains(t, next.Shows(), novel)
}

func TestPartialDeduplicatesWithinBatch(t *testing.T) {
	tx := snapshot.NewPartial(snapshot.Empty())

	first := show("ARD", "News", "Morning", shows.NewDate(2024, 1, 2), 0)
	second := first
	second.Website = "https://example.org/morning"

	tx.Append(first)
	tx.Append(second)
	next := tx.Commit()

	require.Equal(t, 1, next.Len())
	got, err := next.Show(0)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestPartialOnNilSnapshot(t *testing.T) {
	tx := snapshot.NewPartial(nil)
	tx.Append(show("ARD", "News", "Morning", 0, 0))
	assert.Equal(t, 1, tx.Commit().Len())
}

func TestPartialReindexes(t *testing.T) {
	prev := commitFull(fixture())

	tx := snapshot.NewPartial(prev)
	tx.Append(show("3sat", "Wissen", "nano", shows.NewDate(2024, 1, 5), 18*time.Hour))
	next := tx.Commit()

	assert.Equal(t, "3sat", next.Channels()[0])
	assert.Equal(t, []string{"Wissen"}, next.Topics("3SAT"))
	assert.Len(t, next.Query(snapshot.Query{Title: "nano"}), 1)
	assert.NotContains(t, prev.Channels(), "3sat")
}

func TestTransactionIsSingleUse(t *testing.T) {
	transactions := map[string]func() snapshot.Transaction{
		"full":    func() snapshot.Transaction { return snapshot.NewFull() },
		"partial": func() snapshot.Transaction { return snapshot.NewPartial(snapshot.Empty()) },
	}

	for name, newTx := range transactions {
		t.Run(name, func(t *testing.T) {
			tx := newTx()
			tx.Commit()

			assert.Panics(t, func() { tx.Commit() })
			assert.Panics(t, func() { tx.Append(shows.Show{}) })
		})
	}
}
