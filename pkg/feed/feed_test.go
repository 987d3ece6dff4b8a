package feed_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/feed"
	"github.com/agentstation/mediathek/pkg/shows"
)

const list = `{
  "Filmliste": ["09.03.2024, 18:40", "09.03.2024, 17:40", "3", "MSearch [Vers.: 3.1.223]", "0f3c"],
  "Filmliste": ["Sender","Thema","Titel","Datum","Zeit","Dauer","Größe [MB]","Beschreibung","Url","Website","Url Untertitel","Url RTMP","Url Klein","Url RTMP Klein","Url HD","Url RTMP HD","DatumL","Url History","Geo","neu"],
  "X": ["ARD","Tagesschau","Tagesschau 20:00 Uhr","09.03.2024","20:00:00","00:15:02","550","Die Nachrichten.","https://media.example.org/ts/hd.mp4","https://www.tagesschau.de","","","29|sd.mp4","","29|fhd.mp4","","1710010800","","DE-AT-CH","false"],
  "X": ["","","Tagesschau 17:00 Uhr","09.03.2024","17:00:00","00:10:00","300","","https://media.example.org/ts/17.mp4","","","","","","","","1710000000","","","false"],
  "X": ["","Sportschau","Bundesliga","09.03.2024","18:30:00","01:00:00","900","","https://media.example.org/sport.mp4","","","","https://other.example.org/small.mp4","","","","","","","false"],
  "X": ["ZDF","heute","heute 19 Uhr","kaputt","xx:yy","1:2","","","https://media.example.org/heute.mp4","","","","","","","","","","","false"],
  "X": ["ZDF","heute","ohne URL","09.03.2024","19:00:00","00:20:00","","","","","","","","","","","","","",""],
  "X": ["ZDF","zu kurz"]
}`

func parse(t *testing.T, doc string) ([]shows.Show, feed.ParseStats) {
	t.Helper()
	var got []shows.Show
	stats, err := feed.Parse(strings.NewReader(doc), feed.SinkFunc(func(s shows.Show) {
		got = append(got, s)
	}))
	require.NoError(t, err)
	return got, stats
}

func TestParse(t *testing.T) {
	got, stats := parse(t, list)

	require.Len(t, got, 4)
	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, "09.03.2024, 18:40", stats.Created)

	first := got[0]
	assert.Equal(t, "ARD", first.Channel)
	assert.Equal(t, "Tagesschau", first.Topic)
	assert.Equal(t, "Tagesschau 20:00 Uhr", first.Title)
	assert.Equal(t, shows.NewDate(2024, time.March, 9), first.Date)
	assert.Equal(t, 20*time.Hour, first.Time)
	assert.Equal(t, 15*time.Minute+2*time.Second, first.Duration)
	assert.Equal(t, "Die Nachrichten.", first.Description)
	assert.Equal(t, "https://www.tagesschau.de", first.Website)
	assert.Equal(t, "https://media.example.org/ts/sd.mp4", first.URLSmall())
	assert.Equal(t, "https://media.example.org/ts/fhd.mp4", first.URLLarge())
}

func TestParseInheritsChannelAndTopic(t *testing.T) {
	got, _ := parse(t, list)

	assert.Equal(t, "ARD", got[1].Channel)
	assert.Equal(t, "Tagesschau", got[1].Topic)
	assert.Equal(t, "ARD", got[2].Channel)
	assert.Equal(t, "Sportschau", got[2].Topic)
}

func TestParseToleratesBadFields(t *testing.T) {
	got, _ := parse(t, list)

	heute := got[3]
	assert.True(t, heute.Date.IsZero())
	assert.Zero(t, heute.Time)
	assert.Zero(t, heute.Duration)
	assert.Equal(t, "https://other.example.org/small.mp4", got[2].URLSmall())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not an object", `["X"]`},
		{"truncated", `{"X": ["ARD"`},
		{"bad row", `{"X": {"channel": "ARD"}}`},
		{"no list", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := feed.Parse(strings.NewReader(tt.doc), feed.SinkFunc(func(shows.Show) {}))
			require.Error(t, err)
			assert.True(t, errors.IsCorrupt(err), "got %v", err)
		})
	}
}

func TestParseSkipsUnknownKeys(t *testing.T) {
	doc := `{"Filmliste": ["now"], "extra": {"nested": [1, 2]}, "X": ["3sat","nano","Folge 1","","","","","","https://example.org/n.mp4","","","","","",""]}`

	got, stats := parse(t, doc)
	require.Len(t, got, 1)
	assert.Equal(t, "3sat", got[0].Channel)
	assert.Equal(t, 0, stats.Skipped)
}

func TestDecompress(t *testing.T) {
	var packed bytes.Buffer
	w, err := xz.NewWriter(&packed)
	require.NoError(t, err)
	_, err = io.WriteString(w, list)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.True(t, feed.IsXZ(packed.Bytes()))
	assert.False(t, feed.IsXZ([]byte(list)))

	for name, data := range map[string][]byte{
		"xz":    packed.Bytes(),
		"plain": []byte(list),
	} {
		t.Run(name, func(t *testing.T) {
			r, err := feed.Decompress(data)
			require.NoError(t, err)

			var count int
			_, err = feed.Parse(r, feed.SinkFunc(func(shows.Show) { count++ }))
			require.NoError(t, err)
			assert.Equal(t, 4, count)
		})
	}
}
