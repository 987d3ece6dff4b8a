package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBroadcaster(t *testing.T) (*Broadcaster, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)
	return b, cancel
}

func TestBroadcasterFanOut(t *testing.T) {
	b, _ := runBroadcaster(t)

	c, missed, ok := b.subscribe("")
	require.True(t, ok)
	assert.Empty(t, missed)
	assert.Equal(t, 1, b.ClientCount())

	b.Broadcast(Event{Event: "catalog.updated", Data: map[string]any{"shows": 3}})

	select {
	case received := <-c:
		assert.Equal(t, "catalog.updated", received.Event)
	case <-time.After(time.Second):
		t.Fatal("client did not receive event")
	}

	b.unsubscribe(c)
	assert.Zero(t, b.ClientCount())
}

func TestBroadcasterReplaysAfterLastEventID(t *testing.T) {
	b, _ := runBroadcaster(t)
	for _, id := range []string{"1", "2", "3"} {
		b.Broadcast(Event{Event: "catalog.updated", ID: id})
	}

	_, missed, ok := b.subscribe("1")
	require.True(t, ok)
	require.Len(t, missed, 2)
	assert.Equal(t, "2", missed[0].ID)
	assert.Equal(t, "3", missed[1].ID)

	_, missed, _ = b.subscribe("not-a-number")
	assert.Empty(t, missed)
}

func TestBroadcasterHistoryIsBounded(t *testing.T) {
	b, _ := runBroadcaster(t)
	for range replay + 10 {
		b.Broadcast(Event{Event: "catalog.updated"})
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	assert.Len(t, b.history, replay)
}

func TestBroadcasterShutdown(t *testing.T) {
	b, cancel := runBroadcaster(t)

	c, _, ok := b.subscribe("")
	require.True(t, ok)

	cancel()
	<-b.done
	assert.Zero(t, b.ClientCount())
	_, open := <-c
	assert.False(t, open)

	_, _, ok = b.subscribe("")
	assert.False(t, ok)
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b, _ := runBroadcaster(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readFrame := func() string {
		var frame strings.Builder
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if line == "\n" {
				return frame.String()
			}
			frame.WriteString(line)
		}
	}

	assert.Contains(t, readFrame(), "event: connected")

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	b.Broadcast(Event{Event: "catalog.updated", ID: "42", Data: map[string]any{"shows": 3}})

	frame := readFrame()
	assert.Contains(t, frame, "event: catalog.updated\n")
	assert.Contains(t, frame, "id: 42\n")
	assert.Contains(t, frame, `data: {"shows":3}`)
}

func TestServeHTTPAfterShutdown(t *testing.T) {
	b, cancel := runBroadcaster(t)
	cancel()
	<-b.done

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
