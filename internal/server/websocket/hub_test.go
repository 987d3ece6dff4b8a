package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubBroadcastReachesClients(t *testing.T) {
	hub, _ := runHub(t)

	c1 := NewClient("test-1", hub, nil)
	c2 := NewClient("test-2", hub, nil)
	hub.Register(c1)
	hub.Register(c2)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(Message{Type: "catalog.updated", Timestamp: time.Now()})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "catalog.updated", msg.Type)
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive message", c.ID())
		}
	}
}

func TestHubRegisterBeforeRun(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)

	done := make(chan struct{})
	go func() {
		hub.Register(NewClient("early", hub, nil))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked before Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub, _ := runHub(t)

	slow := NewClient("slow", hub, nil)
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for range cap(slow.send) + 1 {
		hub.Broadcast(Message{Type: "tick"})
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, cancel := runHub(t)

	c := NewClient("test", hub, nil)
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open)
}

func TestHubOverRealConnection(t *testing.T) {
	hub, _ := runHub(t)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient("remote", hub, conn)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.Broadcast(Message{Type: "catalog.updated", Data: map[string]any{"shows": 3}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "catalog.updated", msg.Type)

	_ = conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClientSubscriptionFiltersTypes(t *testing.T) {
	hub, _ := runHub(t)

	c := NewClient("filtered", hub, nil)
	hub.Register(c)
	c.subscribe([]string{"catalog.update_failed"})

	hub.Broadcast(Message{Type: "catalog.updated"})
	hub.Broadcast(Message{Type: "catalog.update_failed"})

	select {
	case msg := <-c.send:
		assert.Equal(t, "catalog.update_failed", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("subscribed type not delivered")
	}
	assert.Empty(t, c.send)

	c.subscribe(nil)
	assert.True(t, c.wants("anything"))
}

func TestRegisterAfterShutdownClosesClient(t *testing.T) {
	hub, cancel := runHub(t)
	cancel()
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return hub.stopped
	}, time.Second, 5*time.Millisecond)

	c := NewClient("late", hub, nil)
	hub.Register(c)
	_, open := <-c.send
	assert.False(t, open)
	assert.Zero(t, hub.ClientCount())
}
