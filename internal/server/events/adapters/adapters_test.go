package adapters

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mediathek/internal/server/events"
	"github.com/agentstation/mediathek/internal/server/sse"
	ws "github.com/agentstation/mediathek/internal/server/websocket"
	"github.com/agentstation/mediathek/pkg/errors"
)

type fakeChannel struct {
	mu       sync.Mutex
	exchange string
	keys     []string
	messages []amqp.Publishing
	failWith error
	closed   int
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.exchange = exchange
	f.keys = append(f.keys, key)
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func testEvent() events.Event {
	return events.Event{
		Type:      events.CatalogUpdated,
		Timestamp: time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC),
		Data:      map[string]any{"shows": 3, "kind": "full"},
	}
}

func TestAMQPSubscriberPublishesJSON(t *testing.T) {
	logger := zerolog.Nop()
	ch := &fakeChannel{}
	sub := newAMQPSubscriber(ch, "mediathek.events", &logger)

	require.NoError(t, sub.Send(testEvent()))

	require.Len(t, ch.messages, 1)
	assert.Equal(t, "mediathek.events", ch.exchange)
	assert.Equal(t, []string{"catalog.updated"}, ch.keys)

	msg := ch.messages[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "catalog.updated", msg.Type)

	var decoded struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "catalog.updated", decoded.Type)
	assert.Equal(t, "full", decoded.Data["kind"])
}

func TestAMQPSubscriberPublishFailure(t *testing.T) {
	logger := zerolog.Nop()
	sub := newAMQPSubscriber(&fakeChannel{failWith: stderrors.New("channel closed")}, "x", &logger)

	err := sub.Send(testEvent())
	require.Error(t, err)
	var resErr *errors.ResourceError
	assert.ErrorAs(t, err, &resErr)
}

func TestAMQPSubscriberClose(t *testing.T) {
	logger := zerolog.Nop()
	ch := &fakeChannel{}
	sub := newAMQPSubscriber(ch, "x", &logger)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 1, ch.closed)

	assert.ErrorIs(t, sub.Send(testEvent()), errors.ErrCanceled)
	assert.Empty(t, ch.messages)
}

func TestStreamSubscribers(t *testing.T) {
	logger := zerolog.Nop()

	sseSub := NewSSESubscriber(sse.NewBroadcaster(&logger))
	wsSub := NewWebSocketSubscriber(ws.NewHub(&logger))

	for _, sub := range []events.Subscriber{sseSub, wsSub} {
		assert.NoError(t, sub.Send(testEvent()))
		assert.NoError(t, sub.Send(events.Event{Type: events.CatalogUpdateFailed}))
		assert.NoError(t, sub.Close())
		assert.NoError(t, sub.Close())
	}
}

func TestStreamSubscribersDeliverThroughBroker(t *testing.T) {
	logger := zerolog.Nop()
	hub := ws.NewHub(&logger)
	broker := events.NewBroker(&logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	go broker.Run(ctx)

	ch := &fakeChannel{}
	broker.Subscribe(newAMQPSubscriber(ch, "x", &logger))
	broker.Subscribe(NewWebSocketSubscriber(hub))
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 2 }, time.Second, 5*time.Millisecond)

	broker.Publish(events.CatalogUpdated, map[string]any{"shows": 1})
	require.Eventually(t, func() bool {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		return len(ch.messages) == 1
	}, time.Second, 5*time.Millisecond)
}
