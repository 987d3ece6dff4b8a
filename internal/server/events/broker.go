package events

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentstation/mediathek/pkg/constants"
)

// Broker queues published events and delivers them in order to all
// subscribers. Publish never blocks; a full queue drops the event.
type Broker struct {
	queue  chan Event
	logger *zerolog.Logger

	mu   sync.RWMutex
	subs []Subscriber

	accepted atomic.Int64
	dropped  atomic.Int64
}

// NewBroker returns a broker with an empty queue. Call Run to deliver.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		queue:  make(chan Event, constants.ChannelBufferSize),
		logger: logger,
	}
}

// Subscribe adds sub. It may be called before Run.
func (b *Broker) Subscribe(sub Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	n := len(b.subs)
	b.mu.Unlock()
	b.logger.Debug().Int("total_subscribers", n).Msg("Subscriber registered")
}

// Unsubscribe removes and closes sub.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	before := len(b.subs)
	b.subs = slices.DeleteFunc(b.subs, func(s Subscriber) bool { return s == sub })
	removed := len(b.subs) < before
	b.mu.Unlock()
	if removed {
		_ = sub.Close()
	}
}

// Publish stamps and queues an event.
func (b *Broker) Publish(eventType EventType, data any) {
	ev := Event{Type: eventType, Timestamp: time.Now(), Data: data}
	select {
	case b.queue <- ev:
		b.accepted.Add(1)
	default:
		b.dropped.Add(1)
		b.logger.Warn().Str("event_type", string(eventType)).Msg("Event queue full, event dropped")
	}
}

// Run delivers queued events until ctx ends, then closes all subscribers.
// Each event reaches every subscriber before the next one is sent.
func (b *Broker) Run(ctx context.Context) {
	var delivered uint64
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			b.logger.Info().Msg("Event broker shut down")
			return
		case ev := <-b.queue:
			delivered++
			ev.Seq = delivered
			b.deliver(ev)
		}
	}
}

func (b *Broker) deliver(ev Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	var wg conc.WaitGroup
	for _, sub := range subs {
		wg.Go(func() {
			if err := sub.Send(ev); err != nil {
				b.logger.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("Subscriber rejected event")
			}
		})
	}
	wg.Wait()
	b.logger.Debug().Str("event_type", string(ev.Type)).Int("subscribers", len(subs)).Msg("Event delivered")
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Close()
	}
}

// SubscriberCount returns the number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// EventsPublished returns the number of events accepted by Publish.
func (b *Broker) EventsPublished() int64 {
	return b.accepted.Load()
}

// EventsDropped returns the number of events dropped on a full queue.
func (b *Broker) EventsDropped() int64 {
	return b.dropped.Load()
}

// QueueDepth returns the number of events waiting for delivery.
func (b *Broker) QueueDepth() int {
	return len(b.queue)
}
