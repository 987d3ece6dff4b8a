package adapters

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/agentstation/mediathek/internal/server/events"
	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
)

var _ events.Subscriber = (*AMQPSubscriber)(nil)

// publisher is the part of *amqp.Channel the subscriber uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSubscriber publishes events as JSON to a fanout exchange.
type AMQPSubscriber struct {
	exchange string
	logger   *zerolog.Logger

	mu     sync.Mutex
	ch     publisher
	conn   *amqp.Connection
	closed bool
}

// NewAMQPSubscriber dials url and declares a durable fanout exchange.
func NewAMQPSubscriber(url, exchange string, logger *zerolog.Logger) (*AMQPSubscriber, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.NewConfigError("amqp", "dial failed", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.NewConfigError("amqp", "channel open failed", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		amqp.ExchangeFanout,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.NewConfigError("amqp", "exchange declare failed", err)
	}

	s := newAMQPSubscriber(ch, exchange, logger)
	s.conn = conn
	return s, nil
}

func newAMQPSubscriber(ch publisher, exchange string, logger *zerolog.Logger) *AMQPSubscriber {
	return &AMQPSubscriber{exchange: exchange, ch: ch, logger: logger}
}

// Send publishes the event. The routing key is the event type.
func (a *AMQPSubscriber) Send(event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.WrapResource("encode", "event", string(event.Type), err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errors.ErrCanceled
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp.UTC(),
		Type:         string(event.Type),
		Body:         body,
	}
	if err := a.ch.PublishWithContext(ctx, a.exchange, string(event.Type), false, false, pub); err != nil {
		return errors.WrapResource("publish", "event", string(event.Type), err)
	}

	a.logger.Debug().
		Str("exchange", a.exchange).
		Str("event_type", string(event.Type)).
		Int("bytes", len(body)).
		Dur("age", time.Since(event.Timestamp)).
		Msg("Event published to AMQP")
	return nil
}

// Close closes the channel and the connection. It is safe to call twice.
func (a *AMQPSubscriber) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	err := a.ch.Close()
	if a.conn != nil {
		if cerr := a.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
