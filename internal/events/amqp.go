package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/jonathan/careerpilot/internal/metrics"
)

// Exchange is the topic exchange lifecycle events are published on.
const Exchange = "candidate_events"

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events to a RabbitMQ topic exchange. Publish
// failures are logged and returned; callers treat them as non-fatal.
type AMQPPublisher struct {
	conn    *amqp.Connection
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu sync.Mutex
	ch channel
}

// DialAMQP connects to url and declares the durable events exchange.
func DialAMQP(url string, logger *zap.Logger, m *metrics.Metrics) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange: %w", err)
	}

	p := newAMQPPublisher(ch, logger, m)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch channel, logger *zap.Logger, m *metrics.Metrics) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{ch: ch, logger: logger.Named("events"), metrics: m}
}

// Publish implements Publisher. amqp channels are not safe for concurrent
// publishing, so sends are serialized.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", e.Type, err)
	}

	p.mu.Lock()
	err = p.ch.Publish(Exchange, e.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	})
	p.mu.Unlock()

	p.metrics.EventPublished(e.Type, err)
	if err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("type", e.Type),
			zap.String("candidate_id", e.CandidateID),
			zap.Error(err),
		)
		return fmt.Errorf("events: publish %s: %w", e.Type, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
