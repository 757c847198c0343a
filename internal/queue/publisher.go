package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to RabbitMQ.  A connection is dialed per publish;
// status changes are infrequent enough that pooling is not needed.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// PublishStatusChanged publishes ev as a persistent JSON message.  The
// caller owns logging of the returned error.
func (p *Publisher) PublishStatusChanged(ctx context.Context, ev BookingStatusChanged) error {
	if err := p.publish(ctx, StatusChangedQueue, ev); err != nil {
		return fmt.Errorf("publish %s for booking %s: %w", ev.To, ev.BookingID, err)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", queue, err)
	}

	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Noop discards events.  It is used when no broker is configured.
type Noop struct{}

func (Noop) PublishStatusChanged(context.Context, BookingStatusChanged) error { return nil }
