package bus

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Rabbit is the RabbitMQ-backed Publisher. A single channel is shared behind
// a mutex; amqp channels are not safe for concurrent publishes.
type Rabbit struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

// Dial connects to the broker and opens the publishing channel.
func Dial(url string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	return &Rabbit{conn: conn, ch: ch}, nil
}

// DeclareTopicExchange declares a durable topic exchange. Declaration is
// idempotent across the fabric; every service declares what it uses.
func (r *Rabbit) DeclareTopicExchange(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil)
	return errors.Wrapf(err, "declare exchange %s", name)
}

// Publish sends body as a persistent text message. The body is already a
// serialized JSON string; consumers parse the string body themselves.
func (r *Rabbit) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "text/plain",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	return errors.Wrapf(err, "publish %s to %s", routingKey, exchange)
}

// Close shuts the channel and connection down.
func (r *Rabbit) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ch.Close(); err != nil {
		_ = r.conn.Close()
		return err
	}
	return r.conn.Close()
}
