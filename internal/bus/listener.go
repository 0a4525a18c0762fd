package bus

import (
	"context"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fairyhunter13/product-catalog-service/internal/obs"
)

// Listener consumes the notification queue and logs each delivery. It does
// no processing; other services in the fabric act on the events.
type Listener struct {
	ch    *amqp.Channel
	queue string
}

// NewListener declares the durable queue, binds it to the exchange with the
// given key, and opens a dedicated consumer channel on the connection.
func NewListener(r *Rabbit, exchange, queue, bindingKey string) (*Listener, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open consumer channel")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, errors.Wrapf(err, "declare queue %s", queue)
	}
	if err := ch.QueueBind(queue, bindingKey, exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, errors.Wrapf(err, "bind queue %s", queue)
	}
	return &Listener{ch: ch, queue: queue}, nil
}

// Run consumes until ctx is cancelled or the channel closes.
func (l *Listener) Run(ctx context.Context) error {
	deliveries, err := l.ch.ConsumeWithContext(ctx, l.queue, "", true, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "consume %s", l.queue)
	}
	obs.Logger.Info("listener_started", "queue", l.queue)
	for {
		select {
		case <-ctx.Done():
			return l.ch.Close()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			obs.Logger.Info("event_received",
				"queue", l.queue,
				"routing_key", d.RoutingKey,
				"body", string(d.Body),
			)
		}
	}
}
