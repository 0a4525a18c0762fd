// Package bus connects the service to the topic-routed message bus.
// Delivery is best effort: the controller logs and swallows publish errors.
package bus

import "context"

// Publisher sends one payload to an exchange under a routing key.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// Nop is the Publisher used when no bus is configured. It drops everything.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, []byte) error { return nil }
