// Package messaging wraps the brokers notifications can be dispatched through.
package messaging

import "context"

// Broker publishes opaque message bodies to a named destination: a queue on
// RabbitMQ, a topic on Kafka.
type Broker interface {
	Publish(ctx context.Context, dest, key string, body []byte) error
	Close() error
}
