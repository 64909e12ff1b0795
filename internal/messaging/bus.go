package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultEventsTopic carries integration events.
	DefaultEventsTopic = "sap-integration-events"
	// DefaultRetryTopic carries operator retries.
	DefaultRetryTopic = "sap-integration-order-retry"
	// DefaultGroupID is the consumer group of the dashboard.
	DefaultGroupID = "dashboard-group"
)

// ErrClosed is returned by a bus that has been closed.
var ErrClosed = errors.New("bus closed")

// Message is one record on a topic.
type Message struct {
	Topic string
	Key   string
	Value []byte
	Time  time.Time
}

// Handler processes a consumed message.
type Handler func(ctx context.Context, msg Message) error

// Publisher writes messages to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Subscriber delivers a topic's messages to a handler. Subscribe blocks
// until ctx is cancelled or the bus is closed.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// Bus is both ends of the transport.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// PublishJSON encodes v and publishes it.
func PublishJSON(ctx context.Context, p Publisher, topic, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	if err := p.Publish(ctx, topic, key, value); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}
