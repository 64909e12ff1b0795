package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"sapdash/internal/infrastructure"
	"sapdash/pkg/contracts/domain"
)

// EventSink stores a consumed event.
type EventSink interface {
	SaveEvent(ctx context.Context, event *domain.IntegrationEvent) (*domain.IntegrationEvent, error)
}

// Consumer saves every event published on the events topic.
type Consumer struct {
	subscriber Subscriber
	sink       EventSink
	topic      string
	logger     *slog.Logger
}

// NewConsumer creates a consumer for topic. Empty topic means DefaultEventsTopic.
func NewConsumer(subscriber Subscriber, sink EventSink, topic string, logger *slog.Logger) *Consumer {
	if topic == "" {
		topic = DefaultEventsTopic
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		subscriber: subscriber,
		sink:       sink,
		topic:      topic,
		logger:     logger.With(slog.String("component", "messaging.consumer")),
	}
}

// Run consumes until ctx is cancelled. Cancellation is not an error.
func (c *Consumer) Run(ctx context.Context) error {
	err := c.subscriber.Subscribe(ctx, c.topic, c.handle)
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func (c *Consumer) handle(ctx context.Context, msg Message) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	var event domain.IntegrationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.WarnContext(ctx, "dropping undecodable event",
			slog.String("key", msg.Key),
			slog.String("error", err.Error()))
		return nil
	}
	// Ids are assigned locally; a producer's id must not overwrite a stored row.
	event.ID = 0

	c.logger.InfoContext(ctx, "received event", slog.String("order_id", event.OrderID))
	if _, err := c.sink.SaveEvent(ctx, &event); err != nil {
		return fmt.Errorf("save event %s: %w", event.OrderID, err)
	}
	return nil
}
