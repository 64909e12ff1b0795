package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig configures a KafkaBus.
type KafkaConfig struct {
	Brokers      []string
	GroupID      string
	BatchTimeout time.Duration
	MaxAttempts  int
}

// KafkaBus publishes and consumes through a Kafka cluster.
type KafkaBus struct {
	cfg    KafkaConfig
	writer *kafka.Writer
	logger *slog.Logger

	mu      sync.Mutex
	readers []*kafka.Reader
	closed  bool
}

// NewKafkaBus creates a bus for cfg.Brokers. No connection is made until
// the first publish or subscribe.
func NewKafkaBus(cfg KafkaConfig, logger *slog.Logger) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.GroupID == "" {
		cfg.GroupID = DefaultGroupID
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &KafkaBus{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           cfg.BatchTimeout,
			MaxAttempts:            cfg.MaxAttempts,
			AllowAutoTopicCreation: true,
		},
		logger: logger.With(slog.String("component", "messaging.kafka")),
	}, nil
}

// Publish writes one keyed record to topic.
func (b *KafkaBus) Publish(ctx context.Context, topic, key string, value []byte) error {
	if b.isClosed() {
		return ErrClosed
	}
	err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	b.logger.DebugContext(ctx, "message published", slog.String("topic", topic), slog.String("key", key))
	return nil
}

// Subscribe consumes topic as part of the configured group. Each message is
// committed after its handler returns, whether or not the handler failed.
func (b *KafkaBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.cfg.Brokers,
		GroupID:  b.cfg.GroupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	if err := b.track(reader); err != nil {
		reader.Close()
		return err
	}
	defer reader.Close()

	b.logger.InfoContext(ctx, "consuming topic",
		slog.String("topic", topic),
		slog.String("group", b.cfg.GroupID))

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if b.isClosed() || errors.Is(err, io.EOF) {
				return ErrClosed
			}
			return fmt.Errorf("kafka fetch %s: %w", topic, err)
		}

		msg := Message{Topic: m.Topic, Key: string(m.Key), Value: m.Value, Time: m.Time}
		if err := handler(ctx, msg); err != nil {
			b.logger.ErrorContext(ctx, "message handler failed",
				slog.String("topic", topic),
				slog.String("key", msg.Key),
				slog.Int64("offset", m.Offset),
				slog.String("error", err.Error()))
		}
		if err := reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("kafka commit %s: %w", topic, err)
		}
	}
}

// Close flushes the writer and closes every reader.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	readers := b.readers
	b.readers = nil
	b.mu.Unlock()

	var errs []error
	for _, r := range readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := b.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *KafkaBus) track(r *kafka.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.readers = append(b.readers, r)
	return nil
}

func (b *KafkaBus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
