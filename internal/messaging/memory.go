package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const memoryBuffer = 256

// MemoryBus delivers messages to in-process subscribers and keeps a copy of
// everything published.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	published   []Message
	closed      bool
	done        chan struct{}
	logger      *slog.Logger
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryBus{
		subscribers: make(map[string][]chan Message),
		done:        make(chan struct{}),
		logger:      logger.With(slog.String("component", "messaging.memory")),
	}
}

// Publish fans msg out to every subscriber of topic. It blocks while a
// subscriber's buffer is full.
func (b *MemoryBus) Publish(ctx context.Context, topic, key string, value []byte) error {
	msg := Message{Topic: topic, Key: key, Value: append([]byte(nil), value...), Time: time.Now()}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.published = append(b.published, msg)
	subs := append([]chan Message(nil), b.subscribers[topic]...)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return ErrClosed
		}
	}

	b.logger.DebugContext(ctx, "message published",
		slog.String("topic", topic),
		slog.String("key", key),
		slog.Int("subscribers", len(subs)))
	return nil
}

// Subscribe delivers messages published after the call.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	ch := make(chan Message, memoryBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	defer b.unsubscribe(topic, ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return ErrClosed
		case msg := <-ch:
			if err := handler(ctx, msg); err != nil {
				b.logger.ErrorContext(ctx, "message handler failed",
					slog.String("topic", topic),
					slog.String("key", msg.Key),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Subscribers returns the number of active subscriptions to topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Published returns the messages published to topic, oldest first.
func (b *MemoryBus) Published(topic string) []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Message
	for _, msg := range b.published {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

// Close stops every subscription.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	return nil
}

func (b *MemoryBus) unsubscribe(topic string, ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[topic]
	for i, c := range subs {
		if c == ch {
			b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}
