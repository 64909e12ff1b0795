package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"sapdash/internal/messaging"
	"sapdash/internal/metrics"
	"sapdash/internal/store"
	"sapdash/pkg/contracts/domain"
	"sapdash/pkg/contracts/events"
)

// Broadcaster pushes a message to every connected dashboard page.
type Broadcaster interface {
	BroadcastMessage(msgType events.MessageType, data interface{})
}

// Topics names the bus topics the service publishes to.
type Topics struct {
	Events string
	Retry  string
}

// DefaultTopics returns the standard topic names.
func DefaultTopics() Topics {
	return Topics{Events: messaging.DefaultEventsTopic, Retry: messaging.DefaultRetryTopic}
}

// EventService implements the dashboard's event operations.
type EventService struct {
	store       store.EventStore
	publisher   messaging.Publisher
	topics      Topics
	broadcaster Broadcaster
	validate    *validator.Validate
	metrics     *metrics.Metrics
	now         func() time.Time
	logger      *slog.Logger
}

// EventServiceOption configures an EventService.
type EventServiceOption func(*EventService)

// WithBroadcaster sets where saved events are announced.
func WithBroadcaster(b Broadcaster) EventServiceOption {
	return func(s *EventService) { s.broadcaster = b }
}

// WithTopics overrides DefaultTopics.
func WithTopics(t Topics) EventServiceOption {
	return func(s *EventService) { s.topics = t }
}

// WithMetrics records saves and retries in m.
func WithMetrics(m *metrics.Metrics) EventServiceOption {
	return func(s *EventService) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EventServiceOption {
	return func(s *EventService) { s.now = now }
}

// NewEventService creates an EventService.
func NewEventService(st store.EventStore, publisher messaging.Publisher, logger *slog.Logger, opts ...EventServiceOption) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &EventService{
		store:     st,
		publisher: publisher,
		topics:    DefaultTopics(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
		logger:    logger.With(slog.String("service", "events")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecentEvents returns the 50 newest events.
func (s *EventService) RecentEvents(ctx context.Context) ([]domain.IntegrationEvent, error) {
	return s.store.Recent(ctx, store.RecentLimit)
}

// Search returns events whose order id contains orderID, ignoring case. A
// blank query returns the recent events.
func (s *EventService) Search(ctx context.Context, orderID string) ([]domain.IntegrationEvent, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return s.RecentEvents(ctx)
	}
	s.logger.InfoContext(ctx, "search performed", slog.String("order_id", orderID))
	return s.store.SearchByOrderID(ctx, orderID)
}

// Filter returns events with the given status. A blank status returns the
// recent events.
func (s *EventService) Filter(ctx context.Context, status string) ([]domain.IntegrationEvent, error) {
	if strings.TrimSpace(status) == "" {
		return s.RecentEvents(ctx)
	}
	parsed, err := domain.ParseEventStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	s.logger.InfoContext(ctx, "filter applied", slog.String("status", string(parsed)))
	return s.store.FilterByStatus(ctx, parsed)
}

// List applies f: an order id search wins over a status filter.
func (s *EventService) List(ctx context.Context, f domain.EventFilter) ([]domain.IntegrationEvent, error) {
	if strings.TrimSpace(f.OrderID) != "" {
		return s.Search(ctx, f.OrderID)
	}
	return s.Filter(ctx, string(f.Status))
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id int64) (*domain.IntegrationEvent, error) {
	return s.store.Get(ctx, id)
}

// ByIntegration returns the events of one integration flow.
func (s *EventService) ByIntegration(ctx context.Context, name string) ([]domain.IntegrationEvent, error) {
	return s.store.ByIntegration(ctx, name)
}

// Between returns events created in [start, end].
func (s *EventService) Between(ctx context.Context, start, end time.Time) ([]domain.IntegrationEvent, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidInput)
	}
	return s.store.Between(ctx, start, end)
}

// SaveEvent validates and stores an event, then announces it.
func (s *EventService) SaveEvent(ctx context.Context, event *domain.IntegrationEvent) (*domain.IntegrationEvent, error) {
	if err := s.validateEvent(event); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "saving event", slog.String("order_id", event.OrderID))

	if err := s.store.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event %s: %w", event.OrderID, err)
	}
	s.metrics.EventSaved(string(event.Status))
	s.announce(event)
	return event, nil
}

// Publish sends an event to the events topic, keyed by order id. The
// consumer stores it.
func (s *EventService) Publish(ctx context.Context, event *domain.IntegrationEvent) error {
	if err := s.validateEvent(event); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "publishing event", slog.String("order_id", event.OrderID), slog.String("topic", s.topics.Events))

	if err := messaging.PublishJSON(ctx, s.publisher, s.topics.Events, event.OrderID, event); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return nil
}

// Stats computes the dashboard statistics.
func (s *EventService) Stats(ctx context.Context) (domain.DashboardStats, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	counts := make(map[domain.EventStatus]int64, len(domain.EventStatuses))
	for _, status := range domain.EventStatuses {
		n, err := s.store.CountByStatus(ctx, status)
		if err != nil {
			return domain.DashboardStats{}, err
		}
		counts[status] = n
	}
	return domain.NewDashboardStats(total,
		counts[domain.EventStatusSuccess],
		counts[domain.EventStatusFailed],
		counts[domain.EventStatusPending]), nil
}

// FailedEvents returns every failed event, newest first.
func (s *EventService) FailedEvents(ctx context.Context) ([]domain.IntegrationEvent, error) {
	return s.store.FilterByStatus(ctx, domain.EventStatusFailed)
}

// Reprocess marks an event PENDING and clears its error details.
func (s *EventService) Reprocess(ctx context.Context, id int64) (*domain.IntegrationEvent, error) {
	event, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Status = domain.EventStatusPending
	event.ErrorDetails = ""

	s.logger.InfoContext(ctx, "reprocessing event", slog.Int64("event_id", id), slog.String("order_id", event.OrderID))
	if err := s.store.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("reprocess event %d: %w", id, err)
	}
	s.announce(event)
	return event, nil
}

// Retry resends a failed event with an operator-edited payload. The retry
// message is published before the event is updated, so a publish failure
// leaves the stored event untouched.
func (s *EventService) Retry(ctx context.Context, req domain.RetryEventRequest) (*domain.IntegrationEvent, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	event, err := s.store.Get(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusFailed {
		return nil, fmt.Errorf("event %d is %s: %w", event.ID, event.Status, ErrEventNotFailed)
	}
	if !event.CanRetry() {
		return nil, fmt.Errorf("event %d retried %d times: %w", event.ID, event.RetryCount, ErrRetryLimitReached)
	}

	now := s.now()
	original := event.OriginalPayload
	if original == "" {
		original = event.Payload
	}
	format := req.PayloadFormat
	if format == "" {
		format = event.PayloadFormat
	}

	msg := domain.RetryEventMessage{
		OrderID:              event.OrderID,
		OriginalStatus:       event.Status,
		UpdatedPayload:       req.UpdatedPayload,
		OriginalPayload:      original,
		OriginalErrorDetails: event.ErrorDetails,
		RetryAttempt:         event.RetryCount + 1,
		RetryTimestamp:       now,
		UserNotes:            req.UserNotes,
		PayloadFormat:        format,
	}
	if err := messaging.PublishJSON(ctx, s.publisher, s.topics.Retry, event.OrderID, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	s.metrics.RetryPublished()

	event.OriginalPayload = original
	event.Payload = req.UpdatedPayload
	event.PayloadFormat = format
	event.RetryHistory = appendHistory(event.RetryHistory, msg)
	event.Status = domain.EventStatusPending
	event.ErrorDetails = ""
	event.IncrementRetry(now)

	s.logger.InfoContext(ctx, "retry published",
		slog.Int64("event_id", event.ID),
		slog.String("order_id", event.OrderID),
		slog.Int("attempt", msg.RetryAttempt))

	if err := s.store.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("record retry of event %d: %w", event.ID, err)
	}
	s.announce(event)
	return event, nil
}

// SummaryByIntegration counts events per integration flow.
func (s *EventService) SummaryByIntegration(ctx context.Context) ([]domain.IntegrationSummary, error) {
	return s.store.SummaryByIntegration(ctx)
}

func (s *EventService) validateEvent(event *domain.IntegrationEvent) error {
	if event == nil {
		return fmt.Errorf("%w: missing event", ErrInvalidInput)
	}
	if err := s.validate.Struct(event); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &FieldError{Fields: verrs}
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s *EventService) announce(event *domain.IntegrationEvent) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(events.MessageTypeEventSaved, event)
	}
}

func appendHistory(history string, msg domain.RetryEventMessage) string {
	line := fmt.Sprintf("#%d %s", msg.RetryAttempt, msg.RetryTimestamp.UTC().Format(time.RFC3339))
	if msg.UserNotes != "" {
		line += " " + msg.UserNotes
	}
	if history == "" {
		return line
	}
	return history + "\n" + line
}
