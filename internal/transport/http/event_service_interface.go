package http

import (
	"context"

	"sapdash/pkg/contracts/domain"
)

// EventService is the part of services.EventService the handlers use.
type EventService interface {
	List(ctx context.Context, f domain.EventFilter) ([]domain.IntegrationEvent, error)
	Get(ctx context.Context, id int64) (*domain.IntegrationEvent, error)
	Publish(ctx context.Context, event *domain.IntegrationEvent) error
	Stats(ctx context.Context) (domain.DashboardStats, error)
	FailedEvents(ctx context.Context) ([]domain.IntegrationEvent, error)
	Reprocess(ctx context.Context, id int64) (*domain.IntegrationEvent, error)
	Retry(ctx context.Context, req domain.RetryEventRequest) (*domain.IntegrationEvent, error)
	SummaryByIntegration(ctx context.Context) ([]domain.IntegrationSummary, error)
}
