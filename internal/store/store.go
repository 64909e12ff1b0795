package store

import (
	"context"
	"errors"
	"time"

	"sapdash/pkg/contracts/domain"
)

// RecentLimit is the size of the default dashboard listing.
const RecentLimit = 50

// ErrEventNotFound is returned when no event has the requested id.
var ErrEventNotFound = errors.New("event not found")

// EventStore persists integration events.
type EventStore interface {
	// Save inserts the event when its ID is zero and updates it otherwise.
	// It assigns the ID and stamps CreatedAt/UpdatedAt on the passed event.
	Save(ctx context.Context, event *domain.IntegrationEvent) error
	Get(ctx context.Context, id int64) (*domain.IntegrationEvent, error)
	Recent(ctx context.Context, limit int) ([]domain.IntegrationEvent, error)
	// SearchByOrderID matches order ids containing q, ignoring case.
	SearchByOrderID(ctx context.Context, q string) ([]domain.IntegrationEvent, error)
	FilterByStatus(ctx context.Context, status domain.EventStatus) ([]domain.IntegrationEvent, error)
	ByIntegration(ctx context.Context, name string) ([]domain.IntegrationEvent, error)
	// Between returns events created in [start, end].
	Between(ctx context.Context, start, end time.Time) ([]domain.IntegrationEvent, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.EventStatus) (int64, error)
	// SummaryByIntegration counts events per integration, largest first.
	SummaryByIntegration(ctx context.Context) ([]domain.IntegrationSummary, error)
	Close() error
}

// Clock returns the current time.
type Clock func() time.Time

func stamp(event *domain.IntegrationEvent, now time.Time, insert bool) {
	if insert {
		if event.CreatedAt.IsZero() {
			event.CreatedAt = now
		}
		if event.UpdatedAt.IsZero() {
			event.UpdatedAt = now
		}
		return
	}
	event.UpdatedAt = now
}
