package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"sapdash/internal/store"
	"sapdash/pkg/contracts/domain"
)

// DefaultSampleCount is the number of demo events seeded on startup.
const DefaultSampleCount = 20

var (
	sampleIntegrations = []string{
		"Order-to-SAP",
		"Customer-Sync",
		"Inventory-Update",
		"Invoice-Processing",
	}
	sampleMessages = []string{
		"Order placed successfully",
		"Customer record created",
		"Stock quantity updated",
		"Invoice sent to customer",
		"Payment processed",
		"Shipment confirmed",
		"Data synchronized",
		"Transaction completed",
	}
	sampleErrors = []string{
		"Connection timeout to SAP",
		"Invalid data format",
		"Authentication failed",
		"Network error",
		"Service unavailable",
		"Data validation error",
		"Permission denied",
		"Resource not found",
	}
)

// SampleDataGenerator fills a store with random demo events.
type SampleDataGenerator struct {
	store  store.EventStore
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
}

// NewSampleDataGenerator creates a generator. A nil rng is seeded from the clock.
func NewSampleDataGenerator(st store.EventStore, rng *rand.Rand, logger *slog.Logger) *SampleDataGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SampleDataGenerator{
		store:  st,
		rng:    rng,
		now:    time.Now,
		logger: logger.With(slog.String("service", "sample_data")),
	}
}

// Generate stores n events with order ids PO-00001 to PO-<n>, created
// within the last hour. Failed events get error details.
func (g *SampleDataGenerator) Generate(ctx context.Context, n int) ([]domain.IntegrationEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	generated := make([]domain.IntegrationEvent, 0, n)
	for i := 1; i <= n; i++ {
		event := domain.IntegrationEvent{
			OrderID:         fmt.Sprintf("PO-%05d", i),
			Status:          domain.EventStatuses[g.rng.Intn(len(domain.EventStatuses))],
			IntegrationName: sampleIntegrations[g.rng.Intn(len(sampleIntegrations))],
			Message:         sampleMessages[g.rng.Intn(len(sampleMessages))],
			PayloadFormat:   domain.PayloadFormatJSON,
			CreatedAt:       now.Add(-time.Duration(g.rng.Intn(60)+1) * time.Minute),
		}
		if event.Status == domain.EventStatusFailed {
			event.ErrorDetails = sampleErrors[g.rng.Intn(len(sampleErrors))]
		}
		event.Payload = fmt.Sprintf(`{"orderId":%q,"integration":%q}`, event.OrderID, event.IntegrationName)

		if err := g.store.Save(ctx, &event); err != nil {
			return generated, fmt.Errorf("seed %s: %w", event.OrderID, err)
		}
		g.logger.DebugContext(ctx, "sample event created",
			slog.String("order_id", event.OrderID),
			slog.String("status", string(event.Status)))
		generated = append(generated, event)
	}

	g.logger.InfoContext(ctx, "sample data generated", slog.Int("count", len(generated)))
	return generated, nil
}

// SeedIfEmpty generates n events only when the store has none.
func (g *SampleDataGenerator) SeedIfEmpty(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	total, err := g.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	if total > 0 {
		g.logger.InfoContext(ctx, "store already populated, skipping sample data", slog.Int64("events", total))
		return 0, nil
	}
	events, err := g.Generate(ctx, n)
	return len(events), err
}
