package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapdash/pkg/contracts/domain"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func storeImplementations(t *testing.T) map[string]func(t *testing.T) EventStore {
	return map[string]func(t *testing.T) EventStore{
		"memory": func(t *testing.T) EventStore {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) EventStore {
			s, err := NewSQLiteStore("")
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func seed(t *testing.T, s EventStore) []domain.IntegrationEvent {
	t.Helper()
	events := []domain.IntegrationEvent{
		{OrderID: "PO-00001", Status: domain.EventStatusSuccess, IntegrationName: "Order-to-SAP", CreatedAt: base.Add(-3 * time.Minute)},
		{OrderID: "PO-00002", Status: domain.EventStatusFailed, IntegrationName: "Customer-Sync", ErrorDetails: "Network error", CreatedAt: base.Add(-2 * time.Minute)},
		{OrderID: "po-00012", Status: domain.EventStatusFailed, IntegrationName: "Order-to-SAP", CreatedAt: base.Add(-1 * time.Minute)},
		{OrderID: "INV_100%", Status: domain.EventStatusPending, IntegrationName: "Invoice-Processing", CreatedAt: base},
	}
	for i := range events {
		require.NoError(t, s.Save(context.Background(), &events[i]))
		require.NotZero(t, events[i].ID)
	}
	return events
}

func orderIDs(events []domain.IntegrationEvent) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.OrderID)
	}
	return ids
}

func TestEventStores(t *testing.T) {
	ctx := context.Background()

	for name, newStore := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("recent is newest first", func(t *testing.T) {
				s := newStore(t)
				seed(t, s)

				events, err := s.Recent(ctx, 0)
				require.NoError(t, err)
				assert.Equal(t, []string{"INV_100%", "po-00012", "PO-00002", "PO-00001"}, orderIDs(events))

				events, err = s.Recent(ctx, 2)
				require.NoError(t, err)
				assert.Len(t, events, 2)
			})

			t.Run("search ignores case", func(t *testing.T) {
				s := newStore(t)
				seed(t, s)

				events, err := s.SearchByOrderID(ctx, "po-000")
				require.NoError(t, err)
				assert.Equal(t, []string{"po-00012", "PO-00002", "PO-00001"}, orderIDs(events))

				events, err = s.SearchByOrderID(ctx, "PO-0001")
				require.NoError(t, err)
				assert.Equal(t, []string{"po-00012"}, orderIDs(events))

				events, err = s.SearchByOrderID(ctx, "_100%")
				require.NoError(t, err)
				assert.Equal(t, []string{"INV_100%"}, orderIDs(events))

				events, err = s.SearchByOrderID(ctx, "nothing")
				require.NoError(t, err)
				assert.Empty(t, events)
			})

			t.Run("filters", func(t *testing.T) {
				s := newStore(t)
				seed(t, s)

				failed, err := s.FilterByStatus(ctx, domain.EventStatusFailed)
				require.NoError(t, err)
				assert.Equal(t, []string{"po-00012", "PO-00002"}, orderIDs(failed))

				orders, err := s.ByIntegration(ctx, "Order-to-SAP")
				require.NoError(t, err)
				assert.Equal(t, []string{"po-00012", "PO-00001"}, orderIDs(orders))

				window, err := s.Between(ctx, base.Add(-2*time.Minute), base.Add(-time.Minute))
				require.NoError(t, err)
				assert.Equal(t, []string{"po-00012", "PO-00002"}, orderIDs(window))
			})

			t.Run("counts and summary", func(t *testing.T) {
				s := newStore(t)
				seed(t, s)

				total, err := s.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, int64(4), total)

				failed, err := s.CountByStatus(ctx, domain.EventStatusFailed)
				require.NoError(t, err)
				assert.Equal(t, int64(2), failed)

				summary, err := s.SummaryByIntegration(ctx)
				require.NoError(t, err)
				assert.Equal(t, []domain.IntegrationSummary{
					{IntegrationName: "Order-to-SAP", Count: 2},
					{IntegrationName: "Customer-Sync", Count: 1},
					{IntegrationName: "Invoice-Processing", Count: 1},
				}, summary)
			})

			t.Run("update and get", func(t *testing.T) {
				s := newStore(t)
				events := seed(t, s)

				event := events[1]
				event.Status = domain.EventStatusPending
				event.ErrorDetails = ""
				require.NoError(t, s.Save(ctx, &event))

				got, err := s.Get(ctx, event.ID)
				require.NoError(t, err)
				assert.Equal(t, domain.EventStatusPending, got.Status)
				assert.Empty(t, got.ErrorDetails)
				assert.True(t, got.CreatedAt.Equal(events[1].CreatedAt))
				assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
			})

			t.Run("missing event", func(t *testing.T) {
				s := newStore(t)

				_, err := s.Get(ctx, 42)
				assert.ErrorIs(t, err, ErrEventNotFound)

				err = s.Save(ctx, &domain.IntegrationEvent{ID: 42, OrderID: "PO-1", Status: domain.EventStatusFailed})
				assert.ErrorIs(t, err, ErrEventNotFound)
			})

			t.Run("stamps timestamps", func(t *testing.T) {
				s := newStore(t)
				event := domain.IntegrationEvent{OrderID: "PO-9", Status: domain.EventStatusSuccess}
				require.NoError(t, s.Save(ctx, &event))
				assert.False(t, event.CreatedAt.IsZero())
				assert.False(t, event.UpdatedAt.IsZero())
			})
		})
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Ping(ctx))
	seed(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	total, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}
