package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"sapdash/pkg/contracts/domain"
)

// MemoryStore keeps events in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[int64]domain.IntegrationEvent
	nextID int64
	now    Clock
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[int64]domain.IntegrationEvent),
		now:    time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, event *domain.IntegrationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if event.ID == 0 {
		stamp(event, now, true)
		m.nextID++
		event.ID = m.nextID
		m.events[event.ID] = *event
		return nil
	}

	stored, ok := m.events[event.ID]
	if !ok {
		return fmt.Errorf("update event %d: %w", event.ID, ErrEventNotFound)
	}
	stamp(event, now, false)
	event.CreatedAt = stored.CreatedAt
	m.events[event.ID] = *event
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*domain.IntegrationEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	event, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", id, ErrEventNotFound)
	}
	return &event, nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]domain.IntegrationEvent, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	events := m.selectWhere(func(domain.IntegrationEvent) bool { return true })
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *MemoryStore) SearchByOrderID(_ context.Context, q string) ([]domain.IntegrationEvent, error) {
	q = strings.ToLower(q)
	return m.selectWhere(func(e domain.IntegrationEvent) bool {
		return strings.Contains(strings.ToLower(e.OrderID), q)
	}), nil
}

func (m *MemoryStore) FilterByStatus(_ context.Context, status domain.EventStatus) ([]domain.IntegrationEvent, error) {
	return m.selectWhere(func(e domain.IntegrationEvent) bool { return e.Status == status }), nil
}

func (m *MemoryStore) ByIntegration(_ context.Context, name string) ([]domain.IntegrationEvent, error) {
	return m.selectWhere(func(e domain.IntegrationEvent) bool { return e.IntegrationName == name }), nil
}

func (m *MemoryStore) Between(_ context.Context, start, end time.Time) ([]domain.IntegrationEvent, error) {
	return m.selectWhere(func(e domain.IntegrationEvent) bool {
		return !e.CreatedAt.Before(start) && !e.CreatedAt.After(end)
	}), nil
}

func (m *MemoryStore) Count(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.events)), nil
}

func (m *MemoryStore) CountByStatus(ctx context.Context, status domain.EventStatus) (int64, error) {
	events, _ := m.FilterByStatus(ctx, status)
	return int64(len(events)), nil
}

func (m *MemoryStore) SummaryByIntegration(context.Context) ([]domain.IntegrationSummary, error) {
	m.mu.RLock()
	counts := make(map[string]int64)
	for _, e := range m.events {
		counts[e.IntegrationName]++
	}
	m.mu.RUnlock()

	summary := make([]domain.IntegrationSummary, 0, len(counts))
	for name, n := range counts {
		summary = append(summary, domain.IntegrationSummary{IntegrationName: name, Count: n})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Count != summary[j].Count {
			return summary[i].Count > summary[j].Count
		}
		return summary[i].IntegrationName < summary[j].IntegrationName
	})
	return summary, nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) selectWhere(keep func(domain.IntegrationEvent) bool) []domain.IntegrationEvent {
	m.mu.RLock()
	events := []domain.IntegrationEvent{}
	for _, e := range m.events {
		if keep(e) {
			events = append(events, e)
		}
	}
	m.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.After(events[j].CreatedAt)
		}
		return events[i].ID > events[j].ID
	})
	return events
}
