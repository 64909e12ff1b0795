package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationEventCanRetry(t *testing.T) {
	e := &IntegrationEvent{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < MaxRetries; i++ {
		assert.True(t, e.CanRetry())
		e.IncrementRetry(now)
	}
	assert.False(t, e.CanRetry())
	assert.Equal(t, 3, e.RetryCount)
	assert.Equal(t, now, e.UpdatedAt)
}

func TestIntegrationEventTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "0s ago"},
		{59 * time.Second, "59s ago"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{2 * time.Hour, "2h ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e := &IntegrationEvent{CreatedAt: now.Add(-tt.ago)}
			assert.Equal(t, tt.want, e.TimeAgo(now))
		})
	}
	assert.Equal(t, "Unknown", (&IntegrationEvent{}).TimeAgo(now))
}

func TestParseEventStatus(t *testing.T) {
	s, err := ParseEventStatus(" failed ")
	require.NoError(t, err)
	assert.Equal(t, EventStatusFailed, s)

	_, err = ParseEventStatus("DONE")
	assert.Error(t, err)
}

func TestNewDashboardStats(t *testing.T) {
	assert.Equal(t, "0.0", NewDashboardStats(0, 0, 0, 0).SuccessRate)

	stats := NewDashboardStats(3, 2, 1, 0)
	assert.Equal(t, "66.7", stats.SuccessRate)
	assert.Equal(t, int64(3), stats.TotalEvents)
}
