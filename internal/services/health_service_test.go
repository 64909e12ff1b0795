package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"sapdash/pkg/contracts"
)

func TestHealthService(t *testing.T) {
	ctx := context.Background()

	t.Run("health and liveness", func(t *testing.T) {
		hs := NewHealthService(nil, func() int { return 3 }, nil)

		health := hs.HealthCheck(ctx)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, contracts.Version, health.Version)

		live := hs.LivenessCheck(ctx)
		assert.Equal(t, "alive", live.Status)
		assert.Equal(t, 3, live.Runtime["websocket_clients"])
		assert.Contains(t, live.Runtime, "goroutines")
	})

	t.Run("readiness", func(t *testing.T) {
		tests := []struct {
			name   string
			checks map[string]Checker
			want   string
		}{
			{"no checks", nil, "ready"},
			{"all ready", map[string]Checker{
				"store": func(context.Context) error { return nil },
				"bus":   func(context.Context) error { return nil },
			}, "ready"},
			{"store down", map[string]Checker{
				"store": func(context.Context) error { return errors.New("database is locked") },
				"bus":   func(context.Context) error { return nil },
			}, "not_ready"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				status := NewHealthService(tt.checks, nil, nil).ReadinessCheck(ctx)
				assert.Equal(t, tt.want, status.Status)
				assert.Len(t, status.Services, len(tt.checks))
			})
		}

		status := NewHealthService(map[string]Checker{
			"store": func(context.Context) error { return errors.New("database is locked") },
		}, nil, nil).ReadinessCheck(ctx)
		assert.Equal(t, ServiceHealth{Status: "not_ready", Message: "database is locked"}, status.Services["store"])
	})

	t.Run("version", func(t *testing.T) {
		v := NewHealthService(nil, nil, nil).Version()
		assert.Equal(t, contracts.Version, v["version"])
		assert.Equal(t, contracts.APIVersion, v["api_version"])
		assert.NotContains(t, v, "git_commit")
	})
}
