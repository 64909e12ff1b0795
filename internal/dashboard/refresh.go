package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRefreshInterval is the period of the dashboard auto refresh.
const DefaultRefreshInterval = 30 * time.Second

// AutoRefresh periodically asks connected pages to reload. It starts disabled.
type AutoRefresh struct {
	interval time.Duration
	onTick   func(ctx context.Context)
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutoRefresh creates a disabled AutoRefresh calling onTick every interval.
// A non-positive interval means DefaultRefreshInterval.
func NewAutoRefresh(interval time.Duration, onTick func(ctx context.Context), logger *slog.Logger) *AutoRefresh {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoRefresh{
		interval: interval,
		onTick:   onTick,
		logger:   logger.With(slog.String("component", "dashboard.refresh")),
	}
}

// Interval returns the refresh period.
func (a *AutoRefresh) Interval() time.Duration {
	return a.interval
}

// Enabled reports whether the refresh loop is running.
func (a *AutoRefresh) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Enable starts the refresh loop. The loop runs until Disable is called; ctx
// only supplies values such as the trace id. Enabling a running loop is a no-op.
func (a *AutoRefresh) Enable(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(loopCtx, a.done)

	a.logger.InfoContext(ctx, "auto refresh enabled", slog.Duration("interval", a.interval))
}

// Disable stops the refresh loop and waits for it to exit.
func (a *AutoRefresh) Disable() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.logger.Info("auto refresh disabled")
}

// Set enables or disables the loop.
func (a *AutoRefresh) Set(ctx context.Context, enabled bool) {
	if enabled {
		a.Enable(ctx)
		return
	}
	a.Disable()
}

func (a *AutoRefresh) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.onTick != nil {
				a.onTick(ctx)
			}
		}
	}
}
