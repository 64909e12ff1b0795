package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sapdash/internal/metrics"
)

// DisplayDuration is how long a notification stays on the page.
const DisplayDuration = 3000 * time.Millisecond

// Scheduler runs f once after d has elapsed.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Notifier shows transient notifications on a Surface.
type Notifier struct {
	surface  Surface
	schedule Scheduler
	newID    func() string
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithScheduler replaces time.AfterFunc as the removal scheduler.
func WithScheduler(s Scheduler) NotifierOption {
	return func(n *Notifier) { n.schedule = s }
}

// WithNotifierMetrics records shown and removed notifications.
func WithNotifierMetrics(m *metrics.Metrics) NotifierOption {
	return func(n *Notifier) { n.metrics = m }
}

// NewNotifier creates a Notifier drawing on surface.
func NewNotifier(surface Surface, logger *slog.Logger, opts ...NotifierOption) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{
		surface:  surface,
		schedule: afterFunc,
		newID:    func() string { return "notification-" + uuid.NewString() },
		logger:   logger.With(slog.String("component", "dashboard.notifier")),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotificationClass returns the class list for a notification of the given
// severity. An empty severity means SeverityInfo.
func NotificationClass(severity Severity) string {
	if severity == "" {
		severity = SeverityInfo
	}
	return fmt.Sprintf("notification notification-%s", severity)
}

// Show appends a notification carrying message and schedules its removal
// after DisplayDuration. The removal cannot be cancelled.
func (n *Notifier) Show(ctx context.Context, message string, severity Severity) error {
	if n.surface == nil {
		return ErrNoSurface
	}
	if severity == "" {
		severity = SeverityInfo
	}

	el := Element{
		ID:    n.newID(),
		Class: NotificationClass(severity),
		Text:  message,
	}
	if err := n.surface.Append(ctx, el); err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	n.metrics.NotificationShown(string(severity))

	n.logger.DebugContext(ctx, "notification shown",
		slog.String("id", el.ID),
		slog.String("severity", string(severity)))

	// The request that asked for the notification is usually gone by the time
	// the window closes.
	removeCtx := context.WithoutCancel(ctx)
	n.schedule(DisplayDuration, func() {
		if err := n.surface.Remove(removeCtx, el.ID); err != nil {
			n.logger.WarnContext(removeCtx, "failed to remove notification",
				slog.String("id", el.ID),
				slog.String("error", err.Error()))
			return
		}
		n.metrics.NotificationRemoved()
	})
	return nil
}
