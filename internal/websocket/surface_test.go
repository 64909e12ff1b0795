package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapdash/internal/dashboard"
	"sapdash/pkg/contracts/events"
)

type sent struct {
	Type events.MessageType
	Data interface{}
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingBroadcaster) BroadcastMessageContext(_ context.Context, t events.MessageType, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{t, data})
}

func TestNotificationSurface(t *testing.T) {
	out := &recordingBroadcaster{}
	s := NewNotificationSurface(out)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, dashboard.Element{ID: "a", Class: "notification notification-warning", Text: "disk"}))
	require.NoError(t, s.Append(ctx, dashboard.Element{ID: "b", Class: "notification", Text: "plain"}))

	assert.Equal(t, []dashboard.Element{
		{ID: "a", Class: "notification notification-warning", Text: "disk"},
		{ID: "b", Class: "notification", Text: "plain"},
	}, s.Live())

	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Remove(ctx, "missing"))
	assert.Equal(t, []dashboard.Element{{ID: "b", Class: "notification", Text: "plain"}}, s.Live())

	assert.Equal(t, []sent{
		{events.MessageTypeNotificationShow, events.NotificationData{ID: "a", Class: "notification notification-warning", Message: "disk", Severity: "warning"}},
		{events.MessageTypeNotificationShow, events.NotificationData{ID: "b", Class: "notification", Message: "plain", Severity: "info"}},
		{events.MessageTypeNotificationRemove, events.NotificationRemoval{ID: "a"}},
		{events.MessageTypeNotificationRemove, events.NotificationRemoval{ID: "missing"}},
	}, out.sent)
}

func TestNotificationSurfaceWithNotifier(t *testing.T) {
	out := &recordingBroadcaster{}
	s := NewNotificationSurface(out)

	var pending []func()
	n := dashboard.NewNotifier(s, nil, dashboard.WithScheduler(func(_ time.Duration, f func()) {
		pending = append(pending, f)
	}))

	require.NoError(t, n.Show(context.Background(), "Saved", dashboard.SeveritySuccess))
	require.Len(t, s.Live(), 1)
	assert.Equal(t, "notification notification-success", s.Live()[0].Class)

	for _, f := range pending {
		f()
	}
	assert.Empty(t, s.Live())
	require.Len(t, out.sent, 2)
	assert.Equal(t, events.MessageTypeNotificationRemove, out.sent[1].Type)
}
