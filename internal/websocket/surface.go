package websocket

import (
	"context"
	"strings"
	"sync"

	"sapdash/internal/dashboard"
	"sapdash/pkg/contracts/events"
)

// ContextBroadcaster sends a typed message to every connected page.
type ContextBroadcaster interface {
	BroadcastMessageContext(ctx context.Context, msgType events.MessageType, data interface{})
}

// NotificationSurface is a dashboard.Surface drawn on every connected page.
// It also remembers the elements still showing so late joiners can be
// brought up to date.
type NotificationSurface struct {
	out ContextBroadcaster

	mu    sync.Mutex
	order []string
	live  map[string]dashboard.Element
}

// NewNotificationSurface creates a surface broadcasting through out.
func NewNotificationSurface(out ContextBroadcaster) *NotificationSurface {
	return &NotificationSurface{
		out:  out,
		live: make(map[string]dashboard.Element),
	}
}

// Append records el and broadcasts notification:show.
func (s *NotificationSurface) Append(ctx context.Context, el dashboard.Element) error {
	s.mu.Lock()
	if _, ok := s.live[el.ID]; !ok {
		s.order = append(s.order, el.ID)
	}
	s.live[el.ID] = el
	s.mu.Unlock()

	s.out.BroadcastMessageContext(ctx, events.MessageTypeNotificationShow, events.NotificationData{
		ID:       el.ID,
		Class:    el.Class,
		Message:  el.Text,
		Severity: severityOf(el.Class),
	})
	return nil
}

// Remove forgets id and broadcasts notification:remove. Removing an unknown
// id still broadcasts, so pages that missed the show stay consistent.
func (s *NotificationSurface) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.live[id]; ok {
		delete(s.live, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	s.out.BroadcastMessageContext(ctx, events.MessageTypeNotificationRemove, events.NotificationRemoval{ID: id})
	return nil
}

// Live returns the elements currently showing, oldest first.
func (s *NotificationSurface) Live() []dashboard.Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dashboard.Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.live[id])
	}
	return out
}

// severityOf extracts "warning" from "notification notification-warning".
func severityOf(class string) string {
	for _, c := range strings.Fields(class) {
		if sev, ok := strings.CutPrefix(c, "notification-"); ok {
			return sev
		}
	}
	return string(dashboard.SeverityInfo)
}
