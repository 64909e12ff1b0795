package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	mu        sync.Mutex
	elements  []Element
	appendErr error
}

func (s *fakeSurface) Append(_ context.Context, el Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.elements = append(s.elements, el)
	return nil
}

func (s *fakeSurface) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, el := range s.elements {
		if el.ID == id {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			return nil
		}
	}
	return errors.New("element not found")
}

func (s *fakeSurface) withClass(class string) []Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Element
	for _, el := range s.elements {
		for _, c := range strings.Fields(el.Class) {
			if c == class {
				out = append(out, el)
				break
			}
		}
	}
	return out
}

type pendingTask struct {
	delay time.Duration
	run   func()
}

type fakeScheduler struct {
	tasks []pendingTask
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) {
	s.tasks = append(s.tasks, pendingTask{delay: d, run: f})
}

func (s *fakeScheduler) fire() {
	tasks := s.tasks
	s.tasks = nil
	for _, task := range tasks {
		task.run()
	}
}

func TestNotifierShowAndRemove(t *testing.T) {
	surface := &fakeSurface{}
	sched := &fakeScheduler{}
	n := NewNotifier(surface, nil, WithScheduler(sched.schedule))

	require.NoError(t, n.Show(context.Background(), "Export complete", SeveritySuccess))

	shown := surface.withClass("notification-success")
	require.Len(t, shown, 1)
	assert.Equal(t, "Export complete", shown[0].Text)
	assert.Equal(t, "notification notification-success", shown[0].Class)

	require.Len(t, sched.tasks, 1)
	assert.Equal(t, 3000*time.Millisecond, sched.tasks[0].delay)

	sched.fire()
	assert.Empty(t, surface.withClass("notification-success"))
}

func TestNotifierDefaultSeverity(t *testing.T) {
	surface := &fakeSurface{}
	sched := &fakeScheduler{}
	n := NewNotifier(surface, nil, WithScheduler(sched.schedule))

	require.NoError(t, n.Show(context.Background(), "hello", ""))

	require.Len(t, surface.elements, 1)
	assert.Contains(t, strings.Fields(surface.elements[0].Class), "notification-info")
	assert.Contains(t, strings.Fields(surface.elements[0].Class), "notification")
}

func TestNotifierOpenSeverity(t *testing.T) {
	surface := &fakeSurface{}
	n := NewNotifier(surface, nil, WithScheduler((&fakeScheduler{}).schedule))

	require.NoError(t, n.Show(context.Background(), "custom", Severity("critical")))
	assert.Len(t, surface.withClass("notification-critical"), 1)
}

func TestNotifierEachCallGetsOwnElement(t *testing.T) {
	surface := &fakeSurface{}
	sched := &fakeScheduler{}
	n := NewNotifier(surface, nil, WithScheduler(sched.schedule))

	require.NoError(t, n.Show(context.Background(), "one", SeverityInfo))
	require.NoError(t, n.Show(context.Background(), "two", SeverityInfo))

	els := surface.withClass("notification-info")
	require.Len(t, els, 2)
	assert.NotEqual(t, els[0].ID, els[1].ID)

	sched.fire()
	assert.Empty(t, surface.withClass("notification-info"))
}

func TestNotifierRemovalOutlivesCancelledContext(t *testing.T) {
	surface := &fakeSurface{}
	sched := &fakeScheduler{}
	n := NewNotifier(surface, nil, WithScheduler(sched.schedule))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.Show(ctx, "bye", SeverityWarning))
	cancel()

	sched.fire()
	assert.Empty(t, surface.withClass("notification-warning"))
}

func TestNotifierSurfaceErrors(t *testing.T) {
	n := NewNotifier(nil, nil)
	assert.ErrorIs(t, n.Show(context.Background(), "x", SeverityInfo), ErrNoSurface)

	boom := errors.New("no body")
	sched := &fakeScheduler{}
	n = NewNotifier(&fakeSurface{appendErr: boom}, nil, WithScheduler(sched.schedule))
	assert.ErrorIs(t, n.Show(context.Background(), "x", SeverityInfo), boom)
	assert.Empty(t, sched.tasks)
}

func TestNotifierRealTimer(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the display window")
	}
	surface := &fakeSurface{}
	n := NewNotifier(surface, nil)

	require.NoError(t, n.Show(context.Background(), "timed", SeverityError))
	assert.Len(t, surface.withClass("notification-error"), 1)

	assert.Eventually(t, func() bool {
		return len(surface.withClass("notification-error")) == 0
	}, DisplayDuration+2*time.Second, 50*time.Millisecond)
}

func TestNotificationClass(t *testing.T) {
	assert.Equal(t, "notification notification-info", NotificationClass(""))
	assert.Equal(t, "notification notification-error", NotificationClass(SeverityError))
}
