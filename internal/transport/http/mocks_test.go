package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "sapdash/internal/errors"
	"sapdash/internal/services"
	"sapdash/internal/shared/testutil"
	"sapdash/internal/webui"
	"sapdash/pkg/contracts/domain"
)

// MockEventService is a mock implementation of EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) List(ctx context.Context, f domain.EventFilter) ([]domain.IntegrationEvent, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrationEvent), args.Error(1)
}

func (m *MockEventService) Get(ctx context.Context, id int64) (*domain.IntegrationEvent, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrationEvent), args.Error(1)
}

func (m *MockEventService) Publish(ctx context.Context, event *domain.IntegrationEvent) error {
	return m.Called(event).Error(0)
}

func (m *MockEventService) Stats(ctx context.Context) (domain.DashboardStats, error) {
	args := m.Called()
	return args.Get(0).(domain.DashboardStats), args.Error(1)
}

func (m *MockEventService) FailedEvents(ctx context.Context) ([]domain.IntegrationEvent, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrationEvent), args.Error(1)
}

func (m *MockEventService) Reprocess(ctx context.Context, id int64) (*domain.IntegrationEvent, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrationEvent), args.Error(1)
}

func (m *MockEventService) Retry(ctx context.Context, req domain.RetryEventRequest) (*domain.IntegrationEvent, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrationEvent), args.Error(1)
}

func (m *MockEventService) SummaryByIntegration(ctx context.Context) ([]domain.IntegrationSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrationSummary), args.Error(1)
}

func TestHandlersMapServiceErrors(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	svc := &MockEventService{}
	svc.On("List", domain.EventFilter{}).Return(nil, errors.New("disk I/O error"))
	svc.On("Publish", mock.Anything).Return(services.ErrPublishFailed)
	svc.On("Retry", domain.RetryEventRequest{EventID: 7, UpdatedPayload: "x"}).Return(nil, services.ErrRetryLimitReached)

	renderer, err := webui.NewRenderer()
	require.NoError(t, err)
	dash := NewDashboardHandler(svc, renderer, nil, errorHandler, logger)
	eventsAPI := NewEventHandler(svc, logger, errorHandler)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		target  string
		body    string
		status  int
	}{
		{"page", dash.Page, http.MethodGet, "/", "", http.StatusInternalServerError},
		{"list", eventsAPI.List, http.MethodGet, "/api/events", "", http.StatusInternalServerError},
		{"publish", eventsAPI.Create, http.MethodPost, "/api/events", `{"orderId":"PO-1","status":"SUCCESS"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	router := eventsAPI.Routes(nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/7/retry", strings.NewReader(`{"updatedPayload":"x"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeRetryLimit, decodeProblem(t, rec)["type"])

	testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
	svc.AssertExpectations(t)
}
