package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapdash/internal/dashboard"
	apierrors "sapdash/internal/errors"
	"sapdash/internal/messaging"
	"sapdash/internal/metrics"
	"sapdash/internal/services"
	"sapdash/internal/shared/testutil"
	"sapdash/internal/store"
	"sapdash/internal/webui"
	ws "sapdash/internal/websocket"
	api "sapdash/pkg/contracts/api/v1"
	"sapdash/pkg/contracts/domain"
)

type handlerFixture struct {
	router   chi.Router
	store    *store.MemoryStore
	bus      *messaging.MemoryBus
	registry *dashboard.MemoryRegistry
	surface  *ws.NotificationSurface
	refresh  *dashboard.AutoRefresh
	events   []domain.IntegrationEvent
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	f := &handlerFixture{
		store:    store.NewMemoryStore(),
		bus:      messaging.NewMemoryBus(logger),
		registry: dashboard.NewMemoryRegistry(nil),
	}
	t.Cleanup(func() { _ = f.bus.Close() })

	f.events = append(testutil.MixedEvents(6), testutil.FailedEvent("PO-77777"))
	for i := range f.events {
		require.NoError(t, f.store.Save(context.Background(), &f.events[i]))
	}

	hub := ws.NewHub(logger)
	f.surface = ws.NewNotificationSurface(hub)
	f.refresh = dashboard.NewAutoRefresh(time.Hour, nil, logger)
	t.Cleanup(f.refresh.Disable)

	svc := services.NewEventService(f.store, f.bus, logger)
	renderer, err := webui.NewRenderer()
	require.NoError(t, err)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	dash := NewDashboardHandler(svc, renderer, f.refresh, errorHandler, logger)
	dash.now = func() time.Time { return testutil.FixtureTime.Add(time.Hour) }
	downloader := dashboard.NewDownloader(f.registry, ResponseSaver(), logger)
	exp := dashboard.NewExporter(webui.NewHTMLTableSource(dash.ExportPage), downloader, dashboard.QuoteRaw, logger)
	export := NewExportHandler(exp, dashboard.QuoteRaw, false, metrics.New(), errorHandler, logger)
	eventsAPI := NewEventHandler(svc, logger, errorHandler)
	notifier := dashboard.NewNotifier(f.surface, logger, dashboard.WithScheduler(func(time.Duration, func()) {}))
	notifications := NewNotificationHandler(notifier, f.surface, logger, errorHandler)
	refresh := NewRefreshHandler(f.refresh, logger, errorHandler)
	health := NewHealthHandler(services.NewHealthService(nil, hub.ClientCount, logger), logger)

	r := chi.NewRouter()
	r.Get("/", dash.Page)
	r.Post("/search", dash.Search)
	r.Post("/filter", dash.Filter)
	r.Post("/reprocess/{id}", dash.Reprocess)
	r.Get("/summary/chart", dash.SummaryChart)
	r.Get("/export.csv", export.ExportCSV)
	r.Get("/health", health.Dashboard)
	r.Route("/api", func(r chi.Router) {
		r.Mount("/events", eventsAPI.Routes(export.Export))
		r.Get("/stats", eventsAPI.Stats)
		r.Get("/summary", eventsAPI.Summary)
		r.Mount("/notifications", notifications.Routes())
		r.Get("/refresh", refresh.State)
		r.Put("/refresh", refresh.Update)
		r.Get("/health/ready", health.ReadinessCheck)
	})
	f.router = r
	return f
}

func (f *handlerFixture) do(t *testing.T, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) eventByOrder(t *testing.T, orderID string) domain.IntegrationEvent {
	t.Helper()
	for _, e := range f.events {
		if e.OrderID == orderID {
			return e
		}
	}
	t.Fatalf("no fixture event %s", orderID)
	return domain.IntegrationEvent{}
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestDashboardPage(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `class="events-table"`)
	assert.Contains(t, body, "PO-00001")
	assert.Contains(t, body, "PO-77777")

	rec = f.do(t, http.MethodGet, "/?status=success", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "PO-00001")
	assert.NotContains(t, body, "PO-00003")

	rec = f.do(t, http.MethodGet, "/?status=bogus", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardSearchAndFilter(t *testing.T) {
	f := newHandlerFixture(t)
	form := "application/x-www-form-urlencoded"

	rec := f.do(t, http.MethodPost, "/search", url.Values{"orderId": {"00004"}}.Encode(), form)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "PO-00004")
	assert.NotContains(t, body, "PO-00001")
	assert.Contains(t, body, `value="00004"`)

	rec = f.do(t, http.MethodPost, "/filter", url.Values{"status": {"PENDING"}}.Encode(), form)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "PO-00003")
	assert.NotContains(t, body, "PO-00001")

	rec = f.do(t, http.MethodPost, "/filter", url.Values{"status": {"ALL"}}.Encode(), form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PO-00001")
}

func TestDashboardReprocess(t *testing.T) {
	f := newHandlerFixture(t)
	failed := f.eventByOrder(t, "PO-77777")

	rec := f.do(t, http.MethodPost, "/reprocess/"+itoa(failed.ID), "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	stored, err := f.store.Get(context.Background(), failed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusPending, stored.Status)
	assert.Empty(t, stored.ErrorDetails)

	rec = f.do(t, http.MethodPost, "/reprocess/9999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/reprocess/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryChart(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/summary/chart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
	assert.Contains(t, rec.Body.String(), "Order-to-SAP")
}

func TestExportCSV(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/export.csv", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.MediaTypeCSV, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=export.csv", rec.Header().Get("Content-Disposition"))

	lines := strings.Split(rec.Body.String(), "\n")
	assert.Equal(t, `"ID","Order ID","Integration","Status","Message","Error","Retries","Time"`, lines[0])
	assert.Len(t, lines, len(f.events)+1)
	assert.Zero(t, f.registry.Active())
}

func TestExportFollowsListing(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/events/export?status=FAILED&filename=failed.csv&quoting=rfc4180", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=failed.csv", rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	assert.Contains(t, body, "PO-77777")
	assert.Contains(t, body, "PO-00002")
	assert.NotContains(t, body, "PO-00001")
}

func TestExportXLSX(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/events/export?format=XLSX", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=export.xlsx", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestExportRejectsUnknownParameters(t *testing.T) {
	f := newHandlerFixture(t)

	for _, target := range []string{
		"/api/events/export?format=pdf",
		"/api/events/export?quoting=smart",
		"/api/events/export?status=LOST",
	} {
		rec := f.do(t, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"report.csv", "report.csv"},
		{"../../etc/passwd", "passwd"},
		{`C:\temp\out.csv`, "out.csv"},
		{`bad"name.csv`, "badname.csv"},
		{"..", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exportFilename(tt.in), tt.in)
	}
}

func TestEventsAPICreate(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/events",
		`{"orderId":"PO-90001","status":"SUCCESS","integrationName":"Order-to-SAP"}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var accepted api.EventAccepted
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, api.EventAccepted{Status: "success", Message: "Event received and published", OrderID: "PO-90001"}, accepted)

	published := f.bus.Published(messaging.DefaultEventsTopic)
	require.Len(t, published, 1)
	assert.Equal(t, "PO-90001", published[0].Key)

	rec = f.do(t, http.MethodPost, "/api/events", `{"status":"SUCCESS"}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/events", `{`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsAPIRead(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/events?status=FAILED", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list api.EventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)

	rec = f.do(t, http.MethodGet, "/api/events/failed", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)

	target := f.eventByOrder(t, "PO-00002")
	rec = f.do(t, http.MethodGet, "/api/events/"+itoa(target.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.IntegrationEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "PO-00002", got.OrderID)

	rec = f.do(t, http.MethodGet, "/api/events/4242", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeEventNotFound, decodeProblem(t, rec)["type"])

	rec = f.do(t, http.MethodGet, "/api/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(7), stats.TotalEvents)
	assert.Equal(t, int64(3), stats.FailedCount)

	rec = f.do(t, http.MethodGet, "/api/summary", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary []domain.IntegrationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.NotEmpty(t, summary)
}

func TestEventsAPIRetry(t *testing.T) {
	f := newHandlerFixture(t)
	failed := f.eventByOrder(t, "PO-77777")

	rec := f.do(t, http.MethodPost, "/api/events/"+itoa(failed.ID)+"/retry",
		`{"updatedPayload":"<order id=\"PO-77777\" fixed=\"true\"/>","userNotes":"fixed plant code"}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.IntegrationEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.EventStatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Len(t, f.bus.Published(messaging.DefaultRetryTopic), 1)

	rec = f.do(t, http.MethodPost, "/api/events/"+itoa(failed.ID)+"/retry", `{"updatedPayload":"x"}`, "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeEventNotFailed, decodeProblem(t, rec)["type"])
}

func TestNotificationsAPI(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/notifications", `{"message":"Export finished","severity":"Success"}`, "application/json")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var shown api.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shown))
	assert.Equal(t, api.NotificationResponse{Message: "Export finished", Severity: "success"}, shown)

	rec = f.do(t, http.MethodGet, "/api/notifications", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var live []dashboard.Element
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &live))
	require.Len(t, live, 1)
	assert.Equal(t, "notification notification-success", live[0].Class)
	assert.Equal(t, "Export finished", live[0].Text)

	rec = f.do(t, http.MethodPost, "/api/notifications", `{"severity":"info"}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshAPI(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/refresh", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state api.RefreshState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, api.RefreshState{Enabled: false, Interval: "1h0m0s"}, state)

	rec = f.do(t, http.MethodPut, "/api/refresh", `{"enabled":true}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Enabled)
	assert.True(t, f.refresh.Enabled())

	rec = f.do(t, http.MethodGet, "/", "", "")
	assert.Contains(t, rec.Body.String(), `data-auto-refresh="true"`)

	rec = f.do(t, http.MethodPut, "/api/refresh", `{"enabled":false}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.refresh.Enabled())
}

func TestDashboardHealth(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health api.DashboardHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "UP", health.Status)
	assert.Equal(t, "Dashboard is running", health.Message)
	assert.Positive(t, health.Timestamp)

	rec = f.do(t, http.MethodGet, "/api/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
