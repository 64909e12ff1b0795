package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"sapdash/internal/dashboard"
	apierrors "sapdash/internal/errors"
	"sapdash/internal/webui"
	"sapdash/pkg/contracts/domain"
)

// DashboardHandler serves the HTML dashboard and its form actions.
type DashboardHandler struct {
	events       EventService
	renderer     *webui.Renderer
	refresh      *dashboard.AutoRefresh
	now          func() time.Time
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates a dashboard handler. refresh may be nil.
func NewDashboardHandler(events EventService, renderer *webui.Renderer, refresh *dashboard.AutoRefresh, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		events:       events,
		renderer:     renderer,
		refresh:      refresh,
		now:          time.Now,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "dashboard")),
	}
}

// RenderPage renders the dashboard for f.
func (h *DashboardHandler) RenderPage(ctx context.Context, f domain.EventFilter) ([]byte, error) {
	list, err := h.events.List(ctx, f)
	if err != nil {
		return nil, err
	}
	failed, err := h.events.FailedEvents(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := h.events.Stats(ctx)
	if err != nil {
		return nil, err
	}

	data := webui.NewPageData(list, failed, stats, f, h.now())
	data.AutoRefresh = h.refresh != nil && h.refresh.Enabled()

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportPage renders the listing selected by the export request in ctx. It
// is the page the events table is exported from.
func (h *DashboardHandler) ExportPage(ctx context.Context) ([]byte, error) {
	return h.RenderPage(ctx, exportFilter(ctx))
}

// Page handles GET /
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, f)
}

// Search handles POST /search
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	f := domain.EventFilter{OrderID: r.PostForm.Get("orderId")}
	h.logger.InfoContext(r.Context(), "search performed", slog.String("order_id", f.OrderID))
	h.respond(w, r, f)
}

// Filter handles POST /filter
func (h *DashboardHandler) Filter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	f, err := filterFrom(r.PostForm)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	f.OrderID = ""
	h.logger.InfoContext(r.Context(), "filter applied", slog.String("status", string(f.Status)))
	h.respond(w, r, f)
}

// Reprocess handles POST /reprocess/{id}
func (h *DashboardHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if _, err := h.events.Reprocess(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "event marked for reprocessing", slog.Int64("event_id", id))
	http.Redirect(w, r, "/", http.StatusFound)
}

// SummaryChart handles GET /summary/chart
func (h *DashboardHandler) SummaryChart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.events.SummaryByIntegration(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	stats, err := h.events.Stats(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := webui.NewSummaryChart(summary, stats).Render(&buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (h *DashboardHandler) respond(w http.ResponseWriter, r *http.Request, f domain.EventFilter) {
	page, err := h.RenderPage(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	writeHTML(w, page)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
