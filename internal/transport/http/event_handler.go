package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "sapdash/internal/errors"
	api "sapdash/pkg/contracts/api/v1"
	"sapdash/pkg/contracts/domain"
)

// EventHandler serves the JSON event API.
type EventHandler struct {
	events       EventService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewEventHandler creates an event API handler.
func NewEventHandler(events EventService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *EventHandler {
	return &EventHandler{
		events:       events,
		logger:       logger.With(slog.String("handler", "events")),
		errorHandler: errorHandler,
	}
}

// Routes returns the /api/events routes. export, when set, serves
// /api/events/export.
func (h *EventHandler) Routes(export http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	if export != nil {
		r.Get("/export", export)
	}
	r.Post("/", h.Create)
	r.Get("/failed", h.Failed)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/retry", h.Retry)
	})
	return r
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var event domain.IntegrationEvent
	if err := render.DecodeJSON(r.Body, &event); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if event.Status == "" {
		event.Status = domain.EventStatusPending
	}
	h.logger.InfoContext(r.Context(), "received event", slog.String("order_id", event.OrderID))

	if err := h.events.Publish(r.Context(), &event); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.EventAccepted{
		Status:  "success",
		Message: "Event received and published",
		OrderID: event.OrderID,
	})
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	list, err := h.events.List(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.EventsResponse{Events: list, Count: len(list)})
}

// Failed handles GET /api/events/failed
func (h *EventHandler) Failed(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.FailedEvents(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.EventsResponse{Events: list, Count: len(list)})
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, event)
}

// Retry handles POST /api/events/{id}/retry
func (h *EventHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	var body api.RetryRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	event, err := h.events.Retry(r.Context(), domain.RetryEventRequest{
		EventID:        id,
		UpdatedPayload: body.UpdatedPayload,
		PayloadFormat:  body.PayloadFormat,
		UserNotes:      body.UserNotes,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, event)
}

// Stats handles GET /api/stats
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.Stats(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}

// Summary handles GET /api/summary
func (h *EventHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.events.SummaryByIntegration(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}
