package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"sapdash/internal/dashboard"
	apierrors "sapdash/internal/errors"
	api "sapdash/pkg/contracts/api/v1"
)

// LiveNotifications lists the notifications currently on the page.
type LiveNotifications interface {
	Live() []dashboard.Element
}

// NotificationHandler shows transient notifications on every dashboard page.
type NotificationHandler struct {
	notifier     *dashboard.Notifier
	live         LiveNotifications
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewNotificationHandler creates a notification handler. live may be nil.
func NewNotificationHandler(notifier *dashboard.Notifier, live LiveNotifications, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *NotificationHandler {
	return &NotificationHandler{
		notifier:     notifier,
		live:         live,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger.With(slog.String("handler", "notifications")),
		errorHandler: errorHandler,
	}
}

// Routes returns the /api/notifications routes.
func (h *NotificationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.List)
	r.Post("/", h.Show)
	return r
}

// Show handles POST /api/notifications
func (h *NotificationHandler) Show(w http.ResponseWriter, r *http.Request) {
	var req api.NotificationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	req.Severity = strings.ToLower(strings.TrimSpace(req.Severity))
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	severity := dashboard.Severity(req.Severity)
	if severity == "" {
		severity = dashboard.SeverityInfo
	}
	if err := h.notifier.Show(r.Context(), req.Message, severity); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, api.NotificationResponse{Message: req.Message, Severity: string(severity)})
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	elements := []dashboard.Element{}
	if h.live != nil {
		elements = append(elements, h.live.Live()...)
	}
	render.JSON(w, r, elements)
}
