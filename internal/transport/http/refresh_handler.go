package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"sapdash/internal/dashboard"
	apierrors "sapdash/internal/errors"
	api "sapdash/pkg/contracts/api/v1"
)

// RefreshHandler reads and toggles the dashboard auto refresh.
type RefreshHandler struct {
	refresh      *dashboard.AutoRefresh
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRefreshHandler creates a refresh handler.
func NewRefreshHandler(refresh *dashboard.AutoRefresh, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RefreshHandler {
	return &RefreshHandler{
		refresh:      refresh,
		logger:       logger.With(slog.String("handler", "refresh")),
		errorHandler: errorHandler,
	}
}

// State handles GET /api/refresh
func (h *RefreshHandler) State(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.state())
}

// Update handles PUT /api/refresh
func (h *RefreshHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshState
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	h.refresh.Set(r.Context(), req.Enabled)
	h.logger.InfoContext(r.Context(), "auto refresh toggled", slog.Bool("enabled", req.Enabled))
	render.JSON(w, r, h.state())
}

func (h *RefreshHandler) state() api.RefreshState {
	return api.RefreshState{
		Enabled:  h.refresh.Enabled(),
		Interval: h.refresh.Interval().String(),
	}
}
