package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "sapdash/internal/errors"
	"sapdash/pkg/contracts/domain"
)

// filterFrom reads the orderId and status listing parameters. An empty or
// "ALL" status selects every status.
func filterFrom(values url.Values) (domain.EventFilter, error) {
	f := domain.EventFilter{OrderID: strings.TrimSpace(values.Get("orderId"))}
	status := strings.TrimSpace(values.Get("status"))
	if status == "" || strings.EqualFold(status, "ALL") {
		return f, nil
	}
	parsed, err := domain.ParseEventStatus(status)
	if err != nil {
		return f, apierrors.InvalidParameter("status", err)
	}
	f.Status = parsed
	return f, nil
}

// eventID parses the {id} path parameter.
func eventID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierrors.ErrValidation("id", "Event id must be a positive integer")
	}
	return id, nil
}
