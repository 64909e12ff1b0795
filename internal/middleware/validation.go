package middleware

import (
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strings"

	apierrors "sapdash/internal/errors"
)

// ContentTypeValidator rejects request bodies whose media type is not one
// of contentTypes. Parameters such as charset are ignored. GET, HEAD and
// DELETE pass through.
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodDelete:
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Content-Type")
			if header == "" {
				errorHandler.HandleError(w, r, apierrors.New(http.StatusBadRequest,
					"MISSING_CONTENT_TYPE", "Content-Type header is required"))
				return
			}

			mediaType, _, err := mime.ParseMediaType(header)
			if err == nil && slices.Contains(contentTypes, strings.ToLower(mediaType)) {
				next.ServeHTTP(w, r)
				return
			}
			errorHandler.HandleError(w, r, apierrors.NewWithDetails(http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE", "Unsupported content type",
				map[string]interface{}{"content_type": header, "allowed": contentTypes}))
		})
	}
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{errorHandler: errorHandler}
}

// ValidateEnum returns the value of param, or defaultValue when it is
// absent. On a value outside allowed it writes a 400 and returns false.
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, true
		}
	}

	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}
