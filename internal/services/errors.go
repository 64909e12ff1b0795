package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"sapdash/internal/store"
)

// Event service errors
var (
	// ErrEventNotFound is the store's not-found error.
	ErrEventNotFound = store.ErrEventNotFound

	ErrRetryLimitReached = errors.New("retry limit reached")
	ErrEventNotFailed    = errors.New("only failed events can be retried")
	ErrPublishFailed     = errors.New("publish failed")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// FieldError reports the event fields rejected by validation. It matches
// both ErrInvalidInput and validator.ValidationErrors.
type FieldError struct {
	Fields validator.ValidationErrors
}

func (e *FieldError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	return fmt.Sprintf("%s: %s failed %s", ErrInvalidInput, e.Fields[0].Field(), e.Fields[0].Tag())
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Fields}
}
