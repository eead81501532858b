package records

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the store taxonomy. Store methods wrap these with
// context via %w; handlers branch with errors.Is and map them onto HTTP
// status codes through HTTPStatus.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("record already exists")
	ErrIO            = errors.New("datastore io failure")
	ErrSerialization = errors.New("datastore serialization failure")
)

// ValidationError reports a rejected record field. Reason is the
// user-facing message and already names the field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a validation error for one field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// HTTPStatus maps a store error onto its control-plane status code:
// validation 400, not found 404, duplicate 409, everything else 500.
func HTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorType labels a store error for the failure counters.
func ErrorType(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrSerialization):
		return "serialization_error"
	case errors.Is(err, ErrIO):
		return "io_error"
	default:
		return "internal_error"
	}
}

// wrapIO tags err as a datastore IO failure with a short context string.
func wrapIO(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrIO, what, err)
}
