package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// The transfer workflow surfaces exactly six caller-visible failure kinds.
// Handlers translate them to HTTP statuses; nothing below the handler layer
// knows about HTTP.

var (
	// ErrNotFound means the transfer id resolves to nothing.
	ErrNotFound = errors.New("transfer request not found")

	// ErrConflictVersion means the write lost an optimistic-concurrency race.
	// Callers must re-read and re-decide, never blindly resubmit.
	ErrConflictVersion = errors.New("transfer request was modified concurrently")
)

// PermissionDeniedError means the actor lacks the capability for this action
// in the transfer's current state.
type PermissionDeniedError struct {
	Action string
	Role   string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("role %s may not perform %s", e.Role, e.Action)
}

// InvalidTransitionError means the requested event is not legal from the
// transfer's current status.
type InvalidTransitionError struct {
	Event  string
	Status string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("event %s is not allowed from status %s", e.Event, e.Status)
}

// QuantityExceededError means a numeric invariant between requested, approved,
// received and damaged quantities would be violated.
type QuantityExceededError struct {
	Field   string
	Message string
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("quantity check failed on %s: %s", e.Field, e.Message)
}

// ValidationError means malformed or missing input, attributed to one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Code returns the machine-readable error code used in response envelopes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflictVersion):
		return "CONFLICT_VERSION"
	}
	var (
		perm       *PermissionDeniedError
		transition *InvalidTransitionError
		quantity   *QuantityExceededError
		validation *ValidationError
	)
	switch {
	case errors.As(err, &perm):
		return "PERMISSION_DENIED"
	case errors.As(err, &transition):
		return "INVALID_TRANSITION"
	case errors.As(err, &quantity):
		return "QUANTITY_EXCEEDED"
	case errors.As(err, &validation):
		return "VALIDATION_ERROR"
	}
	return "INTERNAL"
}

// HTTPStatus maps an error to the status the REST surface responds with.
// ConflictVersion and InvalidTransition share 409 but keep distinct codes.
func HTTPStatus(err error) int {
	switch Code(err) {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "PERMISSION_DENIED":
		return http.StatusForbidden
	case "INVALID_TRANSITION", "CONFLICT_VERSION":
		return http.StatusConflict
	case "QUANTITY_EXCEEDED", "VALIDATION_ERROR":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
