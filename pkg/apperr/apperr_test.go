package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"not found", ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("loading transfer: %w", ErrNotFound), "NOT_FOUND", http.StatusNotFound},
		{"version conflict", ErrConflictVersion, "CONFLICT_VERSION", http.StatusConflict},
		{
			"permission denied",
			&PermissionDeniedError{Action: "APPROVED", Role: "LOCATION_STAFF"},
			"PERMISSION_DENIED", http.StatusForbidden,
		},
		{
			"invalid transition",
			&InvalidTransitionError{Event: "APPROVED", Status: "REJECTED"},
			"INVALID_TRANSITION", http.StatusConflict,
		},
		{
			"quantity exceeded",
			&QuantityExceededError{Field: "approved_quantity", Message: "12 exceeds requested quantity 10"},
			"QUANTITY_EXCEEDED", http.StatusBadRequest,
		},
		{
			"validation",
			&ValidationError{Field: "reason", Message: "is required"},
			"VALIDATION_ERROR", http.StatusBadRequest,
		},
		{"unknown", errors.New("disk on fire"), "INTERNAL", http.StatusInternalServerError},
		{"nil", nil, "INTERNAL", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, Code(tt.err))
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessagesCarryContext(t *testing.T) {
	assert.Contains(t, (&PermissionDeniedError{Action: "CANCELLED", Role: "CARRIER"}).Error(), "CARRIER")
	assert.Contains(t, (&InvalidTransitionError{Event: "RECEIPT_CONFIRMED", Status: "PENDING"}).Error(), "PENDING")
	assert.Contains(t, (&QuantityExceededError{Field: "damaged_quantity", Message: "7 exceeds received quantity 6"}).Error(), "damaged_quantity")
	assert.Contains(t, (&ValidationError{Field: "carrier.name", Message: "is required"}).Error(), "carrier.name")
}
