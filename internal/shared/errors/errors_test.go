package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_TypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		code  int
	}{
		{"validation", NewValidationError("bad input"), IsValidationError, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), IsNotFoundError, http.StatusNotFound},
		{"conflict", NewConflictError("already paid"), IsConflictError, http.StatusConflict},
		{"external", NewExternalDependencyError("gateway down", errors.New("timeout")), IsExternalDependencyError, http.StatusBadGateway},
		{"reconciliation", NewReconciliationGapError("orders not generated", errors.New("db")), IsReconciliationGap, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.Equal(t, tt.code, GetAppError(wrapped).Code)
		})
	}
}

func TestAppError_UnwrapCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalDependencyError("gateway call failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(errors.New("Error 1062: Duplicate entry '1-2024-06-10-lunch' for key")))
	assert.True(t, IsDuplicateError(errors.New("UNIQUE constraint failed: orders.subscription_id")))
	assert.False(t, IsDuplicateError(errors.New("record not found")))
	assert.False(t, IsDuplicateError(nil))
}
