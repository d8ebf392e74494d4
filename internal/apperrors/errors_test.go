package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsErrValidation(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError("amount", "must be positive"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "amount must be positive")

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "amount", vErr.Field)
}

func TestNewPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("failed to write balance", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to write balance")

	// Outcomes are not failures.
	assert.Same(t, ErrNotFound, NewPersistenceError("x", ErrNotFound))
	assert.Same(t, ErrDuplicate, NewPersistenceError("x", ErrDuplicate))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("type", "unknown"), http.StatusBadRequest},
		{"not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"duplicate", ErrDuplicate, http.StatusConflict},
		{"persistence", NewPersistenceError("write", errors.New("timeout")), http.StatusServiceUnavailable},
		{"app error code", NewAppError(http.StatusTeapot, "odd", nil), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
