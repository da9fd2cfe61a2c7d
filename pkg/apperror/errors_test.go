package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("FUNDS_002", "Amount must be a positive decimal number", http.StatusBadRequest)
	assert.Equal(t, "[FUNDS_002] Amount must be a positive decimal number", e.Error())

	wrapped := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, errors.New("conn refused"))
	assert.Equal(t, "[SYS_001] Internal database error: conn refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("commit failed")
	e := ErrPersistence(fmt.Errorf("commit tx: %w", inner))
	assert.True(t, errors.Is(e, inner))
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"insufficient funds", ErrInsufficientFunds(), "FUNDS_001", http.StatusPaymentRequired},
		{"invalid amount", ErrInvalidAmount(), "FUNDS_002", http.StatusBadRequest},
		{"not found", ErrNotFound("wallet"), "FUNDS_003", http.StatusNotFound},
		{"provider failure", ErrProviderFailure(errors.New("timeout")), "FUNDS_004", http.StatusBadGateway},
		{"email exists", ErrEmailExists(), "USER_001", http.StatusConflict},
		{"persistence", ErrPersistence(errors.New("x")), "SYS_001", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_Message(t *testing.T) {
	e := ErrNotFound("user")
	require.Contains(t, e.Message, "user")
}

func TestErrorsAs(t *testing.T) {
	var appErr *AppError
	err := fmt.Errorf("operation: %w", ErrInvalidAmount())
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FUNDS_002", appErr.Code)
}
