package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Funds Movement (FUNDS) ----

func ErrInsufficientFunds() *AppError {
	return New("FUNDS_001", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("FUNDS_002", "Amount must be a positive decimal number", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("FUNDS_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrProviderFailure marks a transport-level provider failure: the
// call never completed, so no transaction row exists.
func ErrProviderFailure(err error) *AppError {
	return Wrap("FUNDS_004", "Payment provider request failed", http.StatusBadGateway, err)
}

// ---- Users (USER) ----

func ErrEmailExists() *AppError {
	return New("USER_001", "A user with this email already exists", http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistence marks an atomic-unit failure after the provider call
// completed. The provider-side effect stays recorded in the outbox.
func ErrPersistence(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a FUNDS_002-style validation error with a
// caller-supplied message.
func Validation(message string) *AppError {
	return New("FUNDS_002", message, http.StatusBadRequest)
}
