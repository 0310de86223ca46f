package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the category of an application error
type Code string

const (
	// CodeUnauthorized means no acting user identity could be resolved
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeForbidden means the action is not permitted (block/settings gate)
	CodeForbidden Code = "FORBIDDEN"
	// CodeNotFound means the target entity does not exist or is already resolved
	CodeNotFound Code = "NOT_FOUND"
	// CodeValidation means the input failed a domain check
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeDatabase means the graph store failed
	CodeDatabase Code = "DATABASE_ERROR"
	// CodeRateLimit means the advisory limiter tripped
	CodeRateLimit Code = "RATE_LIMIT_EXCEEDED"
	// CodeInternal is the uncategorized fallback
	CodeInternal Code = "INTERNAL_SERVER_ERROR"
)

// AppError is the error type surfaced at component boundaries
type AppError struct {
	Code    Code
	Status  int
	Message string
	Err     error // wrapped cause, never exposed to API callers
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause
func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

func NewRateLimit(message string) *AppError {
	return &AppError{Code: CodeRateLimit, Status: http.StatusTooManyRequests, Message: message}
}

func NewDatabase(message string, err error) *AppError {
	return &AppError{Code: CodeDatabase, Status: http.StatusInternalServerError, Message: message, Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "An unexpected error occurred", Err: err}
}

// From converts any error into an AppError, defaulting to internal.
// Raw store errors are never handed to API callers directly.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// IsCode reports whether err carries the given error code
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
