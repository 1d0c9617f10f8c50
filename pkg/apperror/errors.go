package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matching the failure kinds surfaced by the core
// operations. Services wrap these with context; handlers map them to HTTP
// status codes via MapErrorToStatus.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("resource not found")
	ErrFailedPrecondition = errors.New("precondition failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal server error")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FailedPrecondition wraps ErrFailedPrecondition with a human-readable
// business-rule reason.
func FailedPrecondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFailedPrecondition, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound naming the missing resource.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidArgument wraps ErrInvalidArgument naming the malformed input.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	if errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrPermissionDenied) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrFailedPrecondition) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidArgument) {
		return http.StatusBadRequest
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
