package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a tabstash error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrUnknownAction  ErrorCode = "UNKNOWN_ACTION"  // 400
	ErrUnsupported    ErrorCode = "UNSUPPORTED"     // 501
	ErrNoBrowser      ErrorCode = "NO_BROWSER"      // 503
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// StashError represents a structured error with code, status, and details.
type StashError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StashError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *StashError {
	return &StashError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing item.
func NewNotFound(identifier string) *StashError {
	return &StashError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("item not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewUnknownAction creates a 400 error for an unrecognized dispatch action.
// The caller gets an explicit "not ok" result rather than a hung request.
func NewUnknownAction(action string) *StashError {
	return &StashError{
		Code:    ErrUnknownAction,
		Status:  400,
		Message: fmt.Sprintf("unknown action: %q", action),
		Details: map[string]any{"action": action},
	}
}

// NewUnsupported creates a 501 error for operations the attached browser
// backend cannot perform (e.g., tab groups over plain CDP).
func NewUnsupported(op string) *StashError {
	return &StashError{
		Code:    ErrUnsupported,
		Status:  501,
		Message: fmt.Sprintf("operation not supported by this browser backend: %s", op),
		Details: map[string]any{"operation": op},
	}
}

// NewNoBrowser creates a 503 error for tab operations requested while no
// browser is attached.
func NewNoBrowser() *StashError {
	return &StashError{
		Code:    ErrNoBrowser,
		Status:  503,
		Message: "no browser attached; start with --control-url or run the watch command",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the original error is kept in Details for logging
// so boundary layers never leak file paths or SQL text to callers.
func NewInternal(err error) *StashError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &StashError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a StashError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *StashError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
