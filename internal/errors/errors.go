package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an assistant error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrFileTooLarge    ErrorCode = "FILE_TOO_LARGE"   // 413
	ErrOverrideFailure ErrorCode = "OVERRIDE_FAILURE" // 502, logged only
	ErrStoreFailure    ErrorCode = "STORE_FAILURE"    // 503
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid input, including empty notes.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error. kind names what was looked up ("card", "envelope", "file").
func NewNotFound(kind, identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileTooLarge creates a 413 error for import files over the size limit.
func NewFileTooLarge(max, actual int64) *Error {
	return &Error{
		Code:    ErrFileTooLarge,
		Status:  413,
		Message: fmt.Sprintf("file exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewOverrideFailure wraps a failure of the optional LLM pre-extraction step.
// Callers log it and continue with the core extraction.
func NewOverrideFailure(err error) *Error {
	return &Error{
		Code:    ErrOverrideFailure,
		Status:  502,
		Message: "override extraction failed",
		Details: map[string]any{"cause": errString(err)},
		Err:     err,
	}
}

// NewStoreFailure wraps a persistence failure. op names the store operation.
func NewStoreFailure(op string, err error) *Error {
	return &Error{
		Code:    ErrStoreFailure,
		Status:  503,
		Message: fmt.Sprintf("store operation failed: %s", op),
		Details: map[string]any{"op": op, "cause": errString(err)},
		Err:     err,
	}
}

// NewInternal creates a 500 error. The message stays generic; the cause goes to Details.
func NewInternal(err error) *Error {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		Err:     err,
	}
}

// Is checks if err (or anything it wraps) is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
