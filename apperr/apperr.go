package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInternal        = "internal"
	CodeNotFound        = "not_found"
	CodeBadRequest      = "bad_request"
	CodeValidation      = "validation"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeBadGateway      = "bad_gateway"
	CodeTimeout         = "timeout"
	CodePayloadTooLarge = "payload_too_large"

	CodeMethodNotAllowed = "method_not_allowed"
)

// Error represents a structured application error.
type Error struct {
	Code    string
	Status  int
	Message string
	Cause   error
}

// New creates a new Error.
func New(code string, status int, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

// Unwrap returns the root cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// As extracts an *Error if present.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == code
}

func BadRequest(message string, cause error) *Error {
	return New(CodeBadRequest, http.StatusBadRequest, message, cause)
}

// Validation marks input rejected before any upstream call.
func Validation(message string, cause error) *Error {
	return New(CodeValidation, http.StatusBadRequest, message, cause)
}

func Unauthorized(message string, cause error) *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, message, cause)
}

func Forbidden(message string, cause error) *Error {
	return New(CodeForbidden, http.StatusForbidden, message, cause)
}

func NotFound(message string, cause error) *Error {
	return New(CodeNotFound, http.StatusNotFound, message, cause)
}

func Internal(message string, cause error) *Error {
	return New(CodeInternal, http.StatusInternalServerError, message, cause)
}

// BadGateway wraps a failure of the upstream backend.
func BadGateway(message string, cause error) *Error {
	return New(CodeBadGateway, http.StatusBadGateway, message, cause)
}

func Timeout(message string, cause error) *Error {
	return New(CodeTimeout, http.StatusGatewayTimeout, message, cause)
}

func PayloadTooLarge(message string, cause error) *Error {
	return New(CodePayloadTooLarge, http.StatusRequestEntityTooLarge, message, cause)
}
