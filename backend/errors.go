package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/devmarvs/pmboard/apperr"
)

// Kind classifies a failed upstream call.
type Kind string

const (
	// KindTransport covers network errors, non-2xx statuses, timeouts,
	// undecodable bodies and calls refused for lack of a token.
	KindTransport Kind = "transport"
	// KindServerRejected is a 2xx response carrying success:false.
	KindServerRejected Kind = "server_rejected"
)

// ErrMissingToken is wrapped by the FetchError returned when an
// authenticated endpoint is called without a session token.
var ErrMissingToken = errors.New("missing session token")

// ErrUnexpectedEnvelope reports a body that matches no known envelope.
var ErrUnexpectedEnvelope = errors.New("unexpected response envelope")

// FetchError is returned by every Client operation that reached (or was
// refused before reaching) the network layer.
type FetchError struct {
	Kind Kind
	// Op names the operation, e.g. "list developers".
	Op     string
	Status int
	// Message is the upstream "message" field when one was sent.
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError extracts a FetchError from err.
func AsFetchError(err error) (*FetchError, bool) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr, true
	}
	return nil, false
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind Kind) bool {
	fetchErr, ok := AsFetchError(err)
	return ok && fetchErr.Kind == kind
}

// UserMessage returns the upstream message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	if fetchErr, ok := AsFetchError(err); ok && fetchErr.Message != "" {
		return fetchErr.Message
	}
	return fallback
}

// AppError maps a failed upstream call to the gateway's error taxonomy.
// Validation errors pass through unchanged.
func AppError(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := apperr.As(err); appErr != nil {
		return appErr
	}
	fetchErr, ok := AsFetchError(err)
	if !ok {
		return apperr.Internal(message, err)
	}
	switch {
	case errors.Is(fetchErr.Err, ErrMissingToken):
		return apperr.Unauthorized("login required", err)
	case isTimeout(fetchErr.Err):
		return apperr.Timeout(message, err)
	case fetchErr.Status == http.StatusUnauthorized:
		return apperr.Unauthorized(UserMessage(err, message), err)
	case fetchErr.Status == http.StatusForbidden:
		return apperr.Forbidden(UserMessage(err, message), err)
	case fetchErr.Status == http.StatusNotFound:
		return apperr.NotFound(UserMessage(err, message), err)
	case fetchErr.Status >= 400 && fetchErr.Status < 500:
		return apperr.BadRequest(UserMessage(err, message), err)
	default:
		return apperr.BadGateway(UserMessage(err, message), err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
