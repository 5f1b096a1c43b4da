package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the backend answers 401: the access token is no
	// longer valid and the caller must log in again
	ErrUnauthorized = errors.New("backend session is no longer valid")

	// ErrForbidden is returned when the backend answers 403
	ErrForbidden = errors.New("backend denied access")

	// ErrNotFound is returned when the backend answers 404. Some resources are
	// optional (e.g. an assessment with no analysis yet), and callers treat this as an
	// empty state rather than a failure
	ErrNotFound = errors.New("backend resource not found")

	// ErrRejected is returned when the backend responded with an envelope whose
	// 'success' flag is false
	ErrRejected = errors.New("backend rejected request")

	// ErrTimeout is returned when a request did not complete within its timeout
	ErrTimeout = errors.New("backend request timed out")

	// ErrUnexpectedStatus is returned for any other non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected response from backend")
)

// Error describes a failed backend response. It unwraps to one of the sentinel errors
// above, and carries the status code and the message supplied by the backend
type Error struct {
	kind       error
	StatusCode int
	Message    string
}

// NewError returns an Error of the given kind, which should be one of the sentinel
// errors declared in this package
func NewError(kind error, statusCode int, message string) *Error {
	return &Error{kind: kind, StatusCode: statusCode, Message: message}
}

// Error formats the error, prefixed with the sentinel message and including the
// original message from the backend if there was one
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.Message)
}

// Unwrap identifies the error as one of the sentinel errors declared in this package
func (e *Error) Unwrap() error {
	return e.kind
}

// Message returns the backend-supplied message for a failed request, suitable for
// presenting to the user, falling back to the error text if there is none
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
