package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures crossing the service gateway
type ErrorKind string

const (
	// ErrorKindPermissionDenied means the microphone could not be acquired
	ErrorKindPermissionDenied ErrorKind = "permission_denied"
	// ErrorKindTransport means no response reached the service
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindServiceRejected means the service answered with a non-success status
	ErrorKindServiceRejected ErrorKind = "service_rejected"
	// ErrorKindMalformedResponse means a success status carried an unexpected body
	ErrorKindMalformedResponse ErrorKind = "malformed_response"
)

// Error is the typed failure produced by the gateway and the audio adapters
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a typed error of the given kind
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is a *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// UserMessage returns the message to surface to the user for err.
// A server provided message is returned verbatim, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
