package util

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client-side failures.
type ErrorKind string

const (
	// KindTransport covers connection and timeout failures before any
	// response was received.
	KindTransport ErrorKind = "TRANSPORT"
	// KindUnexpectedStatus covers responses outside the recognized success
	// codes for the operation.
	KindUnexpectedStatus ErrorKind = "UNEXPECTED_STATUS"
	// KindValidation covers required-field checks caught before transmission.
	KindValidation ErrorKind = "VALIDATION"
)

// ClientError standardizes failures surfaced by the ticket client.
type ClientError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ClientError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.HTTPStatus)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a connection-level failure.
func NewTransportError(message string, err error) error {
	return &ClientError{Kind: KindTransport, Message: message, Err: err}
}

// NewUnexpectedStatus reports a non-success HTTP response code.
func NewUnexpectedStatus(message string, status int) error {
	return &ClientError{Kind: KindUnexpectedStatus, Message: message, HTTPStatus: status}
}

// NewValidationError reports a missing or invalid required input.
func NewValidationError(message string) error {
	return &ClientError{Kind: KindValidation, Message: message}
}

// AsClientError extracts a ClientError from err, if any.
func AsClientError(err error) (*ClientError, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr, true
	}
	return nil, false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	clientErr, ok := AsClientError(err)
	return ok && clientErr.Kind == KindValidation
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	clientErr, ok := AsClientError(err)
	return ok && clientErr.Kind == KindTransport
}

// IsUnexpectedStatus reports whether err carries a non-success HTTP code.
func IsUnexpectedStatus(err error) bool {
	clientErr, ok := AsClientError(err)
	return ok && clientErr.Kind == KindUnexpectedStatus
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if clientErr, ok := AsClientError(err); ok {
		return clientErr.HTTPStatus
	}
	return 0
}
