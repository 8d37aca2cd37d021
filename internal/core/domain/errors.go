package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind is the classification of a failed fetch. It implements error so
// callers can match a kind with errors.Is.
type ErrorKind string

const (
	// KindTransportFailure indicates no protocol response was received.
	KindTransportFailure ErrorKind = "transport_failure"

	// KindNoBody indicates an accepted response that carried no body.
	KindNoBody ErrorKind = "no_body"

	// KindHTTPStatus indicates a status code outside the accepted range.
	KindHTTPStatus ErrorKind = "http_status"

	// KindDecodeFailure indicates the body could not be decoded.
	KindDecodeFailure ErrorKind = "decode_failure"
)

// Error implements the error interface.
func (k ErrorKind) Error() string { return string(k) }

// ErrorType is a coarse category derived from the HTTP status of a failure.
type ErrorType string

const (
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypePermission     ErrorType = "permission"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeOverloaded     ErrorType = "overloaded"
	ErrorTypeServer         ErrorType = "server"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// FetchError is the error produced by the default classifier. Every kind
// carries the complete envelope for diagnostics.
type FetchError struct {
	// Kind is the classification of the failure.
	Kind ErrorKind

	// StatusCode is set for KindHTTPStatus, and for the other kinds whenever
	// HTTP metadata was present.
	StatusCode int

	// Envelope is the raw transport result, unchanged.
	Envelope Envelope

	// Cause is the transport error for KindTransportFailure and the decoder
	// error for KindDecodeFailure.
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	case KindTransportFailure, KindDecodeFailure:
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
		}
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Cause }

// Is matches an ErrorKind target against the error's kind.
func (e *FetchError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// Body returns the response body carried by the envelope, if any.
func (e *FetchError) Body() []byte {
	return e.Envelope.Body
}

// Category maps the failure onto a coarse error type. Only HTTP status
// failures have a category other than unknown.
func (e *FetchError) Category() ErrorType {
	if e.Kind != KindHTTPStatus {
		return ErrorTypeUnknown
	}

	switch code := e.StatusCode; {
	case code == http.StatusBadRequest, code == http.StatusRequestEntityTooLarge,
		code == http.StatusUnprocessableEntity:
		return ErrorTypeInvalidRequest
	case code == http.StatusUnauthorized:
		return ErrorTypeAuthentication
	case code == http.StatusForbidden:
		return ErrorTypePermission
	case code == http.StatusNotFound, code == http.StatusGone:
		return ErrorTypeNotFound
	case code == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case code == http.StatusServiceUnavailable, code == 529:
		return ErrorTypeOverloaded
	case code >= 500:
		return ErrorTypeServer
	default:
		return ErrorTypeUnknown
	}
}

// Convenience constructors used by classifiers.

// ErrTransportFailure creates a transport failure error.
func ErrTransportFailure(env Envelope) *FetchError {
	return &FetchError{Kind: KindTransportFailure, Envelope: env, Cause: env.Err}
}

// ErrHTTPStatus creates an HTTP status error.
func ErrHTTPStatus(code int, env Envelope) *FetchError {
	return &FetchError{Kind: KindHTTPStatus, StatusCode: code, Envelope: env}
}

// ErrNoBody creates a no-body error.
func ErrNoBody(env Envelope) *FetchError {
	return &FetchError{Kind: KindNoBody, StatusCode: statusOf(env), Envelope: env}
}

// ErrDecodeFailure creates a decode failure error.
func ErrDecodeFailure(cause error, env Envelope) *FetchError {
	return &FetchError{Kind: KindDecodeFailure, StatusCode: statusOf(env), Envelope: env, Cause: cause}
}

func statusOf(env Envelope) int {
	if meta, ok := env.HTTP(); ok {
		return meta.StatusCode
	}
	return 0
}
