package backend

import (
	"errors"
	"fmt"
)

// TransportError means the request never produced a readable response
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means the response body was not the JSON shape the endpoint promises
type DecodeError struct {
	Endpoint string
	Snippet  string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response: %v (body: %s)", e.Endpoint, e.Err, e.Snippet)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AppError is an {"error": "..."} body returned by the backend
type AppError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: backend error (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// StatusError is a non-2xx response without an application error body
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
}

// Outcome classifies err into a short label used for metrics and logs
func Outcome(err error) string {
	var (
		transportErr *TransportError
		decodeErr    *DecodeError
		appErr       *AppError
		statusErr    *StatusError
	)

	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &appErr):
		return "app_error"
	case errors.As(err, &decodeErr):
		return "decode_error"
	case errors.As(err, &statusErr):
		return "status_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	default:
		return "error"
	}
}

// UserMessage returns the backend-supplied message when err carries one
func UserMessage(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message, true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message, true
	}
	return "", false
}
