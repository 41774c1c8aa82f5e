package zia

import (
	"fmt"
	"net/http"
)

// AuthenticationError means the gateway rejected the credentials or a
// required field was absent. It is fatal for the invocation - no retry.
// The message never carries credential values.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// TransportError wraps a network or remote-service failure with whatever
// detail the service supplied. The engine performs no retries - each call
// either fully applies or fails whole.
type TransportError struct {
	// Op is the method and path that failed
	Op string
	// Status code returned by the service, 0 when the call never completed
	Status int
	// Code is the service error code from the response body, if any
	Code string
	// Detail is the service-supplied message
	Detail string
	// Err is the underlying error for calls that never completed
	Err error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		msg := fmt.Sprintf("%s: gateway returned %d (%s)", e.Op, e.Status, http.StatusText(e.Status))
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		return msg
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidCategoryError means the gateway rejected a category code as unknown.
// Category codes are never validated locally - the namespace is owned by the
// service and evolves independently.
type InvalidCategoryError struct {
	Category string
	Detail   string
}

func (e *InvalidCategoryError) Error() string {
	msg := fmt.Sprintf("the gateway does not know category %q", e.Category)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
