// Package errors defines the error types surfaced by the Threads API wrapper.
//
// Each kind corresponds to a distinct remediation: authentication errors
// need a new token, rate-limit errors carry a retry hint, validation errors
// are caught before any network call, container errors require creating a
// new container, and timeout errors mean the container state is unknown
// rather than failed.
package errors

import (
	"fmt"
	"time"
)

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// APIError is the generic platform error, carrying the embedded error body
// returned by the API. More specific kinds (AuthError, PermissionError,
// RateLimitError, NotFoundError) embed it.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int
	// Code is the platform error code (e.g. 190 for an expired token)
	Code int
	// Subcode is the platform error subcode, if present
	Subcode int
	// Message is the human-readable error message from the platform
	Message string
	// TraceID is the platform-side trace identifier (fbtrace_id)
	TraceID string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("threads API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("threads API error (status %d): %s", e.StatusCode, e.Message)
}

// AuthError indicates an expired or invalid access token. It is never
// retried automatically.
type AuthError struct {
	APIError
}

func (e *AuthError) Error() string {
	return "auth error: " + e.APIError.Error()
}

// PermissionError indicates the token lacks a scope or the user lacks
// permission for the requested action.
type PermissionError struct {
	APIError
}

func (e *PermissionError) Error() string {
	return "permission error: " + e.APIError.Error()
}

// NotFoundError indicates the requested object does not exist or is not
// visible to the authenticated user.
type NotFoundError struct {
	APIError
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.APIError.Error()
}

// RateLimitError indicates the platform rejected the request for exceeding
// a quota. RetryAfter holds the platform's hint when one was provided,
// zero otherwise. The caller decides whether to wait or fail.
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit error (retry after %s): %s", e.RetryAfter, e.APIError.Error())
	}
	return "rate limit error: " + e.APIError.Error()
}

// ValidationError indicates malformed input caught before any network call.
type ValidationError struct {
	// Field names the offending input field when derivable
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ContainerError indicates remote media processing failed. The container
// is unusable; retrying requires creating a new one.
type ContainerError struct {
	// ContainerID identifies the failed container
	ContainerID string
	// Message is the platform-supplied processing error, if any
	Message string
}

func (e *ContainerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("container %s failed: %s", e.ContainerID, e.Message)
	}
	return fmt.Sprintf("container %s failed", e.ContainerID)
}

// TimeoutError indicates the polling ceiling was reached before the
// container settled. Distinct from ContainerError: the container may still
// finish later, and the same ID can be polled again.
type TimeoutError struct {
	// ContainerID identifies the container that was being polled
	ContainerID string
	// Waited is how long the poller waited before giving up
	Waited time.Duration
	// LastStatus is the last observed (non-terminal) status string
	LastStatus string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("container %s not ready after %s (status: %s)", e.ContainerID, e.Waited, e.LastStatus)
}

// RequestError indicates a network-level failure: timeout, connection
// reset, or an unreadable response. Idempotent reads are retried
// internally before this surfaces.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Err contains the underlying error
	Err error
}

func (e *RequestError) Error() string {
	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %v", e.Operation, e.URL, e.Err)
	}
	if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("request error: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
