package engine

import (
	"fmt"
	"strings"
)

// ValidationError carries every rule violation found in one request.
// Always raised before any backend call.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// RateLimitError reports a denied tool call and when the window reopens.
// Always raised before any backend call.
type RateLimitError struct {
	Decision Decision
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit reached: %d of %d requests used, resets %s",
		e.Decision.RequestCount, e.Decision.Limit, e.Decision.ResetTime.UTC().Format("15:04:05"))
}

// BackendError wraps a non-2xx backend response. Data is the parsed JSON
// body, or {"detail": rawText} when the body is not JSON.
type BackendError struct {
	Status int
	Data   map[string]any
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// TransportError is a network failure or timeout with no HTTP status.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "backend unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
