// ABOUTME: Sentinel errors for the analyzer's failure taxonomy
// ABOUTME: Callers classify failures with errors.Is and map them to HTTP statuses

package models

import "errors"

// Failure taxonomy. Each external dependency maps its own errors onto these so
// operators can distinguish "doesn't exist" from "can't see it" from "broken
// output". None of these are retried; MalformedResponse is never coerced into
// a placeholder result.
var (
	// ErrValidation marks bad input: identifier syntax, unknown scenario,
	// batch size out of bounds, empty or disallowed override keys.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an identifier the config source does not know.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied marks a credential or authorization failure at an
	// external dependency.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTimeout marks an external call that exceeded its budget.
	ErrTimeout = errors.New("timeout")

	// ErrRateLimited marks throttling by the reasoning service.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable marks a 5xx or unreachable external dependency.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrMalformedResponse marks reasoning output with no extractable,
	// schema-valid JSON object.
	ErrMalformedResponse = errors.New("malformed reasoning response")

	// ErrUnknown marks a dependency failure that fits no other member, such
	// as an unexpected non-5xx status from the reasoning endpoint.
	ErrUnknown = errors.New("unknown failure")
)

// ErrorKind returns a stable machine-readable label for the taxonomy member
// err belongs to, or "internal" for anything unclassified.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrUnknown):
		return "unknown"
	default:
		return "internal"
	}
}
