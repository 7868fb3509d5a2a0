package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup resolves to nothing: a ZIP code the
// provider does not know, coordinates with no address, a missing breed.
var ErrNotFound = errors.New("not found")

// ValidationError reports a client-fixable input problem. It names the
// offending field, the value received and the violated constraint.
type ValidationError struct {
	Field      string
	Value      interface{}
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v (%s)", e.Field, e.Value, e.Constraint)
}

// UnavailableError is returned when an upstream dependency (geocoding
// provider, spatial store) is unreachable or keeps failing after retries.
// RetryAfter is a hint in seconds.
type UnavailableError struct {
	Service    string
	RetryAfter int
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable (retry after %ds): %v", e.Service, e.RetryAfter, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// RateLimitedError is returned when the provider rejects a call for quota
// reasons even after internal rate limiting and retries.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (retry after %ds)", e.RetryAfter)
}
