package provider

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindInvalidRequest     ErrorKind = "INVALID_REQUEST"
	KindRateLimited        ErrorKind = "RATE_LIMITED"
	KindAuthError          ErrorKind = "AUTH_ERROR"
	KindServiceUnavailable ErrorKind = "SERVICE_UNAVAILABLE"
	KindInvalidData        ErrorKind = "INVALID_DATA"
	KindUnknown            ErrorKind = "UNKNOWN_ERROR"
)

// Error is the typed failure every adapter reports. RetryAfter is only set
// for rate-limited errors, taken from the provider's Retry-After hint.
type Error struct {
	Provider   string
	Kind       ErrorKind
	Message    string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// TripsBreaker reports whether this failure counts toward opening the
// provider's circuit breaker. Invalid-data and unknown errors do not.
func (e *Error) TripsBreaker() bool {
	switch e.Kind {
	case KindRateLimited, KindAuthError, KindServiceUnavailable:
		return true
	}
	return false
}

// AsProviderError extracts a typed provider error from an error chain.
func AsProviderError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
