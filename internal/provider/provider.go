package provider

import (
	"context"
	"time"

	"github.com/danielsht/flightclaims/internal/flight"
)

// Provider is the interface for all flight data sources.
type Provider interface {
	// Name returns a unique provider name for logging and breaker state.
	Name() string

	// Priority orders providers within the chain; lower is tried first.
	Priority() int

	// GetFlightData fetches and normalizes one flight. A (nil, nil) return
	// means the provider legitimately has no record; failures are typed
	// *Error values.
	GetFlightData(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, error)

	// CanHandle reports whether the provider covers the requested date.
	// Each provider has a bounded historical window.
	CanHandle(flightNumber, date string) bool

	// Status returns operational introspection for the provider.
	Status() Status
}

// Status describes a provider's current operational state.
type Status struct {
	Available      bool       `json:"available"`
	RemainingQuota *int       `json:"remaining_quota,omitempty"`
	ResetTime      *time.Time `json:"reset_time,omitempty"`
	ResponseTimeMs *int64     `json:"response_time_ms,omitempty"`
}

// Clock abstracts time for deterministic cache-TTL and breaker-cooldown tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Sleep waits for d or until ctx is cancelled, whichever comes first.
func (realClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// SystemClock is the wall clock used outside tests.
var SystemClock Clock = realClock{}
