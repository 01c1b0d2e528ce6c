package flight

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status describes where a flight is in its lifecycle.
type Status string

const (
	StatusOnTime    Status = "on-time"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
	StatusDiverted  Status = "diverted"
	StatusBoarding  Status = "boarding"
	StatusDeparted  Status = "departed"
	StatusArrived   Status = "arrived"
	StatusUnknown   Status = "unknown"
)

// Type classifies the kind of operation a flight is.
type Type string

const (
	TypePassenger Type = "passenger"
	TypeCargo     Type = "cargo"
	TypeCharter   Type = "charter"
	TypeUnknown   Type = "unknown"
)

// Airline identifies the operating carrier.
type Airline struct {
	IATA string `json:"iata"`
	Name string `json:"name"`
}

// Airport identifies one end of a flight leg.
type Airport struct {
	IATA     string `json:"iata"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone,omitempty"` // IANA name, e.g. "Asia/Jerusalem"
}

// AircraftInfo carries whatever equipment details a provider exposed.
type AircraftInfo struct {
	Model        string `json:"model,omitempty"`
	Registration string `json:"registration,omitempty"`
}

// ProviderMeta records which provider produced a flight and how much we
// trust it. RawPayload keeps the provider's unmodified response for audit.
type ProviderMeta struct {
	Name        string          `json:"name"`
	RawPayload  json.RawMessage `json:"raw_payload,omitempty"`
	ProviderID  string          `json:"provider_id,omitempty"`
	Confidence  float64         `json:"confidence"`
	RetrievedAt time.Time       `json:"retrieved_at"`
}

// NormalizedFlight is the canonical flight record every provider response is
// converted into. All timestamps are UTC; DelayMinutes is never negative.
type NormalizedFlight struct {
	FlightNumber string  `json:"flight_number"`
	FlightDate   string  `json:"flight_date"` // YYYY-MM-DD
	Airline      Airline `json:"airline"`
	Departure    Airport `json:"departure"`
	Arrival      Airport `json:"arrival"`

	ScheduledDeparture time.Time `json:"scheduled_departure"`
	ActualDeparture    time.Time `json:"actual_departure,omitempty"`
	ScheduledArrival   time.Time `json:"scheduled_arrival"`
	ActualArrival      time.Time `json:"actual_arrival,omitempty"`

	Status       Status        `json:"status"`
	Type         Type          `json:"type"`
	DelayMinutes int           `json:"delay_minutes"`
	DistanceKM   float64       `json:"distance_km"`
	Aircraft     *AircraftInfo `json:"aircraft,omitempty"`
	Provider     ProviderMeta  `json:"provider"`
}

// Key returns the lookup key a flight is cached and stored under.
func (f *NormalizedFlight) Key() string {
	return Key(f.FlightNumber, f.FlightDate)
}

// Key builds the canonical flightNumber+date lookup key.
func Key(flightNumber, date string) string {
	return flightNumber + "|" + date
}

// HasValidSchedule reports whether both scheduled timestamps are usable.
// Flights without a parseable schedule must not be persisted.
func (f *NormalizedFlight) HasValidSchedule() bool {
	return !f.ScheduledDeparture.IsZero() && !f.ScheduledArrival.IsZero()
}

// ParseDate validates a YYYY-MM-DD flight date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid flight date %q: %w", date, err)
	}
	return t, nil
}
