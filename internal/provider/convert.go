package provider

import (
	"strings"
	"time"

	"github.com/danielsht/flightclaims/internal/airdata"
	"github.com/danielsht/flightclaims/internal/flight"
)

// Shared normalization helpers used by every adapter. Each provider reports
// status strings, timestamps and airports in its own dialect; everything
// funnels through here so the mapping tables exist exactly once.

// statusByAlias maps lowercase provider status strings to the canonical enum.
var statusByAlias = map[string]flight.Status{
	"scheduled": flight.StatusOnTime,
	"on-time":   flight.StatusOnTime,
	"on time":   flight.StatusOnTime,
	"expected":  flight.StatusOnTime,
	"delayed":   flight.StatusDelayed,
	"late":      flight.StatusDelayed,
	"cancelled": flight.StatusCancelled,
	"canceled":  flight.StatusCancelled,
	"diverted":  flight.StatusDiverted,
	"boarding":  flight.StatusBoarding,
	"gate":      flight.StatusBoarding,
	"active":    flight.StatusDeparted,
	"departed":  flight.StatusDeparted,
	"en route":  flight.StatusDeparted,
	"en-route":  flight.StatusDeparted,
	"airborne":  flight.StatusDeparted,
	"landed":    flight.StatusArrived,
	"arrived":   flight.StatusArrived,
}

// MapStatus converts a provider status string to the canonical enum.
func MapStatus(raw string) flight.Status {
	if s, ok := statusByAlias[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return flight.StatusUnknown
}

// cargoMarkers and charterMarkers drive the flight-type heuristic for
// providers that don't classify their flights.
var cargoMarkers = []string{"freighter", "cargo", "b74f", "77f", "767f", "a33f"}
var charterMarkers = []string{"charter", "bizjet", "private"}

// InferFlightType guesses the operation type from the aircraft model and any
// provider-supplied type flag, defaulting to passenger.
func InferFlightType(aircraftType, providerFlag string) flight.Type {
	flag := strings.ToLower(providerFlag)
	switch flag {
	case "passenger", "airline", "scheduled":
		return flight.TypePassenger
	case "cargo", "freight":
		return flight.TypeCargo
	case "charter":
		return flight.TypeCharter
	}

	model := strings.ToLower(aircraftType)
	for _, m := range cargoMarkers {
		if strings.Contains(model, m) {
			return flight.TypeCargo
		}
	}
	for _, m := range charterMarkers {
		if strings.Contains(model, m) {
			return flight.TypeCharter
		}
	}
	return flight.TypePassenger
}

// ResolveTimestamp normalizes a provider timestamp to UTC. Values carrying an
// explicit offset (RFC 3339) are trusted; bare local times are interpreted in
// the airport's IANA timezone. Returns the zero time when nothing parses.
func ResolveTimestamp(raw, airportIATA string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}

	loc := time.UTC
	if a, ok := airdata.LookupAirport(airportIATA); ok && a.Timezone != "" {
		if l, err := time.LoadLocation(a.Timezone); err == nil {
			loc = l
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// BuildAirport fills an Airport from the reference dataset, keeping any
// provider-supplied fields the dataset doesn't know about.
func BuildAirport(iata, name, city string) flight.Airport {
	ap := flight.Airport{IATA: strings.ToUpper(iata), Name: name, City: city}
	if ref, ok := airdata.LookupAirport(iata); ok {
		if ap.Name == "" {
			ap.Name = ref.Name
		}
		if ap.City == "" {
			ap.City = ref.City
		}
		ap.Country = ref.Country
		ap.Timezone = ref.Timezone
	}
	return ap
}

// BuildAirline resolves a carrier from the reference dataset when the
// provider only supplied a code.
func BuildAirline(iata, name string) flight.Airline {
	al := flight.Airline{IATA: strings.ToUpper(iata), Name: name}
	if al.Name == "" {
		if ref, ok := airdata.LookupAirline(iata); ok {
			al.Name = ref.Name
		}
	}
	return al
}

// DelayMinutes computes the arrival delay, clamped at zero. Early arrivals
// and missing actuals count as no delay.
func DelayMinutes(scheduled, actual time.Time) int {
	if scheduled.IsZero() || actual.IsZero() {
		return 0
	}
	d := int(actual.Sub(scheduled).Minutes())
	if d < 0 {
		return 0
	}
	return d
}

// DistanceKM returns the provider-reported distance when present, otherwise
// the great-circle distance between the two airports' reference coordinates.
func DistanceKM(provided float64, depIATA, arrIATA string) float64 {
	if provided > 0 {
		return provided
	}
	dep, okDep := airdata.LookupAirport(depIATA)
	arr, okArr := airdata.LookupAirport(arrIATA)
	if !okDep || !okArr {
		return 0
	}
	return flight.GreatCircleKM(dep.Lat, dep.Lon, arr.Lat, arr.Lon)
}
