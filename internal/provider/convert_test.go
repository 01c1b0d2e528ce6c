package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielsht/flightclaims/internal/flight"
)

func TestMapStatus(t *testing.T) {
	cases := map[string]flight.Status{
		"scheduled": flight.StatusOnTime,
		"Landed":    flight.StatusArrived,
		"ACTIVE":    flight.StatusDeparted,
		"cancelled": flight.StatusCancelled,
		"canceled":  flight.StatusCancelled,
		"diverted":  flight.StatusDiverted,
		"delayed":   flight.StatusDelayed,
		"  gate  ":  flight.StatusBoarding,
		"whatever":  flight.StatusUnknown,
		"":          flight.StatusUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, MapStatus(raw), "raw %q", raw)
	}
}

func TestInferFlightType(t *testing.T) {
	assert.Equal(t, flight.TypeCargo, InferFlightType("B748 Freighter", ""))
	assert.Equal(t, flight.TypeCargo, InferFlightType("", "cargo"))
	assert.Equal(t, flight.TypeCharter, InferFlightType("Gulfstream bizjet", ""))
	assert.Equal(t, flight.TypePassenger, InferFlightType("A320", ""))
	assert.Equal(t, flight.TypePassenger, InferFlightType("", ""))
	// Explicit provider flag beats the aircraft heuristic.
	assert.Equal(t, flight.TypePassenger, InferFlightType("B748 Freighter", "passenger"))
}

func TestResolveTimestampWithOffset(t *testing.T) {
	got := ResolveTimestamp("2024-05-20T13:30:00+03:00", "TLV")
	assert.Equal(t, time.Date(2024, 5, 20, 10, 30, 0, 0, time.UTC), got)
}

func TestResolveTimestampLocalUsesAirportTimezone(t *testing.T) {
	// Bare local time at Ben Gurion in May is IDT, UTC+3.
	got := ResolveTimestamp("2024-05-20T13:30:00", "TLV")
	assert.Equal(t, time.Date(2024, 5, 20, 10, 30, 0, 0, time.UTC), got)
}

func TestResolveTimestampUnknownAirportFallsBackToUTC(t *testing.T) {
	got := ResolveTimestamp("2024-05-20 13:30:00", "ZZZ")
	assert.Equal(t, time.Date(2024, 5, 20, 13, 30, 0, 0, time.UTC), got)
}

func TestResolveTimestampGarbage(t *testing.T) {
	assert.True(t, ResolveTimestamp("not a time", "TLV").IsZero())
	assert.True(t, ResolveTimestamp("", "TLV").IsZero())
}

func TestDelayMinutesNeverNegative(t *testing.T) {
	sched := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 200, DelayMinutes(sched, sched.Add(200*time.Minute)))
	assert.Equal(t, 0, DelayMinutes(sched, sched.Add(-15*time.Minute)), "early arrival is zero delay")
	assert.Equal(t, 0, DelayMinutes(sched, time.Time{}))
	assert.Equal(t, 0, DelayMinutes(time.Time{}, sched))
}

func TestDistanceKMPrefersProviderValue(t *testing.T) {
	assert.Equal(t, 1234.0, DistanceKM(1234, "TLV", "FRA"))
}

func TestDistanceKMDerivedFromCoordinates(t *testing.T) {
	got := DistanceKM(0, "TLV", "FRA")
	// Great-circle TLV-FRA is just under 3,000 km.
	require.Greater(t, got, 2800.0)
	require.Less(t, got, 3100.0)
}

func TestDistanceKMUnknownAirport(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKM(0, "TLV", "ZZZ"))
}

func TestBuildAirportEnrichesFromDataset(t *testing.T) {
	ap := BuildAirport("tlv", "", "")
	assert.Equal(t, "TLV", ap.IATA)
	assert.Equal(t, "Ben Gurion Airport", ap.Name)
	assert.Equal(t, "IL", ap.Country)
	assert.Equal(t, "Asia/Jerusalem", ap.Timezone)
}

func TestBuildAirportKeepsProviderFields(t *testing.T) {
	ap := BuildAirport("TLV", "Ben Gurion Intl", "Tel Aviv-Yafo")
	assert.Equal(t, "Ben Gurion Intl", ap.Name)
	assert.Equal(t, "Tel Aviv-Yafo", ap.City)
	assert.Equal(t, "IL", ap.Country, "country still comes from the dataset")
}

func TestBuildAirlineResolvesName(t *testing.T) {
	al := BuildAirline("ly", "")
	assert.Equal(t, "LY", al.IATA)
	assert.Equal(t, "El Al Israel Airlines", al.Name)
}
