package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielsht/flightclaims/internal/flight"
)

const aeroDataBoxPayload = `[
	{
		"number": "LY 315",
		"status": "Arrived",
		"isCargo": false,
		"departure": {
			"airport": {"iata": "TLV", "name": "Tel Aviv Ben Gurion", "municipalityName": "Tel Aviv"},
			"scheduledTime": {"utc": "2024-05-20 08:30Z", "local": "2024-05-20 11:30+03:00"},
			"runwayTime": {"utc": "2024-05-20 09:05Z", "local": "2024-05-20 12:05+03:00"}
		},
		"arrival": {
			"airport": {"iata": "FRA", "name": "Frankfurt-am-Main", "municipalityName": "Frankfurt"},
			"scheduledTime": {"utc": "2024-05-20 12:00Z", "local": "2024-05-20 14:00+02:00"},
			"revisedTime": {"utc": "2024-05-20 15:10Z", "local": "2024-05-20 17:10+02:00"}
		},
		"airline": {"name": "El Al", "iata": "LY"},
		"aircraft": {"model": "Boeing 787-9", "reg": "4X-EDA"},
		"greatCircleDistance": {"km": 2965.3}
	}
]`

func TestAeroDataBoxNormalizesLeg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flights/number/LY315/2024-05-20", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-magicapi-key"))
		w.Write([]byte(aeroDataBoxPayload))
	}))
	defer srv.Close()

	p := NewAeroDataBoxProvider("test-key", srv.URL)
	got, err := p.GetFlightData(context.Background(), "ly315", "2024-05-20")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "LY315", got.FlightNumber)
	assert.Equal(t, "El Al", got.Airline.Name)
	assert.Equal(t, time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC), got.ScheduledDeparture)
	assert.Equal(t, time.Date(2024, 5, 20, 9, 5, 0, 0, time.UTC), got.ActualDeparture)
	assert.Equal(t, time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC), got.ScheduledArrival)
	assert.Equal(t, time.Date(2024, 5, 20, 15, 10, 0, 0, time.UTC), got.ActualArrival)
	assert.Equal(t, flight.StatusArrived, got.Status)
	assert.Equal(t, flight.TypePassenger, got.Type)
	assert.Equal(t, 190, got.DelayMinutes)
	assert.Equal(t, 2965.3, got.DistanceKM)
	require.NotNil(t, got.Aircraft)
	assert.Equal(t, "Boeing 787-9", got.Aircraft.Model)
	assert.Equal(t, 0.85, got.Provider.Confidence)
}

func TestAeroDataBoxLocalTimeFallback(t *testing.T) {
	// No UTC variant: the local form's explicit offset is used.
	payload := `[{
		"number": "LY315",
		"status": "Scheduled",
		"departure": {
			"airport": {"iata": "TLV"},
			"scheduledTime": {"local": "2024-05-20 11:30+03:00"}
		},
		"arrival": {
			"airport": {"iata": "FRA"},
			"scheduledTime": {"local": "2024-05-20 14:00+02:00"}
		},
		"airline": {"iata": "LY"}
	}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	p := NewAeroDataBoxProvider("k", srv.URL)
	got, err := p.GetFlightData(context.Background(), "LY315", "2024-05-20")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC), got.ScheduledDeparture)
	assert.Equal(t, time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC), got.ScheduledArrival)
}

func TestAeroDataBoxCargoFlag(t *testing.T) {
	payload := `[{
		"number": "LY9901",
		"status": "Arrived",
		"isCargo": true,
		"departure": {"airport": {"iata": "TLV"}, "scheduledTime": {"utc": "2024-05-20 08:30Z"}},
		"arrival": {"airport": {"iata": "FRA"}, "scheduledTime": {"utc": "2024-05-20 12:00Z"}},
		"airline": {"iata": "LY"}
	}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	p := NewAeroDataBoxProvider("k", srv.URL)
	got, err := p.GetFlightData(context.Background(), "LY9901", "2024-05-20")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, flight.TypeCargo, got.Type)
}

func TestAeroDataBoxEmptyArrayIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewAeroDataBoxProvider("k", srv.URL)
	got, err := p.GetFlightData(context.Background(), "LY315", "2024-05-20")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAeroDataBoxGarbledPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	p := NewAeroDataBoxProvider("k", srv.URL)
	_, err := p.GetFlightData(context.Background(), "LY315", "2024-05-20")
	pe, ok := AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidData, pe.Kind)
	assert.False(t, pe.TripsBreaker(), "parse failures must not open the breaker")
}

func TestAeroDataBoxWindow(t *testing.T) {
	p := NewAeroDataBoxProvider("k", "")
	assert.True(t, p.CanHandle("LY315", time.Now().AddDate(0, 0, -10).Format("2006-01-02")))
	assert.False(t, p.CanHandle("LY315", time.Now().AddDate(0, 0, -45).Format("2006-01-02")))
}
