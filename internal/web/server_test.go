package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielsht/flightclaims/internal/compensation"
	"github.com/danielsht/flightclaims/internal/flight"
	"github.com/danielsht/flightclaims/internal/provider"
	"github.com/danielsht/flightclaims/internal/service"
	"github.com/danielsht/flightclaims/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	flight *flight.NormalizedFlight
}

func (r *fakeResolver) Resolve(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, []provider.Attempt) {
	return r.flight, nil
}

func newTestServer(t *testing.T, resolved *flight.NormalizedFlight) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := service.New(st, &fakeResolver{flight: resolved}, compensation.DefaultConfig())
	chain := provider.NewChain(provider.ChainConfig{})
	return NewServer(svc, chain)
}

func webFlight() *flight.NormalizedFlight {
	return &flight.NormalizedFlight{
		FlightNumber:       "LY315",
		FlightDate:         "2024-05-20",
		Airline:            flight.Airline{IATA: "LY", Name: "El Al Israel Airlines"},
		Departure:          flight.Airport{IATA: "TLV", Name: "Ben Gurion Airport", Country: "IL"},
		Arrival:            flight.Airport{IATA: "FRA", Name: "Frankfurt Airport", Country: "DE"},
		ScheduledDeparture: time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC),
		ScheduledArrival:   time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC),
		ActualArrival:      time.Date(2024, 5, 20, 20, 30, 0, 0, time.UTC),
		Status:             flight.StatusArrived,
		Type:               flight.TypePassenger,
		DelayMinutes:       510,
		DistanceKM:         2965.3,
		Provider:           flight.ProviderMeta{Name: "aeroapi", Confidence: 0.95},
	}
}

func TestResolveEndpoint(t *testing.T) {
	s := newTestServer(t, webFlight())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/LY315/2024-05-20", nil)
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Flight       flight.NormalizedFlight `json:"flight"`
		Compensation compensation.Analysis   `json:"compensation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "LY315", body.Flight.FlightNumber)
	assert.True(t, body.Compensation.Israel.Eligible)
	require.NotNil(t, body.Compensation.Recommended)
}

func TestResolveEndpointNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/XX999/2024-05-20", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "flight not found")
}

func TestResolveEndpointBadDate(t *testing.T) {
	s := newTestServer(t, webFlight())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights/LY315/May-20", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProviderStatusEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/status", nil)
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}
