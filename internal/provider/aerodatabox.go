package provider

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/danielsht/flightclaims/internal/flight"
)

const (
	aeroDataBoxBaseURL = "https://aerodatabox.p.rapidapi.com"

	aeroDataBoxConfidence  = 0.85
	aeroDataBoxWindowDays  = 30
	aeroDataBoxHTTPTimeout = 12 * time.Second
)

// AeroDataBoxProvider resolves flights through the AeroDataBox API. Its
// payloads carry both local and UTC timestamps per movement.
type AeroDataBoxProvider struct {
	client *apiClient
}

// NewAeroDataBoxProvider creates an AeroDataBox provider authenticated by API key.
func NewAeroDataBoxProvider(apiKey, baseURL string) *AeroDataBoxProvider {
	if baseURL == "" {
		baseURL = aeroDataBoxBaseURL
	}
	return &AeroDataBoxProvider{
		client: newAPIClient("aerodatabox", baseURL, map[string]string{
			"x-magicapi-key": apiKey,
		}, aeroDataBoxHTTPTimeout),
	}
}

func (a *AeroDataBoxProvider) Name() string  { return "aerodatabox" }
func (a *AeroDataBoxProvider) Priority() int { return 2 }

func (a *AeroDataBoxProvider) CanHandle(flightNumber, date string) bool {
	return withinWindow(date, aeroDataBoxWindowDays)
}

func (a *AeroDataBoxProvider) Status() Status { return a.client.status() }

// GetFlightData fetches the legs flown under the number on the given date.
func (a *AeroDataBoxProvider) GetFlightData(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, error) {
	if _, err := flight.ParseDate(date); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidRequest, Message: err.Error(), Err: err}
	}

	path := "/flights/number/" + strings.ToUpper(flightNumber) + "/" + date
	body, err := a.client.getJSON(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var legs []json.RawMessage
	if err := json.Unmarshal(body, &legs); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidData, Message: "decoding response", Err: err}
	}
	if len(legs) == 0 {
		return nil, nil
	}

	var leg adbLeg
	if err := json.Unmarshal(legs[0], &leg); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidData, Message: "decoding flight leg", Err: err}
	}
	return leg.normalize(flightNumber, date, legs[0]), nil
}

// ── AeroDataBox JSON types ──

// adbTime carries the same instant in UTC and airport-local form.
type adbTime struct {
	UTC   string `json:"utc"`   // "2024-05-20 10:30Z"
	Local string `json:"local"` // "2024-05-20 13:30+03:00"
}

// resolve prefers the UTC form and falls back to the local one interpreted
// in the airport's timezone.
func (t *adbTime) resolve(airportIATA string) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.UTC != "" {
		if ts, err := time.Parse("2006-01-02 15:04Z", t.UTC); err == nil {
			return ts.UTC()
		}
		if ts, err := time.Parse(time.RFC3339, t.UTC); err == nil {
			return ts.UTC()
		}
	}
	if t.Local != "" {
		if ts, err := time.Parse("2006-01-02 15:04-07:00", t.Local); err == nil {
			return ts.UTC()
		}
		return ResolveTimestamp(t.Local, airportIATA)
	}
	return time.Time{}
}

type adbMovement struct {
	Airport struct {
		IATA             string `json:"iata"`
		Name             string `json:"name"`
		MunicipalityName string `json:"municipalityName"`
	} `json:"airport"`
	ScheduledTime *adbTime `json:"scheduledTime"`
	RevisedTime   *adbTime `json:"revisedTime"`
	RunwayTime    *adbTime `json:"runwayTime"`
}

// actual returns the best available actual movement time.
func (m *adbMovement) actual() time.Time {
	if m == nil {
		return time.Time{}
	}
	if ts := m.RunwayTime.resolve(m.Airport.IATA); !ts.IsZero() {
		return ts
	}
	return m.RevisedTime.resolve(m.Airport.IATA)
}

type adbLeg struct {
	Number    string      `json:"number"`
	Status    string      `json:"status"`
	IsCargo   bool        `json:"isCargo"`
	Departure adbMovement `json:"departure"`
	Arrival   adbMovement `json:"arrival"`
	Airline   struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airline"`
	Aircraft struct {
		Model string `json:"model"`
		Reg   string `json:"reg"`
	} `json:"aircraft"`
	GreatCircleDistance struct {
		KM float64 `json:"km"`
	} `json:"greatCircleDistance"`
}

func (l *adbLeg) normalize(flightNumber, date string, raw json.RawMessage) *flight.NormalizedFlight {
	nf := &flight.NormalizedFlight{
		FlightNumber: strings.ToUpper(flightNumber),
		FlightDate:   date,
		Airline:      BuildAirline(l.Airline.IATA, l.Airline.Name),
		Departure:    BuildAirport(l.Departure.Airport.IATA, l.Departure.Airport.Name, l.Departure.Airport.MunicipalityName),
		Arrival:      BuildAirport(l.Arrival.Airport.IATA, l.Arrival.Airport.Name, l.Arrival.Airport.MunicipalityName),
		Provider: flight.ProviderMeta{
			Name:        "aerodatabox",
			RawPayload:  raw,
			ProviderID:  l.Number + "@" + date,
			Confidence:  aeroDataBoxConfidence,
			RetrievedAt: time.Now().UTC(),
		},
	}

	nf.ScheduledDeparture = l.Departure.ScheduledTime.resolve(l.Departure.Airport.IATA)
	nf.ActualDeparture = l.Departure.actual()
	nf.ScheduledArrival = l.Arrival.ScheduledTime.resolve(l.Arrival.Airport.IATA)
	nf.ActualArrival = l.Arrival.actual()

	nf.Status = MapStatus(l.Status)
	if l.Aircraft.Model != "" || l.Aircraft.Reg != "" {
		nf.Aircraft = &flight.AircraftInfo{Model: l.Aircraft.Model, Registration: l.Aircraft.Reg}
	}
	flag := ""
	if l.IsCargo {
		flag = "cargo"
	}
	nf.Type = InferFlightType(l.Aircraft.Model, flag)

	nf.DelayMinutes = DelayMinutes(nf.ScheduledArrival, nf.ActualArrival)
	nf.DistanceKM = DistanceKM(l.GreatCircleDistance.KM, nf.Departure.IATA, nf.Arrival.IATA)

	return nf
}
