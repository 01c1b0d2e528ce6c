package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/danielsht/flightclaims/internal/flight"
)

const (
	aviationstackBaseURL = "https://api.aviationstack.com/v1"

	// Broadest airline coverage but the weakest history window and no
	// distance data, hence the lowest confidence tier.
	aviationstackConfidence  = 0.75
	aviationstackWindowDays  = 7
	aviationstackHTTPTimeout = 15 * time.Second
)

// AviationStackProvider resolves flights through the AviationStack API.
// Auth rides in the query string rather than a header.
type AviationStackProvider struct {
	apiKey string
	client *apiClient
}

// NewAviationStackProvider creates an AviationStack provider.
func NewAviationStackProvider(apiKey, baseURL string) *AviationStackProvider {
	if baseURL == "" {
		baseURL = aviationstackBaseURL
	}
	return &AviationStackProvider{
		apiKey: apiKey,
		client: newAPIClient("aviationstack", baseURL, nil, aviationstackHTTPTimeout),
	}
}

func (a *AviationStackProvider) Name() string  { return "aviationstack" }
func (a *AviationStackProvider) Priority() int { return 3 }

func (a *AviationStackProvider) CanHandle(flightNumber, date string) bool {
	return withinWindow(date, aviationstackWindowDays)
}

func (a *AviationStackProvider) Status() Status { return a.client.status() }

// GetFlightData fetches the flight through the paginated /flights endpoint.
func (a *AviationStackProvider) GetFlightData(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, error) {
	if _, err := flight.ParseDate(date); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidRequest, Message: err.Error(), Err: err}
	}

	params := url.Values{
		"access_key":  {a.apiKey},
		"flight_iata": {strings.ToUpper(flightNumber)},
		"flight_date": {date},
	}
	body, err := a.client.getJSON(ctx, "/flights", params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidData, Message: "decoding response", Err: err}
	}
	if len(envelope.Data) == 0 {
		return nil, nil
	}

	var leg asLeg
	if err := json.Unmarshal(envelope.Data[0], &leg); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidData, Message: "decoding flight leg", Err: err}
	}
	return leg.normalize(flightNumber, date, envelope.Data[0]), nil
}

// ── AviationStack JSON types ──

type asMovement struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	Scheduled string `json:"scheduled"`
	Actual    string `json:"actual"`
	Delay     *int   `json:"delay"` // minutes, arrival side only
}

type asLeg struct {
	FlightDate   string     `json:"flight_date"`
	FlightStatus string     `json:"flight_status"`
	Departure    asMovement `json:"departure"`
	Arrival      asMovement `json:"arrival"`
	Airline      struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airline"`
	Flight struct {
		IATA string `json:"iata"`
	} `json:"flight"`
	Aircraft *struct {
		IATA         string `json:"iata"`
		Registration string `json:"registration"`
	} `json:"aircraft"`
}

func (l *asLeg) normalize(flightNumber, date string, raw json.RawMessage) *flight.NormalizedFlight {
	nf := &flight.NormalizedFlight{
		FlightNumber: strings.ToUpper(flightNumber),
		FlightDate:   date,
		Airline:      BuildAirline(l.Airline.IATA, l.Airline.Name),
		Departure:    BuildAirport(l.Departure.IATA, l.Departure.Airport, ""),
		Arrival:      BuildAirport(l.Arrival.IATA, l.Arrival.Airport, ""),
		Provider: flight.ProviderMeta{
			Name:        "aviationstack",
			RawPayload:  raw,
			ProviderID:  l.Flight.IATA + "@" + l.FlightDate,
			Confidence:  aviationstackConfidence,
			RetrievedAt: time.Now().UTC(),
		},
	}

	nf.ScheduledDeparture = ResolveTimestamp(l.Departure.Scheduled, l.Departure.IATA)
	nf.ActualDeparture = ResolveTimestamp(l.Departure.Actual, l.Departure.IATA)
	nf.ScheduledArrival = ResolveTimestamp(l.Arrival.Scheduled, l.Arrival.IATA)
	nf.ActualArrival = ResolveTimestamp(l.Arrival.Actual, l.Arrival.IATA)

	nf.Status = MapStatus(l.FlightStatus)

	aircraftModel := ""
	if l.Aircraft != nil {
		aircraftModel = l.Aircraft.IATA
		nf.Aircraft = &flight.AircraftInfo{Model: l.Aircraft.IATA, Registration: l.Aircraft.Registration}
	}
	nf.Type = InferFlightType(aircraftModel, "")

	if l.Arrival.Delay != nil && *l.Arrival.Delay > 0 {
		nf.DelayMinutes = *l.Arrival.Delay
	} else {
		nf.DelayMinutes = DelayMinutes(nf.ScheduledArrival, nf.ActualArrival)
	}

	// AviationStack never reports distance; always derived.
	nf.DistanceKM = DistanceKM(0, nf.Departure.IATA, nf.Arrival.IATA)

	return nf
}
