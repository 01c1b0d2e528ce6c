package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/danielsht/flightclaims/internal/airdata"
	"github.com/danielsht/flightclaims/internal/flight"
)

const (
	aeroAPIBaseURL = "https://aeroapi.flightaware.com/aeroapi"

	// FlightAware is the highest-fidelity source we integrate.
	aeroAPIConfidence  = 0.95
	aeroAPIWindowDays  = 90
	aeroAPIHTTPTimeout = 10 * time.Second
)

// AeroAPIProvider resolves flights through FlightAware AeroAPI.
type AeroAPIProvider struct {
	client *apiClient
}

// NewAeroAPIProvider creates an AeroAPI provider authenticated by API key.
func NewAeroAPIProvider(apiKey, baseURL string) *AeroAPIProvider {
	if baseURL == "" {
		baseURL = aeroAPIBaseURL
	}
	return &AeroAPIProvider{
		client: newAPIClient("aeroapi", baseURL, map[string]string{
			"x-apikey": apiKey,
		}, aeroAPIHTTPTimeout),
	}
}

func (a *AeroAPIProvider) Name() string  { return "aeroapi" }
func (a *AeroAPIProvider) Priority() int { return 1 }

func (a *AeroAPIProvider) CanHandle(flightNumber, date string) bool {
	return withinWindow(date, aeroAPIWindowDays)
}

func (a *AeroAPIProvider) Status() Status { return a.client.status() }

// GetFlightData fetches all legs flown under the ident in a one-day range
// and normalizes the leg scheduled on the requested date.
func (a *AeroAPIProvider) GetFlightData(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, error) {
	day, err := flight.ParseDate(date)
	if err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidRequest, Message: err.Error(), Err: err}
	}

	params := url.Values{
		"start": {day.Format("2006-01-02")},
		"end":   {day.AddDate(0, 0, 1).Format("2006-01-02")},
	}
	body, err := a.client.getJSON(ctx, "/flights/"+url.PathEscape(flightNumber), params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var envelope struct {
		Flights []json.RawMessage `json:"flights"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: KindInvalidData, Message: "decoding response", Err: err}
	}
	if len(envelope.Flights) == 0 {
		return nil, nil
	}

	for _, raw := range envelope.Flights {
		var leg aeroLeg
		if err := json.Unmarshal(raw, &leg); err != nil {
			return nil, &Error{Provider: a.Name(), Kind: KindInvalidData, Message: "decoding flight leg", Err: err}
		}
		if !leg.matchesDate(date) {
			continue
		}
		nf, err := leg.normalize(flightNumber, date, raw)
		if err != nil {
			return nil, &Error{Provider: a.Name(), Kind: KindInvalidData, Message: err.Error(), Err: err}
		}
		return nf, nil
	}
	return nil, nil
}

// ── AeroAPI JSON types ──

type aeroAirport struct {
	CodeIATA *string `json:"code_iata"`
	Name     *string `json:"name"`
	City     *string `json:"city"`
}

func (a *aeroAirport) iata() string {
	if a == nil || a.CodeIATA == nil {
		return ""
	}
	return *a.CodeIATA
}

func (a *aeroAirport) name() string {
	if a == nil || a.Name == nil {
		return ""
	}
	return *a.Name
}

func (a *aeroAirport) city() string {
	if a == nil || a.City == nil {
		return ""
	}
	return *a.City
}

type aeroLeg struct {
	Ident         string       `json:"ident"`
	IdentIATA     *string      `json:"ident_iata"`
	FAFlightID    string       `json:"fa_flight_id"`
	Operator      *string      `json:"operator"`
	OperatorIATA  *string      `json:"operator_iata"`
	Origin        *aeroAirport `json:"origin"`
	Destination   *aeroAirport `json:"destination"`
	ScheduledOut  *time.Time   `json:"scheduled_out"`
	ActualOut     *time.Time   `json:"actual_out"`
	ScheduledIn   *time.Time   `json:"scheduled_in"`
	ActualIn      *time.Time   `json:"actual_in"`
	Status        string       `json:"status"`
	Cancelled     bool         `json:"cancelled"`
	Diverted      bool         `json:"diverted"`
	AircraftType  *string      `json:"aircraft_type"`
	Registration  *string      `json:"registration"`
	FlightType    string       `json:"type"`
	RouteDistance *float64     `json:"route_distance"` // statute miles
}

// matchesDate compares the leg's scheduled departure against the requested
// calendar day in the origin airport's timezone, since a late-evening local
// departure west of UTC already falls on the next UTC day.
func (l *aeroLeg) matchesDate(date string) bool {
	if l.ScheduledOut == nil {
		return false
	}
	if ap, ok := airdata.LookupAirport(l.Origin.iata()); ok {
		if loc, err := time.LoadLocation(ap.Timezone); err == nil {
			return l.ScheduledOut.In(loc).Format("2006-01-02") == date
		}
	}
	// Unknown origin: accept any UTC instant within a day of the requested
	// date rather than dropping a real leg over a timezone offset.
	day, err := flight.ParseDate(date)
	if err != nil {
		return false
	}
	diff := l.ScheduledOut.UTC().Sub(day)
	return diff >= -24*time.Hour && diff < 48*time.Hour
}

func (l *aeroLeg) normalize(flightNumber, date string, raw json.RawMessage) (*flight.NormalizedFlight, error) {
	nf := &flight.NormalizedFlight{
		FlightNumber: strings.ToUpper(flightNumber),
		FlightDate:   date,
		Departure:    BuildAirport(l.Origin.iata(), l.Origin.name(), l.Origin.city()),
		Arrival:      BuildAirport(l.Destination.iata(), l.Destination.name(), l.Destination.city()),
		Provider: flight.ProviderMeta{
			Name:        "aeroapi",
			RawPayload:  raw,
			ProviderID:  l.FAFlightID,
			Confidence:  aeroAPIConfidence,
			RetrievedAt: time.Now().UTC(),
		},
	}

	operatorIATA := ""
	if l.OperatorIATA != nil {
		operatorIATA = *l.OperatorIATA
	}
	operatorName := ""
	if l.Operator != nil {
		operatorName = *l.Operator
	}
	nf.Airline = BuildAirline(operatorIATA, operatorName)

	if l.ScheduledOut != nil {
		nf.ScheduledDeparture = l.ScheduledOut.UTC()
	}
	if l.ActualOut != nil {
		nf.ActualDeparture = l.ActualOut.UTC()
	}
	if l.ScheduledIn != nil {
		nf.ScheduledArrival = l.ScheduledIn.UTC()
	}
	if l.ActualIn != nil {
		nf.ActualArrival = l.ActualIn.UTC()
	}

	switch {
	case l.Cancelled:
		nf.Status = flight.StatusCancelled
	case l.Diverted:
		nf.Status = flight.StatusDiverted
	default:
		nf.Status = MapStatus(l.Status)
	}

	aircraftType := ""
	if l.AircraftType != nil {
		aircraftType = *l.AircraftType
		nf.Aircraft = &flight.AircraftInfo{Model: aircraftType}
		if l.Registration != nil {
			nf.Aircraft.Registration = *l.Registration
		}
	}
	nf.Type = InferFlightType(aircraftType, l.FlightType)

	nf.DelayMinutes = DelayMinutes(nf.ScheduledArrival, nf.ActualArrival)

	provided := 0.0
	if l.RouteDistance != nil {
		provided = *l.RouteDistance * 1.60934 // statute miles → km
	}
	nf.DistanceKM = DistanceKM(provided, nf.Departure.IATA, nf.Arrival.IATA)

	return nf, nil
}
