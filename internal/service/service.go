package service

import (
	"context"
	"log"

	"github.com/danielsht/flightclaims/internal/airdata"
	"github.com/danielsht/flightclaims/internal/compensation"
	"github.com/danielsht/flightclaims/internal/flight"
	"github.com/danielsht/flightclaims/internal/provider"
)

// Resolver is the provider-chain lookup the service delegates cache misses to.
type Resolver interface {
	Resolve(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, []provider.Attempt)
}

// Storage is the durable persistence contract the service writes through.
type Storage interface {
	GetFlightByNumberAndDate(flightNumber, date string) (*flight.NormalizedFlight, error)
	EnsureAirline(a flight.Airline, country string) (string, error)
	EnsureAirport(a flight.Airport) (string, error)
	CreateFlight(f *flight.NormalizedFlight, airlineID, depID, arrID string) (string, error)
}

// Resolution is what the web layer consumes: the resolved flight plus its
// compensation analysis.
type Resolution struct {
	Flight       *flight.NormalizedFlight `json:"flight"`
	Compensation compensation.Analysis    `json:"compensation"`
}

// FlightData is the cache-first facade in front of the provider chain.
// Durable storage is consulted before any external provider.
type FlightData struct {
	store    Storage
	chain    Resolver
	compConf compensation.Config
}

// New creates the flight data service.
func New(store Storage, chain Resolver, compConf compensation.Config) *FlightData {
	return &FlightData{store: store, chain: chain, compConf: compConf}
}

// Lookup returns the flight for number+date, hitting durable storage first
// and the provider chain only on a miss. Confirmed results are persisted
// together with their referenced airline and airports. Returns nil when no
// data could be found; callers cannot distinguish "no such flight" from
// "all providers unreachable".
func (s *FlightData) Lookup(ctx context.Context, flightNumber, date string) (*flight.NormalizedFlight, error) {
	if _, err := flight.ParseDate(date); err != nil {
		return nil, err
	}

	stored, err := s.store.GetFlightByNumberAndDate(flightNumber, date)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		log.Printf("[service] %s %s served from storage", flightNumber, date)
		return stored, nil
	}

	resolved, attempts := s.chain.Resolve(ctx, flightNumber, date)
	if resolved == nil {
		log.Printf("[service] %s %s not found after %d provider attempts", flightNumber, date, len(attempts))
		return nil, nil
	}

	if !resolved.HasValidSchedule() {
		log.Printf("[service] warning: %s %s from %s has unparseable scheduled times, not persisting",
			flightNumber, date, resolved.Provider.Name)
		return resolved, nil
	}

	if err := s.persist(resolved); err != nil {
		// A persistence failure must not cost the caller the resolved data.
		log.Printf("[service] warning: persisting %s %s failed: %v", flightNumber, date, err)
	}
	return resolved, nil
}

func (s *FlightData) persist(f *flight.NormalizedFlight) error {
	country := ""
	if ref, ok := airdata.LookupAirline(f.Airline.IATA); ok {
		country = ref.Country
	}
	airlineID, err := s.store.EnsureAirline(f.Airline, country)
	if err != nil {
		return err
	}
	depID, err := s.store.EnsureAirport(f.Departure)
	if err != nil {
		return err
	}
	arrID, err := s.store.EnsureAirport(f.Arrival)
	if err != nil {
		return err
	}
	if _, err := s.store.CreateFlight(f, airlineID, depID, arrID); err != nil {
		return err
	}
	log.Printf("[service] persisted %s from %s (confidence %.2f)", f.Key(), f.Provider.Name, f.Provider.Confidence)
	return nil
}

// Resolve is the single call exposed to the web layer: flight facts plus the
// compensation analysis, or nil when no data was found.
func (s *FlightData) Resolve(ctx context.Context, flightNumber, date string) (*Resolution, error) {
	f, err := s.Lookup(ctx, flightNumber, date)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	return &Resolution{
		Flight:       f,
		Compensation: compensation.Calculate(f, s.compConf),
	}, nil
}
