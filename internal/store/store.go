package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/danielsht/flightclaims/internal/flight"
)

// Store is the durable flight/airport/airline persistence layer backed by
// SQLite. It is the read/write contract the flight data service consumes.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: creating data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS airlines (
			id TEXT PRIMARY KEY,
			iata TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			country TEXT
		);

		CREATE TABLE IF NOT EXISTS airports (
			id TEXT PRIMARY KEY,
			iata TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			city TEXT,
			country TEXT,
			timezone TEXT
		);

		CREATE TABLE IF NOT EXISTS flights (
			id TEXT PRIMARY KEY,
			flight_number TEXT NOT NULL,
			flight_date TEXT NOT NULL,
			airline_id TEXT NOT NULL,
			departure_airport_id TEXT NOT NULL,
			arrival_airport_id TEXT NOT NULL,
			scheduled_departure DATETIME NOT NULL,
			actual_departure DATETIME,
			scheduled_arrival DATETIME NOT NULL,
			actual_arrival DATETIME,
			status TEXT NOT NULL,
			flight_type TEXT NOT NULL,
			delay_minutes INTEGER NOT NULL DEFAULT 0,
			distance_km REAL NOT NULL DEFAULT 0,
			aircraft_model TEXT,
			aircraft_registration TEXT,
			provider TEXT NOT NULL,
			provider_id TEXT,
			confidence REAL NOT NULL,
			retrieved_at DATETIME,
			raw_payload TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (airline_id) REFERENCES airlines(id),
			FOREIGN KEY (departure_airport_id) REFERENCES airports(id),
			FOREIGN KEY (arrival_airport_id) REFERENCES airports(id)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_flights_number_date
			ON flights(flight_number, flight_date);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: applying schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetAirlineByIATA returns the stored airline row id, or "" when unseen.
func (s *Store) GetAirlineByIATA(iata string) (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM airlines WHERE iata = ?`, iata).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: querying airline %s: %w", iata, err)
	}
	return id, nil
}

// CreateAirline inserts an airline and returns its generated id.
func (s *Store) CreateAirline(a flight.Airline, country string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO airlines (id, iata, name, country) VALUES (?, ?, ?, ?)
	`, id, a.IATA, a.Name, country)
	if err != nil {
		return "", fmt.Errorf("store: creating airline %s: %w", a.IATA, err)
	}
	return id, nil
}

// GetAirportByIATA returns the stored airport row id, or "" when unseen.
func (s *Store) GetAirportByIATA(iata string) (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM airports WHERE iata = ?`, iata).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: querying airport %s: %w", iata, err)
	}
	return id, nil
}

// CreateAirport inserts an airport and returns its generated id.
func (s *Store) CreateAirport(a flight.Airport) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO airports (id, iata, name, city, country, timezone)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, a.IATA, a.Name, a.City, a.Country, a.Timezone)
	if err != nil {
		return "", fmt.Errorf("store: creating airport %s: %w", a.IATA, err)
	}
	return id, nil
}

// CreateFlight persists a normalized flight. Referenced airline and airports
// must already exist; use EnsureAirline/EnsureAirport first.
func (s *Store) CreateFlight(f *flight.NormalizedFlight, airlineID, depID, arrID string) (string, error) {
	id := uuid.NewString()

	var actualDep, actualArr interface{}
	if !f.ActualDeparture.IsZero() {
		actualDep = f.ActualDeparture.UTC()
	}
	if !f.ActualArrival.IsZero() {
		actualArr = f.ActualArrival.UTC()
	}

	var model, registration string
	if f.Aircraft != nil {
		model = f.Aircraft.Model
		registration = f.Aircraft.Registration
	}

	var retrievedAt interface{}
	if !f.Provider.RetrievedAt.IsZero() {
		retrievedAt = f.Provider.RetrievedAt.UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO flights (
			id, flight_number, flight_date, airline_id,
			departure_airport_id, arrival_airport_id,
			scheduled_departure, actual_departure, scheduled_arrival, actual_arrival,
			status, flight_type, delay_minutes, distance_km,
			aircraft_model, aircraft_registration,
			provider, provider_id, confidence, retrieved_at, raw_payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, f.FlightNumber, f.FlightDate, airlineID,
		depID, arrID,
		f.ScheduledDeparture.UTC(), actualDep, f.ScheduledArrival.UTC(), actualArr,
		string(f.Status), string(f.Type), f.DelayMinutes, f.DistanceKM,
		model, registration,
		f.Provider.Name, f.Provider.ProviderID, f.Provider.Confidence, retrievedAt,
		string(f.Provider.RawPayload), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("store: creating flight %s: %w", f.Key(), err)
	}
	return id, nil
}

// EnsureAirline returns the airline's row id, creating the row when unseen.
func (s *Store) EnsureAirline(a flight.Airline, country string) (string, error) {
	if id, err := s.GetAirlineByIATA(a.IATA); err != nil || id != "" {
		return id, err
	}
	return s.CreateAirline(a, country)
}

// EnsureAirport returns the airport's row id, creating the row when unseen.
func (s *Store) EnsureAirport(a flight.Airport) (string, error) {
	if id, err := s.GetAirportByIATA(a.IATA); err != nil || id != "" {
		return id, err
	}
	return s.CreateAirport(a)
}

// GetFlightByNumberAndDate loads a persisted flight with its airline and
// airport relations resolved, or nil when not stored.
func (s *Store) GetFlightByNumberAndDate(flightNumber, date string) (*flight.NormalizedFlight, error) {
	row := s.db.QueryRow(`
		SELECT
			f.flight_number, f.flight_date,
			al.iata, al.name,
			dep.iata, dep.name, dep.city, dep.country, dep.timezone,
			arr.iata, arr.name, arr.city, arr.country, arr.timezone,
			f.scheduled_departure, f.actual_departure, f.scheduled_arrival, f.actual_arrival,
			f.status, f.flight_type, f.delay_minutes, f.distance_km,
			f.aircraft_model, f.aircraft_registration,
			f.provider, f.provider_id, f.confidence, f.retrieved_at, f.raw_payload
		FROM flights f
		JOIN airlines al ON al.id = f.airline_id
		JOIN airports dep ON dep.id = f.departure_airport_id
		JOIN airports arr ON arr.id = f.arrival_airport_id
		WHERE f.flight_number = ? AND f.flight_date = ?
	`, flightNumber, date)

	var f flight.NormalizedFlight
	var actualDep, actualArr, retrievedAt sql.NullTime
	var model, registration, providerID, rawPayload sql.NullString
	var status, ftype string

	err := row.Scan(
		&f.FlightNumber, &f.FlightDate,
		&f.Airline.IATA, &f.Airline.Name,
		&f.Departure.IATA, &f.Departure.Name, &f.Departure.City, &f.Departure.Country, &f.Departure.Timezone,
		&f.Arrival.IATA, &f.Arrival.Name, &f.Arrival.City, &f.Arrival.Country, &f.Arrival.Timezone,
		&f.ScheduledDeparture, &actualDep, &f.ScheduledArrival, &actualArr,
		&status, &ftype, &f.DelayMinutes, &f.DistanceKM,
		&model, &registration,
		&f.Provider.Name, &providerID, &f.Provider.Confidence, &retrievedAt, &rawPayload,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading flight %s %s: %w", flightNumber, date, err)
	}

	f.ScheduledDeparture = f.ScheduledDeparture.UTC()
	f.ScheduledArrival = f.ScheduledArrival.UTC()
	if actualDep.Valid {
		f.ActualDeparture = actualDep.Time.UTC()
	}
	if actualArr.Valid {
		f.ActualArrival = actualArr.Time.UTC()
	}
	f.Status = flight.Status(status)
	f.Type = flight.Type(ftype)
	if (model.Valid && model.String != "") || (registration.Valid && registration.String != "") {
		f.Aircraft = &flight.AircraftInfo{Model: model.String, Registration: registration.String}
	}
	if providerID.Valid {
		f.Provider.ProviderID = providerID.String
	}
	if retrievedAt.Valid {
		f.Provider.RetrievedAt = retrievedAt.Time.UTC()
	}
	if rawPayload.Valid && rawPayload.String != "" {
		f.Provider.RawPayload = []byte(rawPayload.String)
	}
	return &f, nil
}
