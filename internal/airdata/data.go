package airdata

import (
	"encoding/json"
	"log"
	"strings"

	_ "embed"
)

//go:embed assets/airports.json
var airportsJSON []byte

//go:embed assets/airlines.json
var airlinesJSON []byte

// AirportEntry is a reference record for an airport, keyed by IATA code.
type AirportEntry struct {
	IATA     string  `json:"iata"`
	Name     string  `json:"name"`
	City     string  `json:"city"`
	Country  string  `json:"country"` // ISO 3166-1 alpha-2
	Timezone string  `json:"timezone"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// AirlineEntry is a reference record for a carrier, keyed by IATA code.
type AirlineEntry struct {
	IATA      string `json:"iata"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	EUCarrier bool   `json:"eu_carrier"` // registered in an EU/EEA member state
}

// airportByIATA maps uppercase IATA code → AirportEntry.
var airportByIATA map[string]AirportEntry

// airlineByIATA maps uppercase IATA code → AirlineEntry.
var airlineByIATA map[string]AirlineEntry

func init() {
	var airports struct {
		Airports []AirportEntry `json:"airports"`
	}
	if err := json.Unmarshal(airportsJSON, &airports); err != nil {
		log.Printf("[airdata] warning: could not parse airports.json: %v", err)
	}
	airportByIATA = make(map[string]AirportEntry, len(airports.Airports))
	for _, a := range airports.Airports {
		if a.IATA != "" {
			airportByIATA[strings.ToUpper(a.IATA)] = a
		}
	}

	var airlines struct {
		Airlines []AirlineEntry `json:"airlines"`
	}
	if err := json.Unmarshal(airlinesJSON, &airlines); err != nil {
		log.Printf("[airdata] warning: could not parse airlines.json: %v", err)
	}
	airlineByIATA = make(map[string]AirlineEntry, len(airlines.Airlines))
	for _, a := range airlines.Airlines {
		if a.IATA != "" {
			airlineByIATA[strings.ToUpper(a.IATA)] = a
		}
	}

	log.Printf("[airdata] loaded %d airports, %d airlines from dataset",
		len(airportByIATA), len(airlineByIATA))
}

// LookupAirport returns the reference entry for an IATA code (case-insensitive).
func LookupAirport(iata string) (AirportEntry, bool) {
	a, ok := airportByIATA[strings.ToUpper(iata)]
	return a, ok
}

// LookupAirline returns the reference entry for a carrier IATA code (case-insensitive).
func LookupAirline(iata string) (AirlineEntry, bool) {
	a, ok := airlineByIATA[strings.ToUpper(iata)]
	return a, ok
}
