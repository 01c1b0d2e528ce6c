package compensation

import (
	"github.com/shopspring/decimal"

	"github.com/danielsht/flightclaims/internal/airdata"
	"github.com/danielsht/flightclaims/internal/flight"
)

// Jurisdiction tags which regime produced a result.
type Jurisdiction string

const (
	JurisdictionEU     Jurisdiction = "EU261"
	JurisdictionIsrael Jurisdiction = "IsraelASL"
)

// Ineligibility reasons, stable strings callers can match on.
const (
	ReasonInsufficientDelay   = "insufficient delay"
	ReasonOutsideJurisdiction = "outside jurisdiction"
	ReasonUnknownDistance     = "flight distance unknown"
)

// Details carries the inputs behind a ruling for auditability.
type Details struct {
	DistanceKM   float64 `json:"distance_km"`
	DelayMinutes int     `json:"delay_minutes"`
	DistanceBand string  `json:"distance_band"`
	Regulation   string  `json:"regulation"`
}

// Result is one regime's eligibility ruling.
type Result struct {
	Eligible     bool            `json:"eligible"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Jurisdiction Jurisdiction    `json:"jurisdiction"`
	Reason       string          `json:"reason,omitempty"`
	Details      Details         `json:"details"`
}

// Analysis bundles both regime rulings and the arbitrated recommendation.
// Recommended is nil when neither regime applies.
type Analysis struct {
	EU          Result  `json:"eu"`
	Israel      Result  `json:"israel"`
	Recommended *Result `json:"recommended,omitempty"`
}

// Config holds the tunables the calculator must not hard-code.
type Config struct {
	// EURToNIS is the exchange rate used for arbitration between an
	// EU-denominated and an NIS-denominated award. A static rate is a
	// known staleness risk, which is why it lives in configuration.
	EURToNIS decimal.Decimal
}

// DefaultConfig returns the stock calculator configuration.
func DefaultConfig() Config {
	return Config{EURToNIS: decimal.NewFromFloat(3.8)}
}

// band describes one distance tier of a regime's compensation table.
type band struct {
	maxKM           float64 // 0 = unbounded
	amount          decimal.Decimal
	reductionCutoff int // minutes; delay below this halves the award
	label           string
}

// EU 261/2004 Article 7 amounts with Article 7(2) reduction cutoffs.
var euBands = []band{
	{maxKM: 1500, amount: decimal.NewFromInt(250), reductionCutoff: 120, label: "short-haul"},
	{maxKM: 3500, amount: decimal.NewFromInt(400), reductionCutoff: 180, label: "medium-haul"},
	{maxKM: 0, amount: decimal.NewFromInt(600), reductionCutoff: 240, label: "long-haul"},
}

// Israeli Aviation Services Law amounts with analogous reduction cutoffs.
var israelBands = []band{
	{maxKM: 2000, amount: decimal.NewFromInt(1490), reductionCutoff: 240, label: "short-haul"},
	{maxKM: 4500, amount: decimal.NewFromInt(2390), reductionCutoff: 300, label: "medium-haul"},
	{maxKM: 0, amount: decimal.NewFromInt(3580), reductionCutoff: 360, label: "long-haul"},
}

const (
	euMinDelayMinutes     = 180
	israelMinDelayMinutes = 480
)

// euCountries are the EU/EEA-equivalent states for EU261 purposes: the EU 27
// plus Iceland, Norway, Liechtenstein and Switzerland. ISO alpha-2 codes.
var euCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LV": true, "LT": true, "LU": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SK": true,
	"SI": true, "ES": true, "SE": true,
	"IS": true, "NO": true, "LI": true, "CH": true,
}

// Calculate evaluates both compensation regimes for a resolved flight and
// arbitrates between them. It is a pure function of its inputs.
func Calculate(f *flight.NormalizedFlight, cfg Config) Analysis {
	a := Analysis{
		EU:     evaluateEU(f),
		Israel: evaluateIsrael(f),
	}
	a.Recommended = arbitrate(a.EU, a.Israel, cfg)
	return a
}

func evaluateEU(f *flight.NormalizedFlight) Result {
	r := Result{
		Currency:     "EUR",
		Jurisdiction: JurisdictionEU,
		Details: Details{
			DistanceKM:   f.DistanceKM,
			DelayMinutes: f.DelayMinutes,
			Regulation:   "EU Regulation 261/2004",
		},
	}

	if !euCovers(f) {
		r.Reason = ReasonOutsideJurisdiction
		return r
	}
	if f.DelayMinutes < euMinDelayMinutes {
		r.Reason = ReasonInsufficientDelay
		return r
	}
	if f.DistanceKM <= 0 {
		r.Reason = ReasonUnknownDistance
		return r
	}

	b := bandFor(euBands, f.DistanceKM)
	r.Eligible = true
	r.Amount = applyReduction(b, f.DelayMinutes)
	r.Details.DistanceBand = b.label
	return r
}

// euCovers implements the EU261 scope rule: any departure from an EU/EEA
// state, or an arrival into one aboard an EU-registered carrier.
func euCovers(f *flight.NormalizedFlight) bool {
	if euCountries[f.Departure.Country] {
		return true
	}
	if !euCountries[f.Arrival.Country] {
		return false
	}
	if al, ok := airdata.LookupAirline(f.Airline.IATA); ok {
		return al.EUCarrier
	}
	return false
}

func evaluateIsrael(f *flight.NormalizedFlight) Result {
	r := Result{
		Currency:     "NIS",
		Jurisdiction: JurisdictionIsrael,
		Details: Details{
			DistanceKM:   f.DistanceKM,
			DelayMinutes: f.DelayMinutes,
			Regulation:   "Israeli Aviation Services Law 2012",
		},
	}

	if f.Departure.Country != "IL" && f.Arrival.Country != "IL" {
		r.Reason = ReasonOutsideJurisdiction
		return r
	}
	if f.DelayMinutes < israelMinDelayMinutes {
		r.Reason = ReasonInsufficientDelay
		return r
	}
	if f.DistanceKM <= 0 {
		r.Reason = ReasonUnknownDistance
		return r
	}

	b := bandFor(israelBands, f.DistanceKM)
	r.Eligible = true
	r.Amount = applyReduction(b, f.DelayMinutes)
	r.Details.DistanceBand = b.label
	return r
}

func bandFor(bands []band, distanceKM float64) band {
	for _, b := range bands {
		if b.maxKM > 0 && distanceKM <= b.maxKM {
			return b
		}
	}
	return bands[len(bands)-1]
}

// applyReduction halves the award, floored, when the final delay stayed
// under the band's reduction cutoff.
func applyReduction(b band, delayMinutes int) decimal.Decimal {
	if delayMinutes < b.reductionCutoff {
		return b.amount.Div(decimal.NewFromInt(2)).Floor()
	}
	return b.amount
}

// arbitrate picks the better-value eligible result, comparing both in NIS
// at the configured exchange rate. Nil when neither regime applies.
func arbitrate(eu, israel Result, cfg Config) *Result {
	switch {
	case !eu.Eligible && !israel.Eligible:
		return nil
	case eu.Eligible && !israel.Eligible:
		return &eu
	case israel.Eligible && !eu.Eligible:
		return &israel
	}

	euInNIS := eu.Amount.Mul(cfg.EURToNIS)
	if euInNIS.GreaterThanOrEqual(israel.Amount) {
		return &eu
	}
	return &israel
}
