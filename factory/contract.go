/*
Package factory provides JSON to Go contract conversion.

PURPOSE:
  Converts JSON contract and option definitions into airline.Contract and
  airline.ContractOption values. Contracts come from the API, demo
  scenarios and fixture files, all in the same shape.

JSON SCHEMA:
  {
    "id": "jfk-bos-evening",
    "hub": "JFK",
    "destination": "BOS",
    "departure": "MON 18:40",
    "duration_weeks": 4,
    "demand": {"economy": 150, "business": 20},
    "reputation": 5
  }

  {
    "asset_id": "N100AA",
    "passengers": {"economy": 120, "business": 20},
    "costs": {"fuel": "3000", "crew": "1200"},
    "revenue": {"economy": "9000", "business": "4000"},
    "utilization": 88,
    "flight_minutes": 75,
    "boarding_minutes": 40,
    "turnaround_minutes": 45
  }

TIMES:
  "departure" is a weekday and a 24h clock. An option's total time is
  boarding + outbound + turnaround + return.

USAGE:
  f := NewContractFactory()
  contract, err := f.ParseContract(jsonString)
  option, err := f.ParseOption(optionJSON)
  engine.Accept(ctx, contract.ID, option)

SEE ALSO:
  - airline/types.go: Contract and ContractOption
  - api/scenarios.go: Demo seeds built from presets
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ContractJSON is the JSON representation of a contract offer.
type ContractJSON struct {
	ID            string             `json:"id,omitempty"`
	Hub           string             `json:"hub"`
	Destination   string             `json:"destination"`
	Departure     string             `json:"departure"` // "MON 18:40"
	DurationWeeks int                `json:"duration_weeks,omitempty"`
	DurationDays  int                `json:"duration_days,omitempty"`
	Demand        airline.Passengers `json:"demand"`
	Reputation    int64              `json:"reputation,omitempty"`
}

// OptionJSON is the JSON representation of a priced option.
type OptionJSON struct {
	AssetID           string                   `json:"asset_id"`
	Passengers        airline.Passengers       `json:"passengers"`
	Costs             airline.CostBreakdown    `json:"costs"`
	Revenue           airline.RevenueBreakdown `json:"revenue"`
	Utilization       int                      `json:"utilization"`
	FlightMinutes     int64                    `json:"flight_minutes"`
	BoardingMinutes   int64                    `json:"boarding_minutes"`
	TurnaroundMinutes int64                    `json:"turnaround_minutes"`
}

// =============================================================================
// CONTRACT FACTORY
// =============================================================================

// ContractFactory converts JSON contracts to Go structs.
type ContractFactory struct{}

func NewContractFactory() *ContractFactory {
	return &ContractFactory{}
}

// ParseContract parses a JSON string into an offered contract.
func (f *ContractFactory) ParseContract(jsonStr string) (airline.Contract, error) {
	var cj ContractJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return airline.Contract{}, fmt.Errorf("failed to parse contract JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON converts ContractJSON to an offered airline.Contract. A missing
// id is generated; a missing duration defaults to four weeks.
func (f *ContractFactory) FromJSON(cj ContractJSON) (airline.Contract, error) {
	if cj.Hub == "" || cj.Destination == "" {
		return airline.Contract{}, fmt.Errorf("%w: hub and destination are required", generic.ErrInvalidWindow)
	}
	departure, err := ParseClock(cj.Departure)
	if err != nil {
		return airline.Contract{}, err
	}

	id := cj.ID
	if id == "" {
		id = "c-" + uuid.NewString()
	}

	duration := generic.Tick(cj.DurationWeeks)*generic.Week + generic.Tick(cj.DurationDays)*generic.Day
	if duration == 0 {
		duration = generic.Month
	}
	if duration < 0 {
		return airline.Contract{}, fmt.Errorf("%w: negative contract duration", generic.ErrInvalidWindow)
	}

	return airline.Contract{
		ID:            airline.ContractID(id),
		Hub:           airline.AirportCode(strings.ToUpper(cj.Hub)),
		Destination:   airline.AirportCode(strings.ToUpper(cj.Destination)),
		DepartureTime: departure,
		Duration:      duration,
		Demand:        cj.Demand,
		Reputation:    cj.Reputation,
		Status:        airline.ContractOffered,
	}, nil
}

// ToJSON converts a contract back to its JSON form.
func (f *ContractFactory) ToJSON(c airline.Contract) ContractJSON {
	cj := ContractJSON{
		ID:          string(c.ID),
		Hub:         string(c.Hub),
		Destination: string(c.Destination),
		Departure:   c.DepartureTime.Clock(),
		Demand:      c.Demand,
		Reputation:  c.Reputation,
	}
	if c.Duration%generic.Week == 0 {
		cj.DurationWeeks = int(c.Duration / generic.Week)
	} else {
		cj.DurationDays = int(c.Duration / generic.Day)
	}
	return cj
}

// ParseOption parses a JSON string into a contract option.
func (f *ContractFactory) ParseOption(jsonStr string) (airline.ContractOption, error) {
	var oj OptionJSON
	if err := json.Unmarshal([]byte(jsonStr), &oj); err != nil {
		return airline.ContractOption{}, fmt.Errorf("failed to parse option JSON: %w", err)
	}
	return f.OptionFromJSON(oj)
}

// OptionFromJSON converts OptionJSON to airline.ContractOption.
func (f *ContractFactory) OptionFromJSON(oj OptionJSON) (airline.ContractOption, error) {
	if oj.AssetID == "" {
		return airline.ContractOption{}, fmt.Errorf("%w: asset_id is required", generic.ErrInvalidWindow)
	}
	if oj.FlightMinutes <= 0 || oj.BoardingMinutes < 0 || oj.TurnaroundMinutes < 0 {
		return airline.ContractOption{}, fmt.Errorf("%w: flight times must be positive", generic.ErrInvalidWindow)
	}

	flight := generic.Tick(oj.FlightMinutes) * generic.Minute
	boarding := generic.Tick(oj.BoardingMinutes) * generic.Minute
	turnaround := generic.Tick(oj.TurnaroundMinutes) * generic.Minute

	return airline.ContractOption{
		AssetID:      airline.AssetID(oj.AssetID),
		Passengers:   oj.Passengers,
		Costs:        oj.Costs,
		Revenue:      oj.Revenue,
		Utilization:  oj.Utilization,
		FlightTime:   flight,
		BoardingTime: boarding,
		TotalTime:    boarding + flight + turnaround + flight,
	}, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseClock reads "TUE 04:20" into a tick-of-week.
func ParseClock(s string) (generic.Tick, error) {
	day, hm, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return 0, fmt.Errorf("%w: departure %q must look like \"MON 18:40\"", generic.ErrInvalidWindow, s)
	}
	weekday, err := generic.ParseWeekday(day)
	if err != nil {
		return 0, err
	}

	hh, mm, ok := strings.Cut(strings.TrimSpace(hm), ":")
	if !ok {
		return 0, fmt.Errorf("%w: departure %q has no minutes", generic.ErrInvalidWindow, s)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: bad hour in %q", generic.ErrInvalidWindow, s)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", generic.ErrInvalidWindow, s)
	}

	return weekday.Start() + generic.Tick(hours)*generic.Hour + generic.Tick(minutes), nil
}
