package factory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/airline-engine/airline"
)

// =============================================================================
// PRESETS
// =============================================================================
// Ready-made JSON used by the demo scenarios and tests.

// ShuttleContractJSON is a short-haul contract out of hub.
func ShuttleContractJSON(id, hub, destination, departure string, weeks int) string {
	return fmt.Sprintf(`{
		"id": %q,
		"hub": %q,
		"destination": %q,
		"departure": %q,
		"duration_weeks": %d,
		"demand": {"economy": 150, "business": 20},
		"reputation": 5
	}`, id, hub, destination, departure, weeks)
}

// NarrowbodyOption prices a single-aisle aircraft flying a route of
// flightMinutes each way.
func NarrowbodyOption(assetID airline.AssetID, flightMinutes int64) OptionJSON {
	return OptionJSON{
		AssetID:    string(assetID),
		Passengers: airline.Passengers{Economy: 120, Business: 20},
		Costs: airline.CostBreakdown{
			Fuel:    decimal.NewFromInt(40 * flightMinutes),
			Crew:    decimal.NewFromInt(1200),
			Airport: decimal.NewFromInt(650),
		},
		Revenue: airline.RevenueBreakdown{
			Economy:  decimal.NewFromInt(120 * flightMinutes),
			Business: decimal.NewFromInt(45 * flightMinutes),
		},
		Utilization:       88,
		FlightMinutes:     flightMinutes,
		BoardingMinutes:   40,
		TurnaroundMinutes: 45,
	}
}
