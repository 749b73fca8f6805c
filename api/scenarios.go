/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built airlines that populate an empty save with a fleet,
	contract offers, accepted schedules and missions, so the tick loop has
	something to fly right away.

AVAILABLE SCENARIOS:
	starter-hub:     Three narrowbodies at JFK, shuttles to BOS/DCA/ORD
	wraparound-week: Flights that cross the Sunday to Monday boundary and
	                 a lease that ends mid-week

HOW SCENARIOS WORK:
 1. Reset the save (clear all data)
 2. Deposit starting capital
 3. Add assets to the hangar
 4. Offer contracts via the factory
 5. Accept some of them through the engine, exactly as a player would

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "starter-hub"}

NOTE:
	Scenarios reset the save. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Other endpoints
  - factory/presets.go: Contract and option presets
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/factory"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/missions"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "starter-hub",
		Name:        "Starter Hub",
		Description: "Three narrowbodies at JFK flying weekday shuttles",
	},
	{
		ID:          "wraparound-week",
		Name:        "Wraparound Week",
		Description: "Sunday night flights landing Monday and a lease ending mid-week",
	},
}

// Scenarios lists the demo seeds.
func Scenarios() []ScenarioDTO { return scenarios }

// LoadScenario wipes the save and seeds it with the named scenario.
func (g *Game) LoadScenario(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "starter-hub":
		load = g.loadStarterHub
	case "wraparound-week":
		load = g.loadWraparoundWeek
	default:
		return fmt.Errorf("unknown scenario %q", id)
	}

	if err := g.Reset(ctx); err != nil {
		return err
	}
	if err := load(ctx); err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}
	g.logger.Info().Str("scenario", id).Msg("scenario loaded")
	return nil
}

// =============================================================================
// HANDLERS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Game.LoadScenario(r.Context(), req.ScenarioID); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func (h *Handler) ResetGame(w http.ResponseWriter, r *http.Request) {
	if err := h.Game.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset game", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// LOADERS
// =============================================================================

func (g *Game) loadStarterHub(ctx context.Context) error {
	if err := g.seedCapital(ctx, "starter-hub", 250000); err != nil {
		return err
	}

	for _, id := range []airline.AssetID{"N101JF", "N102JF", "N103JF"} {
		if err := g.addNarrowbody(ctx, id, 0); err != nil {
			return err
		}
	}

	offers := []struct {
		id, destination, departure string
		asset                      airline.AssetID
		minutes                    int64
	}{
		{"jfk-bos-mon", "BOS", "MON 07:30", "N101JF", 75},
		{"jfk-dca-mon", "DCA", "MON 13:00", "N101JF", 80},
		{"jfk-ord-tue", "ORD", "TUE 09:15", "N102JF", 150},
		{"jfk-bos-fri", "BOS", "FRI 17:45", "N103JF", 75},
		{"jfk-mia-sat", "MIA", "SAT 10:00", "", 190},
	}
	for _, o := range offers {
		if err := g.offerAndAccept(ctx, o.id, "JFK", o.destination, o.departure, 4, o.asset, o.minutes); err != nil {
			return err
		}
	}

	return g.Missions.Add(ctx, missions.Mission{
		ID:          "boston-regular",
		Title:       "Fly 10 flights to Boston",
		Destination: "BOS",
		Target:      10,
		Reward:      decimal.NewFromInt(50000),
	})
}

func (g *Game) loadWraparoundWeek(ctx context.Context) error {
	if err := g.seedCapital(ctx, "wraparound-week", 150000); err != nil {
		return err
	}
	if err := g.addNarrowbody(ctx, "N201SF", 0); err != nil {
		return err
	}
	if err := g.addNarrowbody(ctx, "N202SF", 2); err != nil {
		return err
	}

	offers := []struct {
		id, destination, departure string
		asset                      airline.AssetID
		minutes                    int64
	}{
		// Leaves Sunday night, back Monday morning.
		{"sfo-hnl-sun", "HNL", "SUN 21:30", "N201SF", 330},
		// Departs Friday evening; the window runs into Saturday.
		{"sfo-jfk-fri", "JFK", "FRI 22:00", "N201SF", 320},
		// Flown by the leased aircraft until its lease ends.
		{"sfo-sea-wed", "SEA", "WED 08:00", "N202SF", 120},
	}
	for _, o := range offers {
		if err := g.offerAndAccept(ctx, o.id, "SFO", o.destination, o.departure, 3, o.asset, o.minutes); err != nil {
			return err
		}
	}

	return g.Missions.Add(ctx, missions.Mission{
		ID:     "red-eye",
		Title:  "Complete 5 flights out of SFO",
		Hub:    "SFO",
		Target: 5,
		Reward: decimal.NewFromInt(20000),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (g *Game) seedCapital(ctx context.Context, scenario string, amount int64) error {
	return g.Ledger.Deposit(ctx, "airline", decimal.NewFromInt(amount), g.Clock.Now(),
		"starting capital", "capital:"+scenario)
}

// addNarrowbody buys an A320, or leases it for leaseWeeks when positive.
func (g *Game) addNarrowbody(ctx context.Context, id airline.AssetID, leaseWeeks int) error {
	now := g.Clock.Now()
	a := airline.Asset{
		ID:         id,
		Model:      "A320neo",
		Seats:      airline.Passengers{Economy: 150, Business: 24},
		Ownership:  airline.Owned,
		AcquiredAt: now,
	}
	if leaseWeeks > 0 {
		a.Ownership = airline.Leased
		a.LeaseExpiresAt = now + generic.Tick(leaseWeeks)*generic.Week
	}
	return g.Fleet.Add(ctx, a)
}

// offerAndAccept offers a shuttle contract and, when asset is set, accepts
// it with a narrowbody option.
func (g *Game) offerAndAccept(ctx context.Context, id, hub, destination, departure string, weeks int, asset airline.AssetID, minutes int64) error {
	f := factory.NewContractFactory()
	c, err := f.ParseContract(factory.ShuttleContractJSON(id, hub, destination, departure, weeks))
	if err != nil {
		return err
	}
	if err := g.Contracts.Add(ctx, c); err != nil {
		return err
	}
	if asset == "" {
		return nil
	}

	opt, err := f.OptionFromJSON(factory.NarrowbodyOption(asset, minutes))
	if err != nil {
		return err
	}
	_, err = g.Engine.Accept(ctx, c.ID, opt)
	return err
}
