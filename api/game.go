/*
game.go - Wiring of one airline save

PURPOSE:
  Builds every component of the engine over a single sqlite store and
  keeps them together: clock, contract board, hangar, cash ledger,
  reputation, missions and the schedule engine. The HTTP handlers, the
  tick driver and the CLI all work through a Game.

LIFECYCLE:
  game := NewGame(store, metrics, logger)
  game.Load(ctx)         // restore playtime and every component
  game.Advance(ctx, n)   // run n ticks, persist playtime
  game.Reset(ctx)        // wipe the save (scenarios)

SEE ALSO:
  - driver.go: Wall-clock tick loop
  - scenarios.go: Demo seeds
*/
package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/contracts"
	"github.com/warp/airline-engine/events"
	"github.com/warp/airline-engine/fleet"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/missions"
	"github.com/warp/airline-engine/reputation"
	"github.com/warp/airline-engine/schedule"
	"github.com/warp/airline-engine/store/sqlite"
	"github.com/warp/airline-engine/telemetry"
)

// Game is one airline save and everything that acts on it.
type Game struct {
	Store      *sqlite.Store
	Clock      *generic.Clock
	Bus        *events.Bus
	Metrics    *telemetry.Metrics
	Contracts  *contracts.Board
	Fleet      *fleet.Hangar
	Ledger     *airline.FlightLedger
	Reputation *reputation.Book
	Missions   *missions.Tracker
	Engine     *schedule.Engine

	logger zerolog.Logger

	// advanceMu keeps Advance callers (driver, API, CLI) from interleaving.
	advanceMu sync.Mutex
}

// NewGame wires a game over store. The engine is subscribed to the clock.
func NewGame(store *sqlite.Store, metrics *telemetry.Metrics, logger zerolog.Logger) *Game {
	g := &Game{
		Store:   store,
		Clock:   generic.NewClock(0),
		Bus:     events.NewBus(),
		Metrics: metrics,
		logger:  logger,
	}
	g.Contracts = contracts.NewBoard(store)
	g.Fleet = fleet.NewHangar(store)
	g.Ledger = airline.NewFlightLedger(store)
	g.Reputation = reputation.NewBook(store)
	g.Missions = missions.NewTracker(store, g.Ledger, g.Bus, logger)
	g.Engine = schedule.NewEngine(schedule.Deps{
		Clock:      g.Clock,
		State:      store,
		Contracts:  g.Contracts,
		Fleet:      g.Fleet,
		Ledger:     g.Ledger,
		Reputation: g.Reputation,
		Missions:   g.Missions,
		Bus:        g.Bus,
		Metrics:    metrics,
		Logger:     logger,
	})
	g.Engine.Attach(g.Clock)
	return g
}

// Load restores playtime and every component from the store.
func (g *Game) Load(ctx context.Context) error {
	var playtime generic.Tick
	if _, err := g.Store.Get(ctx, generic.KeyPlaytime, &playtime); err != nil {
		return fmt.Errorf("load playtime: %w", err)
	}
	g.Clock.Set(playtime)

	loaders := []func(context.Context) error{
		g.Contracts.Load,
		g.Fleet.Load,
		g.Missions.Load,
		g.Engine.Load,
	}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return err
		}
	}

	g.logger.Info().
		Str("playtime", playtime.String()).
		Int("contracts", len(g.Contracts.List(""))).
		Int("assets", len(g.Fleet.All())).
		Msg("game loaded")
	return nil
}

// Advance runs n ticks and persists the resulting playtime. Tick errors are
// returned after playtime is saved.
func (g *Game) Advance(ctx context.Context, n generic.Tick) (generic.Tick, error) {
	g.advanceMu.Lock()
	defer g.advanceMu.Unlock()

	now, tickErr := g.Clock.AdvanceBy(ctx, n)
	if err := g.Store.Put(ctx, generic.KeyPlaytime, now); err != nil {
		return now, fmt.Errorf("save playtime: %w", err)
	}
	g.Bus.Publish(events.EventClockTick, events.Payload{"tick": int64(now)})
	return now, tickErr
}

// Reset wipes the save and reloads every component empty.
func (g *Game) Reset(ctx context.Context) error {
	g.advanceMu.Lock()
	defer g.advanceMu.Unlock()

	if err := g.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return g.Load(ctx)
}
