/*
Package schedule is the flight scheduling engine.

PURPOSE:
  Turns accepted contracts into weekly flights. A schedule occupies a
  window on the weekly circle of one aircraft; once a day the engine
  materializes the occurrences that depart today; when an occurrence's
  window closes the flight is settled into the ledger; contracts that
  have run out and leases that have ended are cleaned up.

TICK ORDER:
  Every tick runs, in this order:
    1. Materialize  (at most once per simulated day)
    2. Settle every due event (earliest first)
    3. Expire the contracts of the schedules that just fired
    4. Remove leased assets whose lease has ended

EXACTLY ONCE:
  A due event is removed from the queue and the queue is persisted before
  the ledger is touched. The ledger's idempotency key is the backstop if a
  save from before that write is restored.

STALE EVENTS:
  An event whose schedule or contract is gone is dropped and logged.
  Nothing is settled for it.

CONCURRENCY:
  The tick driver and the HTTP API call in from different goroutines.
  Every exported method takes the engine mutex, so ticks and player
  actions never interleave.

SEE ALSO:
  - repository.go: Active schedules
  - materializer.go: Daily event registration
  - settlement.go: Firing, expiration and lease cascades
*/
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/events"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/telemetry"
)

// NoRegistration marks that materialization has never run.
const NoRegistration generic.Tick = -1

// =============================================================================
// COLLABORATORS
// =============================================================================

// ContractBook resolves and transitions contracts.
type ContractBook interface {
	Contract(id airline.ContractID) (airline.Contract, bool)
	MarkAccepted(ctx context.Context, id airline.ContractID, at generic.Tick) (airline.Contract, error)
	Unaccept(ctx context.Context, id airline.ContractID) error
	MarkExpired(ctx context.Context, id airline.ContractID, at generic.Tick) error
}

// Fleet is the hangar as seen by the engine.
type Fleet interface {
	HubLocker
	Asset(id airline.AssetID) (airline.Asset, bool)
	ClearHub(ctx context.Context, id airline.AssetID) error
	LeasedAssets() []airline.Asset
	Remove(ctx context.Context, id airline.AssetID) (airline.Asset, error)
}

// Settler pays out a fired flight. It must return an error wrapping
// generic.ErrAlreadySettled for an occurrence it has already paid.
type Settler interface {
	SettleFlight(ctx context.Context, f airline.Flight) error
}

// Reputation grants and revokes per-contract reputation.
type Reputation interface {
	Gain(ctx context.Context, contractID airline.ContractID, points int64, at generic.Tick) error
	Lose(ctx context.Context, contractID airline.ContractID, at generic.Tick) error
}

// MissionNotifier is told about every settled flight.
type MissionNotifier interface {
	NotifyFlight(ctx context.Context, f airline.Flight) error
}

// Deps wires an Engine. Missions, Bus and Metrics are optional.
type Deps struct {
	Clock      *generic.Clock
	State      generic.StateStore
	Contracts  ContractBook
	Fleet      Fleet
	Ledger     Settler
	Reputation Reputation
	Missions   MissionNotifier
	Bus        *events.Bus
	Metrics    *telemetry.Metrics
	Logger     zerolog.Logger
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	mu sync.Mutex

	clock      *generic.Clock
	state      generic.StateStore
	repo       *Repository
	queue      *Queue
	contracts  ContractBook
	fleet      Fleet
	ledger     Settler
	reputation Reputation
	missions   MissionNotifier
	bus        *events.Bus
	metrics    *telemetry.Metrics
	logger     zerolog.Logger

	lastRegistration generic.Tick
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		clock:            d.Clock,
		state:            d.State,
		repo:             NewRepository(d.State, d.Fleet),
		queue:            NewQueue(nil),
		contracts:        d.Contracts,
		fleet:            d.Fleet,
		ledger:           d.Ledger,
		reputation:       d.Reputation,
		missions:         d.Missions,
		bus:              d.Bus,
		metrics:          d.Metrics,
		logger:           d.Logger.With().Str("component", "schedule").Logger(),
		lastRegistration: NoRegistration,
	}
}

// Load restores schedules, pending events and the last registration tick.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.Load(ctx); err != nil {
		return err
	}

	var pending []airline.ScheduleEvent
	if _, err := e.state.Get(ctx, generic.KeyScheduleEvents, &pending); err != nil {
		return fmt.Errorf("load schedule events: %w", err)
	}
	e.queue = NewQueue(pending)

	last := NoRegistration
	if _, err := e.state.Get(ctx, generic.KeyLastRegistration, &last); err != nil {
		return fmt.Errorf("load last registration: %w", err)
	}
	e.lastRegistration = last

	e.logger.Info().
		Int("schedules", e.repo.Len()).
		Int("pending_events", e.queue.Len()).
		Int64("last_registration", int64(last)).
		Msg("schedule state loaded")
	e.updateGauges()
	return nil
}

// Attach subscribes the engine to the clock. The returned function detaches it.
func (e *Engine) Attach(clock *generic.Clock) (cancel func()) {
	return clock.Subscribe(func(ctx context.Context, now generic.Tick) error {
		_, err := e.Tick(ctx, now)
		return err
	})
}

// =============================================================================
// ACCEPTANCE
// =============================================================================

// Draft computes the window an option would occupy and whether the asset
// is free for it. Nothing is mutated.
func (e *Engine) Draft(contractID airline.ContractID, opt airline.ContractOption) (generic.Window, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.contracts.Contract(contractID)
	if !ok {
		return generic.Window{}, false, fmt.Errorf("%w: %s", generic.ErrContractNotFound, contractID)
	}
	w, err := DraftWindow(c, opt)
	if err != nil {
		return generic.Window{}, false, err
	}
	return w, e.repo.IsPlaneAvailable(opt.AssetID, w), nil
}

// Accept binds a contract to an asset with the chosen option.
func (e *Engine) Accept(ctx context.Context, contractID airline.ContractID, opt airline.ContractOption) (airline.Schedule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	log := e.logger.With().Str("contract", string(contractID)).Str("asset", string(opt.AssetID)).Logger()

	c, ok := e.contracts.Contract(contractID)
	if !ok {
		return airline.Schedule{}, fmt.Errorf("%w: %s", generic.ErrContractNotFound, contractID)
	}
	switch c.Status {
	case airline.ContractAccepted:
		return airline.Schedule{}, fmt.Errorf("%w: %s", generic.ErrContractAlreadyAccepted, contractID)
	case airline.ContractExpired:
		return airline.Schedule{}, fmt.Errorf("%w: %s", generic.ErrContractExpired, contractID)
	}

	asset, ok := e.fleet.Asset(opt.AssetID)
	if !ok {
		return airline.Schedule{}, fmt.Errorf("%w: %s", generic.ErrAssetNotFound, opt.AssetID)
	}
	if asset.Hub != "" && asset.Hub != c.Hub {
		return airline.Schedule{}, &generic.HubMismatchError{
			AssetID:  string(asset.ID),
			AssetHub: string(asset.Hub),
			Required: string(c.Hub),
		}
	}

	w, err := DraftWindow(c, opt)
	if err != nil {
		return airline.Schedule{}, err
	}
	if clash, busy := e.repo.Conflict(opt.AssetID, w); busy {
		log.Debug().Str("window", w.String()).Str("conflict", string(clash.ContractID)).Msg("acceptance rejected: overlap")
		return airline.Schedule{}, &generic.OverlapError{
			AssetID:     string(opt.AssetID),
			Candidate:   w,
			Conflicting: clash.Window(),
			ContractID:  string(clash.ContractID),
		}
	}

	c, err = e.contracts.MarkAccepted(ctx, contractID, now)
	if err != nil {
		return airline.Schedule{}, err
	}

	s := airline.Schedule{
		ID:         airline.ScheduleID(uuid.NewString()),
		ContractID: contractID,
		Start:      w.Start,
		End:        w.End,
		Option:     opt,
		AcceptedAt: now,
	}
	if err := e.repo.Add(ctx, s, c.Hub); err != nil {
		if rbErr := e.contracts.Unaccept(ctx, contractID); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to roll back contract acceptance")
		}
		return airline.Schedule{}, err
	}

	if err := e.reputation.Gain(ctx, contractID, c.Reputation, now); err != nil {
		log.Error().Err(err).Msg("failed to grant reputation")
	}

	if err := e.enqueueSameDay(ctx, s, now); err != nil {
		return s, err
	}

	log.Info().Str("schedule", string(s.ID)).Str("window", w.String()).Msg("contract accepted")
	e.bus.Publish(events.EventScheduleAccepted, events.Payload{
		"schedule": string(s.ID),
		"contract": string(contractID),
		"asset":    string(opt.AssetID),
		"start":    int64(s.Start),
		"end":      int64(s.End),
	})
	e.updateGauges()
	return s, nil
}

// enqueueSameDay registers today's occurrence of a schedule accepted after
// today's materialization already ran, if it has not departed yet.
func (e *Engine) enqueueSameDay(ctx context.Context, s airline.Schedule, now generic.Tick) error {
	if e.lastRegistration != now.DayStart() {
		return nil
	}
	w := s.Window()
	if !w.StartsWithin(now.Weekday().Span()) || w.Start < now.OfWeek() {
		return nil
	}
	if e.queue.Push(occurrence(s, now.WeekStart())) {
		return e.persistQueue(ctx)
	}
	return nil
}

// =============================================================================
// DETACH AND ASSET REMOVAL
// =============================================================================

// Detach force-removes a contract's schedule: pending occurrences are
// dropped, reputation is revoked, and the asset's hub is released if it
// has nothing else to fly.
func (e *Engine) Detach(ctx context.Context, contractID airline.ContractID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.repo.Get(contractID)
	if !ok {
		return fmt.Errorf("%w: contract %s", generic.ErrScheduleNotFound, contractID)
	}
	err := e.endSchedule(ctx, s, e.clock.Now(), "detached")
	e.updateGauges()
	return err
}

// RemoveAsset takes an asset out of service with everything it flies.
func (e *Engine) RemoveAsset(ctx context.Context, assetID airline.AssetID, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.fleet.Asset(assetID); !ok {
		return fmt.Errorf("%w: %s", generic.ErrAssetNotFound, assetID)
	}
	err := e.removeAsset(ctx, assetID, reason, e.clock.Now())
	e.updateGauges()
	return err
}

// =============================================================================
// READS
// =============================================================================

func (e *Engine) Schedules() []airline.Schedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.All()
}

func (e *Engine) Schedule(contractID airline.ContractID) (airline.Schedule, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Get(contractID)
}

func (e *Engine) SchedulesForDay(day generic.Weekday) []airline.Schedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.ForDay(day)
}

func (e *Engine) SchedulesForAsset(assetID airline.AssetID) []airline.Schedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.ForAsset(assetID)
}

// FlyingAt returns the schedule occupying the asset at now, if any.
func (e *Engine) FlyingAt(assetID airline.AssetID, now generic.Tick) (airline.Schedule, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.repo.ForAsset(assetID) {
		if s.Window().Contains(now) {
			return s, true
		}
	}
	return airline.Schedule{}, false
}

func (e *Engine) IsPlaneAvailable(assetID airline.AssetID, w generic.Window) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.IsPlaneAvailable(assetID, w)
}

// UseTime returns the asset's busy ticks for every day of the week.
func (e *Engine) UseTime(assetID airline.AssetID) map[generic.Weekday]generic.Tick {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[generic.Weekday]generic.Tick, len(generic.Weekdays))
	for _, day := range generic.Weekdays {
		out[day] = e.repo.UseTimeForAsset(assetID, day)
	}
	return out
}

func (e *Engine) Utilization(assetID airline.AssetID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Utilization(assetID)
}

// Status reports the contract's flight at the current playtime.
func (e *Engine) Status(contractID airline.ContractID) (FlightStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.repo.Get(contractID)
	if !ok {
		return FlightStatus{}, fmt.Errorf("%w: contract %s", generic.ErrScheduleNotFound, contractID)
	}
	return StatusAt(s, e.clock.Now()), nil
}

// Pending returns the queued occurrences in execution order.
func (e *Engine) Pending() []airline.ScheduleEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Events()
}

func (e *Engine) LastRegistration() generic.Tick {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRegistration
}

// =============================================================================
// HELPERS
// =============================================================================

func (e *Engine) persistQueue(ctx context.Context) error {
	if err := e.state.Put(ctx, generic.KeyScheduleEvents, e.queue.Events()); err != nil {
		return fmt.Errorf("save schedule events: %w", err)
	}
	return nil
}

func (e *Engine) updateGauges() {
	if e.metrics == nil {
		return
	}
	e.metrics.ActiveSchedules.Set(float64(e.repo.Len()))
	e.metrics.PendingEvents.Set(float64(e.queue.Len()))
}
