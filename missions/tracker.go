// Package missions tracks flight goals ("fly 10 flights to BOS") and pays
// their reward when they complete.
package missions

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/events"
	"github.com/warp/airline-engine/generic"
)

// Mission counts matching flights until Target is reached. Empty Hub or
// Destination match any airport.
type Mission struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Hub         airline.AirportCode `json:"hub,omitempty"`
	Destination airline.AirportCode `json:"destination,omitempty"`
	Target      int                 `json:"target"`
	Reward      decimal.Decimal     `json:"reward"`
	Progress    int                 `json:"progress"`
	Completed   bool                `json:"completed"`
	CompletedAt generic.Tick        `json:"completed_at,omitempty"`
}

func (m Mission) matches(c airline.Contract) bool {
	return (m.Hub == "" || m.Hub == c.Hub) &&
		(m.Destination == "" || m.Destination == c.Destination)
}

// Payer books mission rewards.
type Payer interface {
	Deposit(ctx context.Context, entity generic.EntityID, amount decimal.Decimal, at generic.Tick, reason, key string) error
}

type Tracker struct {
	mu       sync.Mutex
	state    generic.StateStore
	payer    Payer
	bus      *events.Bus
	logger   zerolog.Logger
	missions []Mission
}

func NewTracker(state generic.StateStore, payer Payer, bus *events.Bus, logger zerolog.Logger) *Tracker {
	return &Tracker{
		state:  state,
		payer:  payer,
		bus:    bus,
		logger: logger.With().Str("component", "missions").Logger(),
	}
}

func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var list []Mission
	if _, err := t.state.Get(ctx, generic.KeyMissions, &list); err != nil {
		return fmt.Errorf("load missions: %w", err)
	}
	t.missions = list
	return nil
}

// Add registers a mission. Re-adding an id keeps the existing progress.
func (t *Tracker) Add(ctx context.Context, m Mission) error {
	if m.Target <= 0 {
		return fmt.Errorf("mission %s: target must be positive", m.ID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, existing := range t.missions {
		if existing.ID == m.ID {
			return nil
		}
	}
	t.missions = append(t.missions, m)
	return t.persistLocked(ctx)
}

func (t *Tracker) List() []Mission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Mission(nil), t.missions...)
}

// NotifyFlight advances every open mission the flight matches. A failed
// reward payment is logged and returned, but does not stop the other
// missions from counting the flight.
func (t *Tracker) NotifyFlight(ctx context.Context, f airline.Flight) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	changed := false
	for i := range t.missions {
		m := &t.missions[i]
		if m.Completed || !m.matches(f.Contract) {
			continue
		}
		m.Progress++
		changed = true
		if m.Progress < m.Target {
			continue
		}

		m.Completed = true
		m.CompletedAt = f.ExecutionTime
		if t.payer != nil && m.Reward.IsPositive() {
			err := t.payer.Deposit(ctx, "missions", m.Reward, f.ExecutionTime, "mission "+m.Title, "mission:"+m.ID)
			if err != nil {
				t.logger.Error().Err(err).Str("mission", m.ID).Msg("mission reward payment failed")
				errs = append(errs, fmt.Errorf("pay mission %s: %w", m.ID, err))
			}
		}
		t.logger.Info().Str("mission", m.ID).Str("title", m.Title).Msg("mission completed")
		t.bus.Publish(events.EventMissionCompleted, events.Payload{
			"mission": m.ID,
			"title":   m.Title,
			"tick":    int64(f.ExecutionTime),
		})
	}
	if changed {
		errs = append(errs, t.persistLocked(ctx))
	}
	return errors.Join(errs...)
}

func (t *Tracker) persistLocked(ctx context.Context) error {
	if err := t.state.Put(ctx, generic.KeyMissions, t.missions); err != nil {
		return fmt.Errorf("save missions: %w", err)
	}
	return nil
}
