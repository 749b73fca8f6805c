/*
repository.go - Active schedules

PURPOSE:
  Holds every accepted contract's schedule and answers the questions the
  rest of the game asks about them: is this plane free, what flies on
  Tuesday, how busy is this plane on Friday.

PERSISTENCE:
  Write-through. Every Add and Remove rewrites "activeSchedules" in the
  StateStore before returning.

HUB LOCK:
  Add notifies the fleet so the asset is locked to the contract's hub.
  Clearing the hub is the engine's job, because only it knows when the
  last schedule of an asset is gone.

CONCURRENCY:
  Not safe for concurrent use. The Engine serializes access.

TRUST:
  Add does not re-check overlaps. Callers validate with IsPlaneAvailable
  first; the engine's Accept does.
*/
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

// HubLocker is the slice of the fleet the repository talks to.
type HubLocker interface {
	SetHub(ctx context.Context, id airline.AssetID, hub airline.AirportCode) error
}

type Repository struct {
	state     generic.StateStore
	hubs      HubLocker
	schedules []airline.Schedule
}

func NewRepository(state generic.StateStore, hubs HubLocker) *Repository {
	return &Repository{state: state, hubs: hubs}
}

// Load replaces the in-memory list with the persisted one.
func (r *Repository) Load(ctx context.Context) error {
	var list []airline.Schedule
	if _, err := r.state.Get(ctx, generic.KeyActiveSchedules, &list); err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}
	r.schedules = list
	return nil
}

// Add appends the schedule, persists, then locks the asset to hub. A failed
// hub lock takes the schedule back out.
func (r *Repository) Add(ctx context.Context, s airline.Schedule, hub airline.AirportCode) error {
	r.schedules = append(r.schedules, s)
	if err := r.persist(ctx); err != nil {
		r.schedules = r.schedules[:len(r.schedules)-1]
		return err
	}
	if r.hubs != nil && hub != "" {
		if err := r.hubs.SetHub(ctx, s.AssetID(), hub); err != nil {
			r.schedules = r.schedules[:len(r.schedules)-1]
			err = fmt.Errorf("lock hub for %s: %w", s.AssetID(), err)
			return errors.Join(err, r.persist(ctx))
		}
	}
	return nil
}

// Remove deletes the schedule of a contract and returns it.
func (r *Repository) Remove(ctx context.Context, contractID airline.ContractID) (airline.Schedule, error) {
	for i, s := range r.schedules {
		if s.ContractID != contractID {
			continue
		}
		r.schedules = append(r.schedules[:i:i], r.schedules[i+1:]...)
		return s, r.persist(ctx)
	}
	return airline.Schedule{}, fmt.Errorf("%w: contract %s", generic.ErrScheduleNotFound, contractID)
}

// =============================================================================
// QUERIES
// =============================================================================

func (r *Repository) All() []airline.Schedule {
	return append([]airline.Schedule(nil), r.schedules...)
}

func (r *Repository) Len() int { return len(r.schedules) }

// Get finds the schedule of a contract.
func (r *Repository) Get(contractID airline.ContractID) (airline.Schedule, bool) {
	for _, s := range r.schedules {
		if s.ContractID == contractID {
			return s, true
		}
	}
	return airline.Schedule{}, false
}

// GetByID finds a schedule by its own id.
func (r *Repository) GetByID(id airline.ScheduleID) (airline.Schedule, bool) {
	for _, s := range r.schedules {
		if s.ID == id {
			return s, true
		}
	}
	return airline.Schedule{}, false
}

func (r *Repository) ForAsset(assetID airline.AssetID) []airline.Schedule {
	var out []airline.Schedule
	for _, s := range r.schedules {
		if s.AssetID() == assetID {
			out = append(out, s)
		}
	}
	return out
}

// ForDay returns the schedules with at least one tick on the day.
func (r *Repository) ForDay(day generic.Weekday) []airline.Schedule {
	var out []airline.Schedule
	for _, s := range r.schedules {
		if ActiveOnDay(s, day) {
			out = append(out, s)
		}
	}
	return out
}

// IsPlaneAvailable reports whether the window is free on the asset.
func (r *Repository) IsPlaneAvailable(assetID airline.AssetID, w generic.Window) bool {
	return CanAssign(w, r.ForAsset(assetID))
}

// Conflict returns the first schedule of the asset the window collides with.
func (r *Repository) Conflict(assetID airline.AssetID, w generic.Window) (airline.Schedule, bool) {
	return firstConflict(w, r.ForAsset(assetID))
}

// UseTimeForAsset is the number of ticks the asset is busy on the day.
func (r *Repository) UseTimeForAsset(assetID airline.AssetID, day generic.Weekday) generic.Tick {
	return UseTime(r.ForAsset(assetID), day)
}

// Utilization is the share of the week, in percent, the asset is scheduled.
func (r *Repository) Utilization(assetID airline.AssetID) int {
	var busy generic.Tick
	for _, s := range r.ForAsset(assetID) {
		busy += s.Window().Length()
	}
	return int(busy * 100 / generic.Week)
}

func (r *Repository) persist(ctx context.Context) error {
	if err := r.state.Put(ctx, generic.KeyActiveSchedules, r.schedules); err != nil {
		return fmt.Errorf("save schedules: %w", err)
	}
	return nil
}
