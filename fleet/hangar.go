/*
Package fleet keeps the hangar: every aircraft the airline owns or leases.

HUB LOCK:
  An asset flies out of one hub at a time. Accepting a schedule sets the
  hub; the engine clears it once the asset has no schedules left.

LEASES:
  Leased assets carry LeaseExpiresAt. The engine scans LeasedAssets every
  tick and removes the ones whose lease has ended.

PERSISTENCE:
  The whole hangar is written to the StateStore under "hangar" after every
  mutation.
*/
package fleet

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

type Hangar struct {
	mu     sync.RWMutex
	state  generic.StateStore
	assets []airline.Asset
}

func NewHangar(state generic.StateStore) *Hangar {
	return &Hangar{state: state}
}

// Load restores the hangar from the state store.
func (h *Hangar) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var assets []airline.Asset
	if _, err := h.state.Get(ctx, generic.KeyHangar, &assets); err != nil {
		return fmt.Errorf("load hangar: %w", err)
	}
	h.assets = assets
	return nil
}

// Add puts a new asset in the hangar.
func (h *Hangar) Add(ctx context.Context, a airline.Asset) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.indexLocked(a.ID) >= 0 {
		return fmt.Errorf("%w: %s", generic.ErrAssetExists, a.ID)
	}
	if a.Ownership == "" {
		a.Ownership = airline.Owned
	}
	h.assets = append(h.assets, a)
	return h.persistLocked(ctx)
}

func (h *Hangar) Asset(id airline.AssetID) (airline.Asset, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	i := h.indexLocked(id)
	if i < 0 {
		return airline.Asset{}, false
	}
	return h.assets[i], true
}

// All returns the assets in acquisition order.
func (h *Hangar) All() []airline.Asset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]airline.Asset(nil), h.assets...)
}

// LeasedAssets returns every leased asset, ended or not.
func (h *Hangar) LeasedAssets() []airline.Asset {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var leased []airline.Asset
	for _, a := range h.assets {
		if a.Ownership == airline.Leased {
			leased = append(leased, a)
		}
	}
	return leased
}

// SetHub locks the asset to an airport.
func (h *Hangar) SetHub(ctx context.Context, id airline.AssetID, hub airline.AirportCode) error {
	return h.update(ctx, id, func(a *airline.Asset) { a.Hub = hub })
}

// ClearHub releases the asset's hub.
func (h *Hangar) ClearHub(ctx context.Context, id airline.AssetID) error {
	return h.update(ctx, id, func(a *airline.Asset) { a.Hub = "" })
}

// Remove takes the asset out of the hangar and returns it.
func (h *Hangar) Remove(ctx context.Context, id airline.AssetID) (airline.Asset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.indexLocked(id)
	if i < 0 {
		return airline.Asset{}, fmt.Errorf("%w: %s", generic.ErrAssetNotFound, id)
	}
	removed := h.assets[i]
	h.assets = append(h.assets[:i], h.assets[i+1:]...)
	return removed, h.persistLocked(ctx)
}

func (h *Hangar) update(ctx context.Context, id airline.AssetID, fn func(*airline.Asset)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", generic.ErrAssetNotFound, id)
	}
	fn(&h.assets[i])
	return h.persistLocked(ctx)
}

func (h *Hangar) indexLocked(id airline.AssetID) int {
	for i, a := range h.assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (h *Hangar) persistLocked(ctx context.Context) error {
	if err := h.state.Put(ctx, generic.KeyHangar, h.assets); err != nil {
		return fmt.Errorf("save hangar: %w", err)
	}
	return nil
}
