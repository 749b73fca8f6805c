// Package contracts holds the contract board: every contract offered to the
// airline, and the status each one is in.
//
// Contracts move offered → accepted → expired and never go back. Pricing
// and generation of new offers happen elsewhere; the board only stores
// them.
package contracts

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

type Board struct {
	mu        sync.RWMutex
	state     generic.StateStore
	contracts []airline.Contract
}

func NewBoard(state generic.StateStore) *Board {
	return &Board{state: state}
}

// Load restores the board from the state store.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var list []airline.Contract
	if _, err := b.state.Get(ctx, generic.KeyContracts, &list); err != nil {
		return fmt.Errorf("load contracts: %w", err)
	}
	b.contracts = list
	return nil
}

// Add offers a contract. Re-adding an id replaces an offer that was not
// accepted yet.
func (b *Board) Add(ctx context.Context, c airline.Contract) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c.Status = airline.ContractOffered
	if i := b.indexLocked(c.ID); i >= 0 {
		if b.contracts[i].Status != airline.ContractOffered {
			return fmt.Errorf("%w: %s", generic.ErrContractAlreadyAccepted, c.ID)
		}
		b.contracts[i] = c
	} else {
		b.contracts = append(b.contracts, c)
	}
	return b.persistLocked(ctx)
}

func (b *Board) Contract(id airline.ContractID) (airline.Contract, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i := b.indexLocked(id)
	if i < 0 {
		return airline.Contract{}, false
	}
	return b.contracts[i], true
}

// List returns every contract, optionally filtered by status.
func (b *Board) List(status airline.ContractStatus) []airline.Contract {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []airline.Contract
	for _, c := range b.contracts {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// Available lists the offers the player can still take.
func (b *Board) Available() []airline.Contract { return b.List(airline.ContractOffered) }

// MarkAccepted moves an offered contract to accepted at the given tick.
func (b *Board) MarkAccepted(ctx context.Context, id airline.ContractID, at generic.Tick) (airline.Contract, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexLocked(id)
	if i < 0 {
		return airline.Contract{}, fmt.Errorf("%w: %s", generic.ErrContractNotFound, id)
	}
	switch b.contracts[i].Status {
	case airline.ContractAccepted:
		return airline.Contract{}, fmt.Errorf("%w: %s", generic.ErrContractAlreadyAccepted, id)
	case airline.ContractExpired:
		return airline.Contract{}, fmt.Errorf("%w: %s", generic.ErrContractExpired, id)
	}

	b.contracts[i].Status = airline.ContractAccepted
	b.contracts[i].AcceptedAt = at
	if err := b.persistLocked(ctx); err != nil {
		return airline.Contract{}, err
	}
	return b.contracts[i], nil
}

// Unaccept returns a contract to offered. Used to roll back an acceptance
// that failed after MarkAccepted.
func (b *Board) Unaccept(ctx context.Context, id airline.ContractID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", generic.ErrContractNotFound, id)
	}
	b.contracts[i].Status = airline.ContractOffered
	b.contracts[i].AcceptedAt = 0
	return b.persistLocked(ctx)
}

// MarkExpired closes a contract. Expiring twice is a no-op.
func (b *Board) MarkExpired(ctx context.Context, id airline.ContractID, at generic.Tick) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", generic.ErrContractNotFound, id)
	}
	if b.contracts[i].Status == airline.ContractExpired {
		return nil
	}
	b.contracts[i].Status = airline.ContractExpired
	b.contracts[i].ExpiredAt = at
	return b.persistLocked(ctx)
}

func (b *Board) indexLocked(id airline.ContractID) int {
	for i, c := range b.contracts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) persistLocked(ctx context.Context) error {
	if err := b.state.Put(ctx, generic.KeyContracts, b.contracts); err != nil {
		return fmt.Errorf("save contracts: %w", err)
	}
	return nil
}
