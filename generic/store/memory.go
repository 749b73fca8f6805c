// Package store provides in-memory Store and StateStore implementations.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/warp/airline-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps transactions ordered by EffectiveAt and game state as encoded
// JSON, so callers get the same copy semantics as the SQLite store.
type Memory struct {
	mu           sync.RWMutex
	transactions []generic.Transaction
	idempotency  map[string]bool
	state        map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		idempotency: make(map[string]bool),
		state:       make(map[string][]byte),
	}
}

// Append adds a single transaction. Append-only.
func (m *Memory) Append(_ context.Context, tx generic.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.IdempotencyKey != "" && m.idempotency[tx.IdempotencyKey] {
		return generic.ErrDuplicateIdempotencyKey
	}
	m.appendLocked(tx)
	return nil
}

// AppendBatch adds multiple transactions atomically.
func (m *Memory) AppendBatch(_ context.Context, txs []generic.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.IdempotencyKey == "" {
			continue
		}
		if m.idempotency[tx.IdempotencyKey] || seen[tx.IdempotencyKey] {
			return generic.ErrDuplicateIdempotencyKey
		}
		seen[tx.IdempotencyKey] = true
	}

	for _, tx := range txs {
		m.appendLocked(tx)
	}
	return nil
}

func (m *Memory) appendLocked(tx generic.Transaction) {
	// Binary search keeps the slice ordered; equal ticks keep insertion order.
	i := sort.Search(len(m.transactions), func(i int) bool {
		return m.transactions[i].EffectiveAt > tx.EffectiveAt
	})
	m.transactions = append(m.transactions, generic.Transaction{})
	copy(m.transactions[i+1:], m.transactions[i:])
	m.transactions[i] = tx

	if tx.IdempotencyKey != "" {
		m.idempotency[tx.IdempotencyKey] = true
	}
}

func (m *Memory) Load(_ context.Context, resource generic.ResourceType, entityID generic.EntityID) ([]generic.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterLocked(resource, entityID, func(generic.Tick) bool { return true }), nil
}

func (m *Memory) LoadRange(_ context.Context, resource generic.ResourceType, entityID generic.EntityID, from, to generic.Tick) ([]generic.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterLocked(resource, entityID, func(at generic.Tick) bool {
		return from <= at && at <= to
	}), nil
}

func (m *Memory) filterLocked(resource generic.ResourceType, entityID generic.EntityID, inRange func(generic.Tick) bool) []generic.Transaction {
	var result []generic.Transaction
	for _, tx := range m.transactions {
		if resource != nil && tx.Resource() != resource.ResourceID() {
			continue
		}
		if entityID != "" && tx.EntityID != entityID {
			continue
		}
		if inRange(tx.EffectiveAt) {
			result = append(result, tx)
		}
	}
	return result
}

func (m *Memory) Exists(_ context.Context, idempotencyKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idempotency[idempotencyKey], nil
}

// =============================================================================
// STATE
// =============================================================================

func (m *Memory) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[key] = data
	return nil
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	data, ok := m.state[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}
