/*
store.go - Persistence interfaces for transactions and game state

PURPOSE:
  Defines the boundary between the engine and the database. Two concerns
  live here:

KEY INTERFACES:
  Store:      Append-only transaction persistence (append, load, exists)
  StateStore: Keyed JSON snapshots of mutable game state (schedules,
              pending events, fleet, contracts), written through on every
              mutation

APPEND-ONLY CONTRACT:
  The Store interface enforces append-only semantics:
  - Append(): Single transaction write
  - AppendBatch(): Atomic multi-transaction write
  - NO Update() or Delete() methods exist

IDEMPOTENCY:
  Every settlement write carries an idempotency key. If the key already
  exists, the write is rejected. This is what makes a flight occurrence
  pay out at most once even if a save was restored mid-tick.

ATOMIC BATCHES:
  AppendBatch() ensures all-or-nothing semantics. A settled flight books
  revenue and cost together or not at all.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, durable
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - ledger.go: Higher-level interface using Store
  - schedule/repository.go: Main StateStore client
*/
package generic

import "context"

// =============================================================================
// STORE - Interface for transaction persistence (append-only)
// =============================================================================

// Store handles persistence of transactions.
// IMPORTANT: Store is APPEND-ONLY. No Update, No Delete. Ever.
// Corrections are made via reversal transactions.
type Store interface {
	// Append persists a transaction. Returns error if idempotency key exists.
	Append(ctx context.Context, tx Transaction) error

	// AppendBatch persists multiple transactions atomically.
	// Either all succeed or none do.
	AppendBatch(ctx context.Context, txs []Transaction) error

	// Load returns the transactions of a resource, ordered by EffectiveAt.
	// An empty entityID matches every entity.
	Load(ctx context.Context, resource ResourceType, entityID EntityID) ([]Transaction, error)

	// LoadRange returns transactions with EffectiveAt in [from, to].
	LoadRange(ctx context.Context, resource ResourceType, entityID EntityID, from, to Tick) ([]Transaction, error)

	// Exists checks if idempotency key already exists.
	Exists(ctx context.Context, idempotencyKey string) (bool, error)
}

// =============================================================================
// STATE STORE - Keyed snapshots of mutable state
// =============================================================================

// StateStore persists JSON-encodable values under string keys. Writes
// replace the previous value for the key.
type StateStore interface {
	// Put encodes value and stores it under key.
	Put(ctx context.Context, key string, value any) error

	// Get decodes the value under key into dest. It reports false, with a
	// nil error, when the key has never been written.
	Get(ctx context.Context, key string, dest any) (bool, error)
}

// Persistence keys shared by the engine and its collaborators.
const (
	KeyActiveSchedules  = "activeSchedules"
	KeyScheduleEvents   = "scheduleEvents"
	KeyLastRegistration = "lastScheduleEventsRegistration"
	KeyContracts        = "contracts"
	KeyHangar           = "hangar"
	KeyMissions         = "missions"
	KeyPlaytime         = "playtime"
	KeyLastWallclock    = "lastWallclock"
)
