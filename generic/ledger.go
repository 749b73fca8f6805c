/*
ledger.go - Append-only transaction log

PURPOSE:
  The Ledger is the immutable source of truth for every money and
  reputation change. Balances are always computed by replaying
  transactions; there is no separate balance field to drift out of sync.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete.
  2. IMMUTABLE: Once written, transactions cannot be modified
  3. IDEMPOTENT: Same idempotency key = same transaction (no duplicates)

CORRECTIONS:
  Revoking reputation does not delete the grant. A reversal transaction
  with the opposite sign is appended and both remain in the log.

SEE ALSO:
  - store.go: Low-level persistence interface
  - airline/ledger.go: Flight settlement on top of the ledger
  - reputation/book.go: Grants and reversals per contract
*/
package generic

import "context"

// =============================================================================
// LEDGER - Append-only transaction log
// =============================================================================

// Ledger is the source of truth for all balance changes.
type Ledger interface {
	// Append adds a transaction. Fails with ErrDuplicateIdempotencyKey if the
	// key exists.
	Append(ctx context.Context, tx Transaction) error

	// AppendBatch adds multiple transactions atomically.
	AppendBatch(ctx context.Context, txs []Transaction) error

	// Transactions returns all transactions for resource+entity, chronologically.
	Transactions(ctx context.Context, resource ResourceType, entityID EntityID) ([]Transaction, error)

	// TransactionsInRange returns transactions in [from, to].
	TransactionsInRange(ctx context.Context, resource ResourceType, entityID EntityID, from, to Tick) ([]Transaction, error)

	// BalanceAt sums every transaction effective at or before at.
	BalanceAt(ctx context.Context, resource ResourceType, entityID EntityID, at Tick, unit Unit) (Amount, error)
}

// =============================================================================
// DEFAULT LEDGER - Implementation using Store
// =============================================================================

type DefaultLedger struct {
	Store Store
}

func NewLedger(store Store) *DefaultLedger {
	return &DefaultLedger{Store: store}
}

func (l *DefaultLedger) Append(ctx context.Context, tx Transaction) error {
	if tx.IdempotencyKey != "" {
		exists, err := l.Store.Exists(ctx, tx.IdempotencyKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateIdempotencyKey
		}
	}
	return l.Store.Append(ctx, tx)
}

func (l *DefaultLedger) AppendBatch(ctx context.Context, txs []Transaction) error {
	for _, tx := range txs {
		if tx.IdempotencyKey != "" {
			exists, err := l.Store.Exists(ctx, tx.IdempotencyKey)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateIdempotencyKey
			}
		}
	}
	return l.Store.AppendBatch(ctx, txs)
}

func (l *DefaultLedger) Transactions(ctx context.Context, resource ResourceType, entityID EntityID) ([]Transaction, error) {
	return l.Store.Load(ctx, resource, entityID)
}

func (l *DefaultLedger) TransactionsInRange(ctx context.Context, resource ResourceType, entityID EntityID, from, to Tick) ([]Transaction, error) {
	return l.Store.LoadRange(ctx, resource, entityID, from, to)
}

func (l *DefaultLedger) BalanceAt(ctx context.Context, resource ResourceType, entityID EntityID, at Tick, unit Unit) (Amount, error) {
	txs, err := l.Store.Load(ctx, resource, entityID)
	if err != nil {
		return Amount{}, err
	}

	balance := NewAmountFromInt(0, unit)
	for _, tx := range txs {
		if tx.EffectiveAt > at {
			break
		}
		balance = balance.Add(tx.Delta)
	}
	return balance, nil
}
