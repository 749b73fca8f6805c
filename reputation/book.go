/*
Package reputation books the airline's reputation on the ledger.

PURPOSE:
  Accepting a contract earns its reputation reward. When the contract ends,
  by expiry, by force-detach, or because its aircraft left the hangar, the
  net reputation it earned is reversed.

EXAMPLE FLOW:
  1. Accept c-1 (reward 15):  TxGrant    +15  key reputation:grant:c-1
  2. Accept c-2 (reward 10):  TxGrant    +10  key reputation:grant:c-2
  3. c-1 expires:             TxReversal -15  key reputation:revoke:c-1
  Score: 10

IDEMPOTENCY:
  Both operations use per-contract idempotency keys, so repeating them
  (a reloaded save, a cascade that touches the same contract twice) does
  nothing.

SEE ALSO:
  - generic/ledger.go: Underlying append-only log
  - schedule/settlement.go: Calls Lose on expiry and asset removal
*/
package reputation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

type Book struct {
	ledger generic.Ledger
}

func NewBook(store generic.Store) *Book {
	return &Book{ledger: generic.NewLedger(store)}
}

// Gain grants the contract's reputation reward.
func (b *Book) Gain(ctx context.Context, contractID airline.ContractID, points int64, at generic.Tick) error {
	if points == 0 {
		return nil
	}
	return b.append(ctx, generic.Transaction{
		EntityID:       generic.EntityID(contractID),
		EffectiveAt:    at,
		Delta:          generic.NewAmountFromInt(points, generic.UnitPoints),
		Type:           generic.TxGrant,
		Reason:         "contract accepted",
		IdempotencyKey: "reputation:grant:" + string(contractID),
	})
}

// Lose reverses whatever reputation the contract still holds.
func (b *Book) Lose(ctx context.Context, contractID airline.ContractID, at generic.Tick) error {
	held, err := b.ContractScore(ctx, contractID)
	if err != nil {
		return err
	}
	if !held.IsPositive() {
		return nil
	}
	return b.append(ctx, generic.Transaction{
		EntityID:       generic.EntityID(contractID),
		EffectiveAt:    at,
		Delta:          held.Neg(),
		Type:           generic.TxReversal,
		Reason:         "contract ended",
		IdempotencyKey: "reputation:revoke:" + string(contractID),
	})
}

func (b *Book) append(ctx context.Context, tx generic.Transaction) error {
	tx.ID = generic.TransactionID(uuid.NewString())
	tx.ResourceType = airline.ResourceReputation
	tx.ReferenceID = string(tx.EntityID)

	err := b.ledger.Append(ctx, tx)
	if errors.Is(err, generic.ErrDuplicateIdempotencyKey) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reputation %s: %w", tx.Type, err)
	}
	return nil
}

// ContractScore is the net reputation a contract currently contributes.
func (b *Book) ContractScore(ctx context.Context, contractID airline.ContractID) (generic.Amount, error) {
	txs, err := b.ledger.Transactions(ctx, airline.ResourceReputation, generic.EntityID(contractID))
	if err != nil {
		return generic.Amount{}, err
	}
	return generic.Summarize(txs, generic.UnitPoints).Net, nil
}

// Score is the airline's reputation at a tick.
func (b *Book) Score(ctx context.Context, at generic.Tick) (generic.Amount, error) {
	return b.ledger.BalanceAt(ctx, airline.ResourceReputation, "", at, generic.UnitPoints)
}

// History returns every reputation transaction in order.
func (b *Book) History(ctx context.Context) ([]generic.Transaction, error) {
	return b.ledger.Transactions(ctx, airline.ResourceReputation, "")
}
