/*
ledger.go - Flight settlement on top of the generic ledger

PURPOSE:
  Turns a fired flight into money. Each occurrence books one revenue and
  one cost transaction against the asset that flew it.

INVARIANT:
  A flight occurrence (schedule id + execution time) settles at most once.

  The engine already removes an event from the queue and persists the
  queue before it calls SettleFlight. The idempotency keys below are the
  second line: if a save is restored from before that write, replaying the
  event hits ErrDuplicateIdempotencyKey and nothing is paid twice.

KEYS:
  flight:<schedule>:<executionTime>:revenue
  flight:<schedule>:<executionTime>:cost

STATISTICS:
  Per-asset flight counts and statements are derived from the same
  transactions, so they can never disagree with the money.

SEE ALSO:
  - generic/ledger.go: Base ledger interface
  - schedule/settlement.go: Caller
*/
package airline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/airline-engine/generic"
)

// FlightLedger books settled flights and answers money questions.
type FlightLedger struct {
	inner generic.Ledger
}

func NewFlightLedger(store generic.Store) *FlightLedger {
	return &FlightLedger{inner: generic.NewLedger(store)}
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// SettleFlight books revenue and cost for one occurrence atomically.
// Returns an error wrapping ErrAlreadySettled if the occurrence was booked
// before.
func (l *FlightLedger) SettleFlight(ctx context.Context, f Flight) error {
	key := f.Event().SettlementKey()
	opt := f.Schedule.Option

	meta := map[string]string{
		"contract":    string(f.Contract.ID),
		"route":       f.Contract.Route(),
		"passengers":  strconv.Itoa(opt.Passengers.Total()),
		"utilization": strconv.Itoa(opt.Utilization),
	}

	txs := []generic.Transaction{
		l.flightTx(f, opt.Revenue.Total(), generic.TxRevenue, key+":revenue", meta),
		l.flightTx(f, opt.Costs.Total().Neg(), generic.TxCost, key+":cost", meta),
	}

	err := l.inner.AppendBatch(ctx, txs)
	if errors.Is(err, generic.ErrDuplicateIdempotencyKey) {
		return fmt.Errorf("%w: %s", generic.ErrAlreadySettled, key)
	}
	return err
}

func (l *FlightLedger) flightTx(f Flight, delta decimal.Decimal, typ generic.TransactionType, key string, meta map[string]string) generic.Transaction {
	return generic.Transaction{
		ID:             generic.TransactionID(uuid.NewString()),
		EntityID:       generic.EntityID(f.Schedule.AssetID()),
		ResourceType:   ResourceCash,
		EffectiveAt:    f.ExecutionTime,
		Delta:          generic.NewAmountFromDecimal(delta, generic.UnitCurrency),
		Type:           typ,
		ReferenceID:    string(f.Schedule.ID),
		Reason:         fmt.Sprintf("flight %s at %s", f.Contract.Route(), f.ExecutionTime),
		IdempotencyKey: key,
		Metadata:       meta,
	}
}

// Deposit books money that did not come from a flight (starting capital,
// asset sales). The key makes repeated deposits of the same thing no-ops.
func (l *FlightLedger) Deposit(ctx context.Context, entity generic.EntityID, amount decimal.Decimal, at generic.Tick, reason, key string) error {
	err := l.inner.Append(ctx, generic.Transaction{
		ID:             generic.TransactionID(uuid.NewString()),
		EntityID:       entity,
		ResourceType:   ResourceCash,
		EffectiveAt:    at,
		Delta:          generic.NewAmountFromDecimal(amount, generic.UnitCurrency),
		Type:           generic.TxAdjustment,
		Reason:         reason,
		IdempotencyKey: key,
	})
	if errors.Is(err, generic.ErrDuplicateIdempotencyKey) {
		return nil
	}
	return err
}

// =============================================================================
// QUERIES
// =============================================================================

// Transactions returns the cash transactions of one asset, or of the whole
// airline when assetID is empty.
func (l *FlightLedger) Transactions(ctx context.Context, assetID AssetID) ([]generic.Transaction, error) {
	return l.inner.Transactions(ctx, ResourceCash, generic.EntityID(assetID))
}

// TransactionsBetween is Transactions limited to ticks in [from, to].
func (l *FlightLedger) TransactionsBetween(ctx context.Context, assetID AssetID, from, to generic.Tick) ([]generic.Transaction, error) {
	return l.inner.TransactionsInRange(ctx, ResourceCash, generic.EntityID(assetID), from, to)
}

// Statement summarizes cash for one asset, or the airline when assetID is empty.
func (l *FlightLedger) Statement(ctx context.Context, assetID AssetID) (generic.Statement, error) {
	txs, err := l.Transactions(ctx, assetID)
	if err != nil {
		return generic.Statement{}, err
	}
	return generic.Summarize(txs, generic.UnitCurrency), nil
}

// Cash is the airline balance at a tick.
func (l *FlightLedger) Cash(ctx context.Context, at generic.Tick) (generic.Amount, error) {
	return l.inner.BalanceAt(ctx, ResourceCash, "", at, generic.UnitCurrency)
}

// FlightCount is the number of settled occurrences flown by the asset.
func (l *FlightLedger) FlightCount(ctx context.Context, assetID AssetID) (int, error) {
	txs, err := l.Transactions(ctx, assetID)
	if err != nil {
		return 0, err
	}
	return CountFlights(txs), nil
}

// CountFlights counts the flights among txs. Each flight books exactly one
// revenue transaction.
func CountFlights(txs []generic.Transaction) int {
	n := 0
	for _, tx := range txs {
		if tx.Type == generic.TxRevenue {
			n++
		}
	}
	return n
}
