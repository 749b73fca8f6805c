/*
Package generic provides the core primitives of the scheduling engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms: simulation
  time, weekly windows, the clock, and the append-only ledger that records
  every money and reputation change. The airline domain packages build on
  top of these.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., $1200, 15 points)
  - Transaction: An immutable ledger entry recording a balance change
  - Entity/Transaction IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified, only reversed
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Strong typing for IDs and resources
  4. Auditability: Every transaction has reason, reference, and idempotency key

USAGE:
  tx := generic.Transaction{
      EntityID:       "N123AB",
      ResourceType:   airline.ResourceCash,
      Delta:          generic.NewAmount(1250.50, generic.UnitCurrency),
      Type:           generic.TxRevenue,
      IdempotencyKey: "flight:sch-1:10080:revenue",
  }

SEE ALSO:
  - time.go: Tick and weekday arithmetic
  - window.go: Interval algebra on the weekly circle
  - ledger.go: Transaction persistence interface
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal `json:"value"`
	Unit  Unit            `json:"unit"`
}

type Unit string

const (
	UnitCurrency Unit = "usd"
	UnitPoints   Unit = "points"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(value), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount        { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Neg() Amount         { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool    { return a.Value.IsNegative() }
func (a Amount) IsZero() bool        { return a.Value.IsZero() }
func (a Amount) IsPositive() bool    { return a.Value.IsPositive() }
func (a Amount) String() string      { return a.Value.StringFixed(2) + " " + string(a.Unit) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EntityID is whatever a transaction is booked against: an asset for flight
// money, a contract for reputation.
type EntityID string
type TransactionID string

// ResourceType identifies what kind of balance is being tracked.
// Domain packages define the concrete types:
//
//	type AirlineResource string
//	func (r AirlineResource) ResourceID() string     { return string(r) }
//	func (r AirlineResource) ResourceDomain() string { return "airline" }
//	const ResourceCash AirlineResource = "cash"
type ResourceType interface {
	ResourceID() string
	ResourceDomain() string
}

// =============================================================================
// TRANSACTION - Atomic change to a balance
// =============================================================================

type TransactionType string

const (
	TxRevenue    TransactionType = "revenue"    // Money earned by a settled flight
	TxCost       TransactionType = "cost"       // Money spent by a settled flight
	TxGrant      TransactionType = "grant"      // Reputation granted at acceptance
	TxReversal   TransactionType = "reversal"   // Undo a previous grant
	TxAdjustment TransactionType = "adjustment" // Manual correction (starting cash, purchases)
)

type Transaction struct {
	ID             TransactionID     `json:"id"`
	EntityID       EntityID          `json:"entity_id"`
	ResourceType   ResourceType      `json:"-"`
	EffectiveAt    Tick              `json:"effective_at"`
	Delta          Amount            `json:"delta"`
	Type           TransactionType   `json:"type"`
	ReferenceID    string            `json:"reference_id,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Resource returns the resource id, or "" when unset.
func (tx Transaction) Resource() string {
	if tx.ResourceType == nil {
		return ""
	}
	return tx.ResourceType.ResourceID()
}
