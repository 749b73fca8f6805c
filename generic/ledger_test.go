package generic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/generic/store"
)

// =============================================================================
// TEST RESOURCE TYPE - For testing without domain dependencies
// =============================================================================

type testResource string

func (r testResource) ResourceID() string     { return string(r) }
func (r testResource) ResourceDomain() string { return "test" }

const testResourceType testResource = "test_resource"

func newLedger() generic.Ledger {
	return generic.NewLedger(store.NewMemory())
}

func moneyTx(entity string, at generic.Tick, value float64, key string) generic.Transaction {
	typ := generic.TxRevenue
	if value < 0 {
		typ = generic.TxCost
	}
	return generic.Transaction{
		ID:             generic.TransactionID(key),
		EntityID:       generic.EntityID(entity),
		ResourceType:   testResourceType,
		EffectiveAt:    at,
		Delta:          generic.NewAmount(value, generic.UnitCurrency),
		Type:           typ,
		IdempotencyKey: key,
	}
}

// =============================================================================
// LEDGER INVARIANTS
// =============================================================================

func TestLedger_DuplicateIdempotencyKeyRejected(t *testing.T) {
	// GIVEN: A transaction already appended
	ctx := context.Background()
	ledger := newLedger()
	if err := ledger.Append(ctx, moneyTx("N1", 10, 500, "flight:s1:10:revenue")); err != nil {
		t.Fatalf("first append: %v", err)
	}

	// WHEN: The same key is appended again
	err := ledger.Append(ctx, moneyTx("N1", 10, 500, "flight:s1:10:revenue"))

	// THEN: It is rejected and the balance is unchanged
	if !errors.Is(err, generic.ErrDuplicateIdempotencyKey) {
		t.Fatalf("expected ErrDuplicateIdempotencyKey, got %v", err)
	}
	bal, _ := ledger.BalanceAt(ctx, testResourceType, "N1", 100, generic.UnitCurrency)
	if !bal.Value.Equal(generic.MustParseDecimal("500")) {
		t.Errorf("balance = %s, want 500", bal.Value)
	}
}

func TestLedger_BatchIsAtomic(t *testing.T) {
	// GIVEN: One key already used
	ctx := context.Background()
	ledger := newLedger()
	ledger.Append(ctx, moneyTx("N1", 10, 100, "k2"))

	// WHEN: A batch reuses it next to a fresh key
	err := ledger.AppendBatch(ctx, []generic.Transaction{
		moneyTx("N1", 20, 300, "k1"),
		moneyTx("N1", 20, -50, "k2"),
	})

	// THEN: Nothing from the batch is written
	if !errors.Is(err, generic.ErrDuplicateIdempotencyKey) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	txs, _ := ledger.Transactions(ctx, testResourceType, "N1")
	if len(txs) != 1 {
		t.Errorf("expected only the earlier transaction, got %d", len(txs))
	}
}

func TestLedger_BalanceAtIgnoresFutureTransactions(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger()
	ledger.Append(ctx, moneyTx("N1", 30, 1000, "a"))
	ledger.Append(ctx, moneyTx("N1", 10, -200, "b"))
	ledger.Append(ctx, moneyTx("N2", 20, 700, "c"))

	bal, err := ledger.BalanceAt(ctx, testResourceType, "N1", 20, generic.UnitCurrency)
	if err != nil {
		t.Fatal(err)
	}
	if !bal.Value.Equal(generic.MustParseDecimal("-200")) {
		t.Errorf("N1 balance at 20 = %s, want -200", bal.Value)
	}

	all, _ := ledger.BalanceAt(ctx, testResourceType, "", 100, generic.UnitCurrency)
	if !all.Value.Equal(generic.MustParseDecimal("1500")) {
		t.Errorf("airline balance = %s, want 1500", all.Value)
	}
}

func TestSummarize(t *testing.T) {
	txs := []generic.Transaction{
		moneyTx("N1", 10, 1200, "r1"),
		moneyTx("N1", 10, -450.5, "c1"),
		moneyTx("N1", 20, 800, "r2"),
	}

	s := generic.Summarize(txs, generic.UnitCurrency)

	if !s.Credits.Value.Equal(generic.MustParseDecimal("2000")) {
		t.Errorf("credits = %s", s.Credits.Value)
	}
	if !s.Debits.Value.Equal(generic.MustParseDecimal("450.5")) {
		t.Errorf("debits = %s", s.Debits.Value)
	}
	if !s.Net.Value.Equal(generic.MustParseDecimal("1549.5")) {
		t.Errorf("net = %s", s.Net.Value)
	}
	if s.Count != 3 || s.First != 10 || s.Last != 20 {
		t.Errorf("unexpected counters: %+v", s)
	}
}
