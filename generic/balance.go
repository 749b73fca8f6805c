/*
balance.go - Statements derived from transactions

PURPOSE:
  Folds a slice of transactions into the numbers a player looks at:
  money in, money out, net, and a per-type breakdown. Nothing here is
  stored; a statement is recomputed from the ledger on demand.

SEE ALSO:
  - ledger.go: Source of the transactions
  - airline/ledger.go: Per-asset and airline-wide statements
*/
package generic

// Statement summarizes transactions of one unit.
type Statement struct {
	Credits Amount                     `json:"credits"`
	Debits  Amount                     `json:"debits"`
	Net     Amount                     `json:"net"`
	ByType  map[TransactionType]Amount `json:"by_type"`
	Count   int                        `json:"count"`
	First   Tick                       `json:"first"`
	Last    Tick                       `json:"last"`
}

// Summarize builds a statement. Positive deltas count as credits, negative
// deltas as debits (reported as a positive magnitude).
func Summarize(txs []Transaction, unit Unit) Statement {
	zero := NewAmountFromInt(0, unit)
	s := Statement{
		Credits: zero,
		Debits:  zero,
		Net:     zero,
		ByType:  make(map[TransactionType]Amount),
	}
	for i, tx := range txs {
		if i == 0 || tx.EffectiveAt < s.First {
			s.First = tx.EffectiveAt
		}
		if tx.EffectiveAt > s.Last {
			s.Last = tx.EffectiveAt
		}
		if tx.Delta.IsNegative() {
			s.Debits = s.Debits.Add(tx.Delta.Neg())
		} else {
			s.Credits = s.Credits.Add(tx.Delta)
		}
		s.Net = s.Net.Add(tx.Delta)
		prev, ok := s.ByType[tx.Type]
		if !ok {
			prev = zero
		}
		s.ByType[tx.Type] = prev.Add(tx.Delta)
		s.Count++
	}
	return s
}
