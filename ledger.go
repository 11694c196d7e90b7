package kasir

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"time"

	"github.com/etnz/kasir/date"
)

// Ledger represents the list of finalized transactions.
//
// In a Ledger transactions are always in chronological order, and they are
// never modified nor removed.
type Ledger struct {
	transactions []Transaction
	ids          map[string]struct{}
	currency     string
}

// NewLedger creates an empty ledger whose totals are expressed in currency.
func NewLedger(currency string) *Ledger {
	return &Ledger{
		transactions: make([]Transaction, 0),
		ids:          make(map[string]struct{}),
		currency:     currency,
	}
}

// Append appends transactions to this ledger and maintains the chronological
// order of transactions. Nothing is appended if one transaction is invalid or
// its id already exists.
func (l *Ledger) Append(txs ...Transaction) error {
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("invalid transaction %q: %w", tx.ID, err)
		}
		_, exists := l.ids[tx.ID]
		if _, dup := seen[tx.ID]; exists || dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTransaction, tx.ID)
		}
		seen[tx.ID] = struct{}{}
	}
	for _, tx := range txs {
		l.transactions = append(l.transactions, tx.clone())
		l.ids[tx.ID] = struct{}{}
	}
	l.stableSort()
	return nil
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		transactions: make([]Transaction, len(l.transactions)),
		ids:          make(map[string]struct{}, len(l.ids)),
		currency:     l.currency,
	}
	for i, tx := range l.transactions {
		c.transactions[i] = tx.clone()
		c.ids[tx.ID] = struct{}{}
	}
	return c
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions at the same instant maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Has reports whether id is already used.
func (l *Ledger) Has(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Get returns a copy of transaction id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	for _, tx := range l.transactions {
		if tx.ID == id {
			return tx.clone(), true
		}
	}
	return Transaction{}, false
}

// Transactions returns an iterator that yields copies of the transactions
// accepted by every filter, in chronological order.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			accept := true
			for _, filter := range filters {
				if !filter(tx) {
					accept = false
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, tx.clone()) {
				return
			}
		}
	}
}

// All returns copies of all transactions in chronological order.
func (l *Ledger) All() []Transaction {
	res := make([]Transaction, 0, len(l.transactions))
	for _, tx := range l.Transactions() {
		res = append(res, tx)
	}
	return res
}

// Recent returns copies of all transactions, newest first.
func (l *Ledger) Recent() []Transaction {
	res := l.All()
	slices.Reverse(res)
	return res
}

// InRange accepts transactions whose day in loc is within r.
func InRange(r date.Range, loc *time.Location) func(Transaction) bool {
	return func(tx Transaction) bool { return r.Contains(date.Of(tx.Date.In(loc))) }
}

// TotalRevenue sums the final totals of all transactions.
func (l *Ledger) TotalRevenue() Money {
	total := M(0, l.currency)
	for _, tx := range l.transactions {
		total = total.Add(tx.FinalTotal)
	}
	return total
}

// DailyTotals sums final totals per calendar day in loc, for every day of r.
func (l *Ledger) DailyTotals(loc *time.Location, r date.Range) map[date.Date]Money {
	res := make(map[date.Date]Money)
	for d := range r.Days() {
		res[d] = M(0, l.currency)
	}
	for _, tx := range l.Transactions(InRange(r, loc)) {
		d := date.Of(tx.Date.In(loc))
		res[d] = res[d].Add(tx.FinalTotal)
	}
	return res
}

// MaxProductID returns the highest product id sold in any transaction.
func (l *Ledger) MaxProductID() int {
	highest := 0
	for _, tx := range l.transactions {
		for _, it := range tx.Items {
			highest = max(highest, it.ID)
		}
	}
	return highest
}

// Currency returns the currency of the ledger totals.
func (l *Ledger) Currency() string { return l.currency }
