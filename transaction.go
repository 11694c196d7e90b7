package kasir

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionPrefix starts every generated transaction id.
const TransactionPrefix = "INV-"

// NewTransactionID returns a unique, time ordered transaction id.
func NewTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		id = uuid.New()
	}
	return TransactionPrefix + strings.ToUpper(id.String())
}

// Transaction is a finalized sale. It is immutable once in the Ledger.
type Transaction struct {
	ID         string
	Date       time.Time
	RawTotal   Money
	Tax        Money
	Discount   Money
	FinalTotal Money
	Items      []CartLine
}

// clone returns a deep copy of the transaction.
func (t Transaction) clone() Transaction {
	t.Items = slices.Clone(t.Items)
	return t
}

// Units returns the number of units sold.
func (t Transaction) Units() int {
	n := 0
	for _, it := range t.Items {
		n += it.Qty
	}
	return n
}

// Summary lists the items as "name(qty)" joined by "; ".
func (t Transaction) Summary() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = fmt.Sprintf("%s(%d)", it.Name, it.Qty)
	}
	return strings.Join(parts, "; ")
}

// Validate checks the transaction amounts for consistency.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return invalid("transaction id", "", "cannot be empty")
	}
	if t.FinalTotal.IsNegative() {
		return invalid("final total", t.FinalTotal.String(), "cannot be negative")
	}
	want := t.RawTotal.Add(t.Tax).Sub(t.Discount).Max(M(0, t.RawTotal.Currency()))
	if !want.Decimal().Equal(t.FinalTotal.Decimal()) {
		return invalid("final total", t.FinalTotal.String(), fmt.Sprintf("want %s", want))
	}
	for _, it := range t.Items {
		if it.Qty <= 0 {
			return invalid("quantity", fmt.Sprint(it.Qty), fmt.Sprintf("of %q must be positive", it.Name))
		}
	}
	return nil
}
