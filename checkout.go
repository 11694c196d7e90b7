package kasir

import (
	"fmt"
	"time"
)

// StockPolicy decides what a checkout does when the cart asks for more units
// than the catalog holds.
type StockPolicy int

const (
	// ClampStock accepts the sale and floors the stock at zero.
	ClampStock StockPolicy = iota
	// RejectShortage refuses the sale with a *StockConflictError.
	RejectShortage
)

func (p StockPolicy) String() string {
	switch p {
	case ClampStock:
		return "clamp"
	case RejectShortage:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseStockPolicy parses "clamp" or "reject".
func ParseStockPolicy(s string) (StockPolicy, error) {
	switch s {
	case "clamp", "":
		return ClampStock, nil
	case "reject", "strict":
		return RejectShortage, nil
	default:
		return 0, fmt.Errorf("unknown stock policy: %q", s)
	}
}

// CheckoutOptions are the parameters of a checkout. The zero value applies no
// tax and no discount, clamps stock and generates ids and timestamps.
type CheckoutOptions struct {
	TaxRate  Rate
	Discount Money
	Policy   StockPolicy
	NewID    func() string    // defaults to NewTransactionID
	Now      func() time.Time // defaults to time.Now
}

// Checkout turns the cart into a Transaction appended to the ledger,
// decrements the catalog stock of every line and clears the cart.
//
// Every validation happens before the first change: on error, the cart, the
// catalog and the ledger are left untouched.
func Checkout(cart *Cart, catalog *Catalog, ledger *Ledger, opts CheckoutOptions) (Transaction, error) {
	if cart.IsEmpty() {
		return Transaction{}, &ValidationError{Field: "cart", Err: ErrEmptyCart}
	}
	b, err := PriceCart(cart, opts.TaxRate, opts.Discount)
	if err != nil {
		return Transaction{}, err
	}
	lines := cart.Lines()
	if opts.Policy == RejectShortage {
		if conflicts := catalog.Shortages(lines); len(conflicts) > 0 {
			return Transaction{}, &StockConflictError{Conflicts: conflicts}
		}
	}

	newID, now := opts.NewID, opts.Now
	if newID == nil {
		newID = NewTransactionID
	}
	if now == nil {
		now = time.Now
	}
	tx := Transaction{
		ID:         newID(),
		Date:       now(),
		RawTotal:   b.Subtotal,
		Tax:        b.Tax,
		Discount:   b.Discount,
		FinalTotal: b.Total,
		Items:      lines,
	}
	if err := ledger.Append(tx); err != nil {
		return Transaction{}, fmt.Errorf("could not record transaction: %w", err)
	}
	for _, l := range lines {
		catalog.DecrementStock(l.ID, l.Qty)
	}
	cart.Clear()
	return tx.clone(), nil
}
