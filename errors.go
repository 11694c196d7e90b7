package kasir

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCart is wrapped by the ValidationError returned when checking
	// out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound reports a product id unknown to the catalog.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateTransaction reports a transaction id already in the ledger.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	// ErrPersist wraps storage failures that happen after a change was
	// committed in memory.
	ErrPersist = errors.New("could not persist state")
	// ErrCurrency reports stored amounts in a currency other than the shop's.
	ErrCurrency = errors.New("currency mismatch")
)

// ValidationError reports an input rejected before any state change.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	if e.Field != "" {
		b.WriteString(e.Field)
	} else {
		b.WriteString("input")
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// StockConflict describes one cart line asking for more units than available.
type StockConflict struct {
	ProductID int
	Name      string
	Requested int
	Available int
}

// Missing returns how many units cannot be served.
func (c StockConflict) Missing() int { return c.Requested - c.Available }

func (c StockConflict) String() string {
	return fmt.Sprintf("%s: %d requested, %d available", c.Name, c.Requested, c.Available)
}

// StockConflictError is returned by a checkout under the RejectShortage
// policy when the catalog cannot serve the cart.
type StockConflictError struct {
	Conflicts []StockConflict
}

func (e *StockConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
