package kasir

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestCheckout(t *testing.T) {
	catalog := NewCatalog(product(1, "Kopi Gula Aren", 18000, 50), product(2, "Croissant Butter", 22000, 5))
	ledger := NewLedger("IDR")
	cart := NewCart("IDR")
	kopi, _ := catalog.Get(1)
	croissant, _ := catalog.Get(2)
	cart.AddItem(kopi)
	cart.AddItem(kopi)
	cart.AddItem(croissant)
	snapshot := cart.Lines()
	at := time.Date(2025, time.March, 2, 10, 30, 0, 0, wib)

	tx, err := Checkout(cart, catalog, ledger, CheckoutOptions{
		TaxRate:  R(0.11),
		Discount: idr(5000),
		NewID:    sequence(),
		Now:      clock(at),
	})
	if err != nil {
		t.Fatalf("Checkout() unexpected error: %v", err)
	}

	if tx.ID != "INV-1" || !tx.Date.Equal(at) {
		t.Errorf("Checkout() = %s at %v, want INV-1 at %v", tx.ID, tx.Date, at)
	}
	if !tx.RawTotal.Equal(idr(58000)) || !tx.Tax.Equal(idr(6380)) || !tx.Discount.Equal(idr(5000)) || !tx.FinalTotal.Equal(idr(59380)) {
		t.Errorf("Checkout() amounts = %v %v %v %v, want Rp58.000 Rp6.380 Rp5.000 Rp59.380", tx.RawTotal, tx.Tax, tx.Discount, tx.FinalTotal)
	}
	if !reflect.DeepEqual(tx.Items, snapshot) {
		t.Errorf("Checkout() items = %v, want %v", tx.Items, snapshot)
	}
	if ledger.Len() != 1 {
		t.Errorf("ledger has %d transactions, want 1", ledger.Len())
	}
	if !cart.IsEmpty() {
		t.Errorf("cart = %v, want empty", cart.Lines())
	}
	if p, _ := catalog.Get(1); p.Stock != 48 {
		t.Errorf("Kopi stock = %d, want 48", p.Stock)
	}
	if p, _ := catalog.Get(2); p.Stock != 4 {
		t.Errorf("Croissant stock = %d, want 4", p.Stock)
	}
}

func TestCheckout_TransactionIsImmutable(t *testing.T) {
	catalog := NewCatalog(product(1, "Kopi", 18000, 5))
	ledger := NewLedger("IDR")
	cart := NewCart("IDR")
	p, _ := catalog.Get(1)
	cart.AddItem(p)

	tx, err := Checkout(cart, catalog, ledger, CheckoutOptions{NewID: sequence()})
	if err != nil {
		t.Fatalf("Checkout() unexpected error: %v", err)
	}
	tx.Items[0].Qty = 100
	catalog.Update(1, ProductFields{Name: "Renamed", Price: idr(1)})

	stored, _ := ledger.Get(tx.ID)
	if stored.Items[0].Qty != 1 || stored.Items[0].Name != "Kopi" {
		t.Errorf("stored transaction changed: %v", stored.Items)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	catalog := DefaultCatalog("IDR")
	ledger := NewLedger("IDR")
	before := catalog.Products()

	_, err := Checkout(NewCart("IDR"), catalog, ledger, CheckoutOptions{})

	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Checkout() error = %v, want a ValidationError wrapping ErrEmptyCart", err)
	}
	if ledger.Len() != 0 || !reflect.DeepEqual(before, catalog.Products()) {
		t.Error("a failed checkout changed the state")
	}
}

func TestCheckout_InvalidDiscount(t *testing.T) {
	catalog := NewCatalog(product(1, "Kopi", 18000, 5))
	ledger := NewLedger("IDR")
	cart := NewCart("IDR")
	p, _ := catalog.Get(1)
	cart.AddItem(p)

	_, err := Checkout(cart, catalog, ledger, CheckoutOptions{Discount: idr(-1)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Checkout() error = %v, want a *ValidationError", err)
	}
	if ledger.Len() != 0 || cart.IsEmpty() {
		t.Error("a failed checkout changed the state")
	}
	if p, _ := catalog.Get(1); p.Stock != 5 {
		t.Errorf("stock = %d, want 5", p.Stock)
	}
}

func TestCheckout_StockEqualsQuantity(t *testing.T) {
	catalog := NewCatalog(product(1, "Croissant", 22000, 2), product(2, "Air", 5000, 100))
	cart := NewCart("IDR")
	p, _ := catalog.Get(1)
	cart.AddItem(p)
	cart.AddItem(p)

	if _, err := Checkout(cart, catalog, NewLedger("IDR"), CheckoutOptions{}); err != nil {
		t.Fatalf("Checkout() unexpected error: %v", err)
	}
	if p, _ := catalog.Get(1); p.Stock != 0 {
		t.Errorf("stock = %d, want 0", p.Stock)
	}
	low := LowStock(catalog, DefaultRestockThreshold)
	if len(low) != 1 || low[0].ID != 1 {
		t.Errorf("LowStock() = %v, want the sold out croissant", names(low))
	}
}

// shortageSetup returns a cart holding 3 units while the catalog only has 1
// left, as happens when the stock changes after the cart was filled.
func shortageSetup() (*Cart, *Catalog, *Ledger) {
	catalog := NewCatalog(product(1, "Kopi", 18000, 3))
	cart := NewCart("IDR")
	p, _ := catalog.Get(1)
	cart.AddItem(p)
	cart.AddItem(p)
	cart.AddItem(p)
	catalog.DecrementStock(1, 2)
	return cart, catalog, NewLedger("IDR")
}

func TestCheckout_ClampStock(t *testing.T) {
	cart, catalog, ledger := shortageSetup()

	tx, err := Checkout(cart, catalog, ledger, CheckoutOptions{Policy: ClampStock})
	if err != nil {
		t.Fatalf("Checkout() unexpected error: %v", err)
	}
	if tx.Items[0].Qty != 3 {
		t.Errorf("receipt quantity = %d, want 3", tx.Items[0].Qty)
	}
	if p, _ := catalog.Get(1); p.Stock != 0 {
		t.Errorf("stock = %d, want 0", p.Stock)
	}
}

func TestCheckout_RejectShortage(t *testing.T) {
	cart, catalog, ledger := shortageSetup()

	_, err := Checkout(cart, catalog, ledger, CheckoutOptions{Policy: RejectShortage})

	var conflict *StockConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Checkout() error = %v, want a *StockConflictError", err)
	}
	want := []StockConflict{{ProductID: 1, Name: "Kopi", Requested: 3, Available: 1}}
	if !reflect.DeepEqual(conflict.Conflicts, want) {
		t.Errorf("conflicts = %v, want %v", conflict.Conflicts, want)
	}
	if ledger.Len() != 0 || cart.Units() != 3 {
		t.Error("a rejected checkout changed the ledger or the cart")
	}
	if p, _ := catalog.Get(1); p.Stock != 1 {
		t.Errorf("stock = %d, want 1", p.Stock)
	}
}

func TestCheckout_DuplicateID(t *testing.T) {
	catalog := NewCatalog(product(1, "Kopi", 18000, 5))
	ledger := NewLedger("IDR")
	fixed := func() string { return "INV-SAME" }
	p, _ := catalog.Get(1)

	cart := NewCart("IDR")
	cart.AddItem(p)
	if _, err := Checkout(cart, catalog, ledger, CheckoutOptions{NewID: fixed}); err != nil {
		t.Fatalf("first Checkout() unexpected error: %v", err)
	}
	cart.AddItem(p)
	_, err := Checkout(cart, catalog, ledger, CheckoutOptions{NewID: fixed})
	if !errors.Is(err, ErrDuplicateTransaction) {
		t.Fatalf("Checkout() error = %v, want ErrDuplicateTransaction", err)
	}
	if p, _ := catalog.Get(1); p.Stock != 4 {
		t.Errorf("stock = %d, want 4", p.Stock)
	}
	if cart.IsEmpty() {
		t.Error("a failed checkout cleared the cart")
	}
}

func TestNewTransactionID(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := NewTransactionID()
		if seen[id] {
			t.Fatalf("NewTransactionID() returned %q twice", id)
		}
		seen[id] = true
	}
}
