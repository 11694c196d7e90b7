package kasir

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/kasir/gate"
	"github.com/etnz/kasir/store"
)

func openShop(t *testing.T, st store.Store, opts ...Option) *Shop {
	t.Helper()
	s, err := Open(context.Background(), st, append([]Option{WithLocation(wib)}, opts...)...)
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	return s
}

func TestShop_Defaults(t *testing.T) {
	s := openShop(t, store.NewMemory())
	if s.Catalog().Len() != 5 || s.Ledger().Len() != 0 || !s.Expense().IsZero() || s.HasPIN() {
		t.Errorf("Open() on an empty store = %d products, %d transactions, expense %v, pin %v",
			s.Catalog().Len(), s.Ledger().Len(), s.Expense(), s.HasPIN())
	}
	if !s.TaxRate().Equal(StandardTaxRate) || s.RestockThreshold() != DefaultRestockThreshold {
		t.Errorf("Open() tax %v threshold %d", s.TaxRate(), s.RestockThreshold())
	}
}

func TestShop_Persistence(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := openShop(t, st)

	p, err := s.AddProduct(ctx, ProductFields{Name: "Es Teh", Price: idr(6000), Stock: 12, Category: "Minuman"})
	if err != nil {
		t.Fatalf("AddProduct() unexpected error: %v", err)
	}
	cart := s.NewCart()
	cart.AddItem(p)
	cart.AddItem(p)
	tx, err := s.Checkout(ctx, cart, R(0.11), idr(1000))
	if err != nil {
		t.Fatalf("Checkout() unexpected error: %v", err)
	}
	if err := s.SetExpense(ctx, idr(2500)); err != nil {
		t.Fatalf("SetExpense() unexpected error: %v", err)
	}

	reopened := openShop(t, st)
	got, err := reopened.Product(p.ID)
	if err != nil || got.Stock != 10 {
		t.Errorf("reopened product = %v, %v, want stock 10", got, err)
	}
	if stored, ok := reopened.Ledger().Get(tx.ID); !ok || !stored.FinalTotal.Equal(tx.FinalTotal) {
		t.Errorf("reopened ledger lost %s", tx.ID)
	}
	if !reopened.Expense().Equal(idr(2500)) {
		t.Errorf("reopened expense = %v, want %v", reopened.Expense(), idr(2500))
	}
	// ids of sold products are never handed out again, even once removed
	if err := reopened.RemoveProduct(ctx, p.ID); err != nil {
		t.Fatalf("RemoveProduct() unexpected error: %v", err)
	}
	again := openShop(t, st)
	q, _ := again.AddProduct(ctx, ProductFields{Name: "Es Jeruk", Price: idr(7000)})
	if q.ID <= p.ID {
		t.Errorf("AddProduct() reused id %d", q.ID)
	}
}

func TestShop_LegacyExpense(t *testing.T) {
	st := store.NewMemory()
	st.Save(context.Background(), map[string]string{KeyExpense: "150000"})
	s := openShop(t, st)
	if !s.Expense().Equal(idr(150000)) {
		t.Errorf("Expense() = %v, want %v", s.Expense(), idr(150000))
	}
}

func TestShop_Product(t *testing.T) {
	s := openShop(t, store.NewMemory())
	if _, err := s.Product(404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Product(404) error = %v, want ErrNotFound", err)
	}
}

func TestShop_Restock(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, store.NewMemory())
	p, err := s.Restock(ctx, 5, 20)
	if err != nil {
		t.Fatalf("Restock() unexpected error: %v", err)
	}
	if p.Stock != 20 {
		t.Errorf("Restock() stock = %d, want 20", p.Stock)
	}
}

func TestShop_StrictPolicy(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, store.NewMemory(), WithStockPolicy(RejectShortage))
	p, _ := s.Product(2) // Croissant Butter, 5 in stock
	cart := s.NewCart()
	for range 5 {
		cart.AddItem(p)
	}
	if _, err := s.Restock(ctx, 2, -3); err != nil {
		t.Fatalf("Restock() unexpected error: %v", err)
	}
	_, err := s.Checkout(ctx, cart, R(0), idr(0))
	var conflict *StockConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Checkout() error = %v, want a *StockConflictError", err)
	}
}

func TestShop_Reset(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := openShop(t, st)
	s.RemoveProduct(ctx, 1)
	s.SetExpense(ctx, idr(1))
	if err := s.SetPIN(ctx, "1234"); err != nil {
		t.Fatalf("SetPIN() unexpected error: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() unexpected error: %v", err)
	}
	if s.Catalog().Len() != 5 || !s.Expense().IsZero() || s.HasPIN() {
		t.Error("Reset() did not restore the defaults")
	}
	if keys := st.Keys(); len(keys) != 0 {
		t.Errorf("Reset() left keys %v", keys)
	}
}

func TestShop_PIN(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := openShop(t, st)
	if err := s.Unlock(""); err != nil {
		t.Errorf("Unlock() without PIN = %v, want nil", err)
	}
	if err := s.SetPIN(ctx, "12"); !errors.Is(err, gate.ErrInvalidPIN) {
		t.Errorf("SetPIN(12) error = %v, want ErrInvalidPIN", err)
	}
	if err := s.SetPIN(ctx, "2580"); err != nil {
		t.Fatalf("SetPIN() unexpected error: %v", err)
	}
	reopened := openShop(t, st)
	if err := reopened.Unlock("0000"); !errors.Is(err, gate.ErrWrongPIN) {
		t.Errorf("Unlock(wrong) error = %v, want ErrWrongPIN", err)
	}
	if err := reopened.Unlock("2580"); err != nil {
		t.Errorf("Unlock() error = %v", err)
	}
	if err := reopened.ClearPIN(ctx); err != nil {
		t.Fatalf("ClearPIN() unexpected error: %v", err)
	}
	if openShop(t, st).HasPIN() {
		t.Error("ClearPIN() was not persisted")
	}
}

// failingStore loads nothing and cannot save.
type failingStore struct{ *store.Memory }

func (failingStore) Save(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func TestShop_PersistFailureKeepsCommit(t *testing.T) {
	ctx := context.Background()
	s := openShop(t, failingStore{store.NewMemory()})
	p, _ := s.Product(1)
	cart := s.NewCart()
	cart.AddItem(p)

	tx, err := s.Checkout(ctx, cart, R(0), idr(0))
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("Checkout() error = %v, want ErrPersist", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Checkout() error = %v, want the store error", err)
	}
	if _, ok := s.Ledger().Get(tx.ID); !ok {
		t.Error("the transaction must stay committed in memory")
	}
}

func TestShop_NilLogger(t *testing.T) {
	s := openShop(t, store.NewMemory(), WithLogger(nil))
	if _, err := s.Restock(context.Background(), 2, 1); err != nil {
		t.Errorf("Restock() unexpected error: %v", err)
	}
}

func TestShop_CurrencyMismatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := openShop(t, st)
	cart := s.NewCart()
	p, _ := s.Product(1)
	cart.AddItem(p)
	if _, err := s.Checkout(ctx, cart, R(0.11), idr(0)); err != nil {
		t.Fatalf("Checkout() unexpected error: %v", err)
	}

	if _, err := Open(ctx, st, WithCurrency("USD")); !errors.Is(err, ErrCurrency) {
		t.Errorf("Open() in USD over an IDR shop error = %v, want ErrCurrency", err)
	}

	var verr *ValidationError
	if _, err := s.AddProduct(ctx, ProductFields{Name: "Cola", Price: M(2, "USD"), Stock: 1}); !errors.As(err, &verr) {
		t.Errorf("AddProduct() priced in USD error = %v, want a *ValidationError", err)
	}
	if _, err := s.Price(s.NewCart(), R(0.11), M(1, "USD")); !errors.As(err, &verr) {
		t.Errorf("Price() with a USD discount error = %v, want a *ValidationError", err)
	}
}

func TestShop_LedgerIsACopy(t *testing.T) {
	s := openShop(t, store.NewMemory())
	l := s.Ledger()
	if err := l.Append(sale("INV-X", time.Date(2025, time.March, 2, 12, 0, 0, 0, wib), 1000)); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	if n := s.Ledger().Len(); n != 0 {
		t.Errorf("shop ledger has %d transactions after appending to a copy, want 0", n)
	}
}
