package kasir

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/kasir/date"
	"github.com/etnz/kasir/gate"
	"github.com/etnz/kasir/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Storage keys of the shop state.
const (
	KeyProducts     = "products"
	KeyTransactions = "transactions"
	KeyExpense      = "expense"
	KeyPIN          = "pin"
)

// DefaultShopName is used when no name is configured.
const DefaultShopName = "SamikStore"

// Shop owns the state of one shop: its catalog, its ledger and its expense,
// bound to a durable store. Every successful change is saved before the
// method returns.
//
// A Shop is not safe for concurrent use.
type Shop struct {
	name      string
	currency  string
	loc       *time.Location
	taxRate   Rate
	threshold int
	policy    StockPolicy
	logger    *zap.Logger

	store   store.Store
	catalog *Catalog
	ledger  *Ledger
	expense Money
	pinHash string
}

// Option configures a Shop.
type Option func(*Shop)

func WithName(name string) Option             { return func(s *Shop) { s.name = name } }
func WithCurrency(cur string) Option          { return func(s *Shop) { s.currency = cur } }
func WithLocation(loc *time.Location) Option  { return func(s *Shop) { s.loc = loc } }
func WithTaxRate(r Rate) Option               { return func(s *Shop) { s.taxRate = r } }
func WithRestockThreshold(n int) Option       { return func(s *Shop) { s.threshold = n } }
func WithStockPolicy(p StockPolicy) Option    { return func(s *Shop) { s.policy = p } }
func WithLogger(logger *zap.Logger) Option    { return func(s *Shop) { s.logger = logger } }

// Open loads the shop state from st. Missing keys get their defaults: the
// default catalog, an empty ledger, no expense and no PIN.
func Open(ctx context.Context, st store.Store, opts ...Option) (*Shop, error) {
	s := &Shop{
		name:      DefaultShopName,
		currency:  DefaultCurrency,
		loc:       time.Local,
		taxRate:   StandardTaxRate,
		threshold: DefaultRestockThreshold,
		logger:    zap.NewNop(),
		store:     st,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shop) load(ctx context.Context) error {
	s.catalog = DefaultCatalog(s.currency)
	s.ledger = NewLedger(s.currency)
	s.expense = M(0, s.currency)
	s.pinHash = ""

	if v, ok, err := s.store.Load(ctx, KeyProducts); err != nil {
		return fmt.Errorf("could not load products: %w", err)
	} else if ok {
		c, err := DecodeCatalog(strings.NewReader(v))
		if err != nil {
			return fmt.Errorf("could not decode products: %w", err)
		}
		s.catalog = c
	}
	if v, ok, err := s.store.Load(ctx, KeyTransactions); err != nil {
		return fmt.Errorf("could not load transactions: %w", err)
	} else if ok {
		l, err := DecodeLedger(strings.NewReader(v), s.currency)
		if err != nil {
			return fmt.Errorf("could not decode transactions: %w", err)
		}
		s.ledger = l
	}
	if v, ok, err := s.store.Load(ctx, KeyExpense); err != nil {
		return fmt.Errorf("could not load expense: %w", err)
	} else if ok {
		e, err := decodeExpense(v, s.currency)
		if err != nil {
			return fmt.Errorf("could not decode expense: %w", err)
		}
		s.expense = e
	}
	if v, ok, err := s.store.Load(ctx, KeyPIN); err != nil {
		return fmt.Errorf("could not load pin: %w", err)
	} else if ok {
		s.pinHash = v
	}
	if err := s.checkCurrency(); err != nil {
		return err
	}
	// Ids referenced by past sales are never handed out again.
	s.catalog.Reserve(s.ledger.MaxProductID())
	s.logger.Debug("shop loaded",
		zap.Int("products", s.catalog.Len()),
		zap.Int("transactions", s.ledger.Len()),
		zap.String("expense", s.expense.String()))
	return nil
}

// checkCurrency rejects a stored state priced in another currency: amounts
// of different currencies cannot be added up.
func (s *Shop) checkCurrency() error {
	foreign := func(m Money) bool { return m.cur != "" && m.cur != s.currency }
	for _, p := range s.catalog.products {
		if foreign(p.Price) {
			return fmt.Errorf("%w: product %d is priced in %s, the shop uses %s", ErrCurrency, p.ID, p.Price.cur, s.currency)
		}
	}
	for _, tx := range s.ledger.transactions {
		if foreign(tx.FinalTotal) {
			return fmt.Errorf("%w: transaction %s is in %s, the shop uses %s", ErrCurrency, tx.ID, tx.FinalTotal.cur, s.currency)
		}
	}
	if foreign(s.expense) {
		return fmt.Errorf("%w: expense is in %s, the shop uses %s", ErrCurrency, s.expense.cur, s.currency)
	}
	return nil
}

// decodeExpense reads a Money object or a bare amount.
func decodeExpense(v, currency string) (Money, error) {
	v = strings.TrimSpace(v)
	if d, err := decimal.NewFromString(v); err == nil {
		return M(d, currency), nil
	}
	var m Money
	if err := json.Unmarshal([]byte(v), &m); err != nil {
		return Money{}, err
	}
	if m.cur == "" {
		m.cur = currency
	}
	return m, nil
}

// save encodes the given keys and saves them together.
func (s *Shop) save(ctx context.Context, keys ...string) error {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		var buf bytes.Buffer
		var err error
		switch key {
		case KeyProducts:
			err = EncodeCatalog(&buf, s.catalog)
		case KeyTransactions:
			err = EncodeLedger(&buf, s.ledger)
		case KeyExpense:
			var data []byte
			data, err = json.Marshal(s.expense)
			buf.Write(data)
		case KeyPIN:
			buf.WriteString(s.pinHash)
		default:
			err = fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
		values[key] = buf.String()
	}
	if err := s.store.Save(ctx, values); err != nil {
		s.logger.Error("could not save shop state", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Save writes the whole state.
func (s *Shop) Save(ctx context.Context) error {
	keys := []string{KeyProducts, KeyTransactions, KeyExpense}
	if s.pinHash != "" {
		keys = append(keys, KeyPIN)
	}
	return s.save(ctx, keys...)
}

// Reset deletes every stored key and goes back to the defaults.
func (s *Shop) Reset(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyProducts, KeyTransactions, KeyExpense, KeyPIN); err != nil {
		return fmt.Errorf("could not reset: %w", err)
	}
	s.logger.Warn("shop reset")
	return s.load(ctx)
}

func (s *Shop) Name() string              { return s.name }
func (s *Shop) Currency() string          { return s.currency }
func (s *Shop) Location() *time.Location  { return s.loc }
func (s *Shop) TaxRate() Rate             { return s.taxRate }
func (s *Shop) RestockThreshold() int     { return s.threshold }
func (s *Shop) Policy() StockPolicy       { return s.policy }
func (s *Shop) Catalog() *Catalog         { return s.catalog.Clone() }
func (s *Shop) Ledger() *Ledger           { return s.ledger.Clone() }
func (s *Shop) Expense() Money            { return s.expense }
func (s *Shop) Today() date.Date          { return date.Today(s.loc) }
func (s *Shop) NewCart() *Cart            { return NewCart(s.currency) }
func (s *Shop) List(f Filter) []Product   { return s.catalog.List(f) }
func (s *Shop) Categories() []string      { return s.catalog.Categories() }

// Product returns product id or ErrNotFound.
func (s *Shop) Product(id int) (Product, error) {
	p, ok := s.catalog.Get(id)
	if !ok {
		return Product{}, fmt.Errorf("%w: #%d", ErrNotFound, id)
	}
	return p, nil
}

// AddProduct adds a product to the catalog.
func (s *Shop) AddProduct(ctx context.Context, f ProductFields) (Product, error) {
	if err := s.checkPrice(f); err != nil {
		return Product{}, err
	}
	p, err := s.catalog.Add(f)
	if err != nil {
		return Product{}, err
	}
	s.logger.Info("product added", zap.Int("id", p.ID), zap.String("name", p.Name))
	return p, s.save(ctx, KeyProducts)
}

func (s *Shop) checkPrice(f ProductFields) error {
	if c := f.Price.Currency(); c != "" && c != s.currency {
		return invalid("price", f.Price.String(), "currency mismatch")
	}
	return nil
}

// UpdateProduct edits product id. Editing an unknown product changes nothing.
func (s *Shop) UpdateProduct(ctx context.Context, id int, f ProductFields) error {
	if err := s.checkPrice(f); err != nil {
		return err
	}
	if err := s.catalog.Update(id, f); err != nil {
		return err
	}
	return s.save(ctx, KeyProducts)
}

// RemoveProduct deletes product id, if present.
func (s *Shop) RemoveProduct(ctx context.Context, id int) error {
	s.catalog.Remove(id)
	return s.save(ctx, KeyProducts)
}

// Restock adds qty units to product id.
func (s *Shop) Restock(ctx context.Context, id, qty int) (Product, error) {
	p, err := s.Product(id)
	if err != nil {
		return Product{}, err
	}
	f := p.Fields()
	f.Stock += qty
	if err := s.catalog.Update(id, f); err != nil {
		return Product{}, err
	}
	p, _ = s.catalog.Get(id)
	return p, s.save(ctx, KeyProducts)
}

// Price prices the cart with the given tax rate and discount.
func (s *Shop) Price(cart *Cart, rate Rate, discount Money) (Breakdown, error) {
	return PriceCart(cart, rate, discount)
}

// Checkout sells the content of the cart. The transaction is committed even
// when saving fails, the returned error then wraps ErrPersist.
func (s *Shop) Checkout(ctx context.Context, cart *Cart, rate Rate, discount Money) (Transaction, error) {
	shortages := s.catalog.Shortages(cart.Lines())
	tx, err := Checkout(cart, s.catalog, s.ledger, CheckoutOptions{
		TaxRate:  rate,
		Discount: discount,
		Policy:   s.policy,
	})
	if err != nil {
		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			s.logger.Info("sale rejected", zap.Int("conflicts", len(conflict.Conflicts)))
		}
		return Transaction{}, err
	}
	for _, c := range shortages {
		s.logger.Warn("stock clamped at zero",
			zap.String("transaction", tx.ID),
			zap.Int("product", c.ProductID),
			zap.Int("requested", c.Requested),
			zap.Int("available", c.Available))
	}
	s.logger.Info("sale recorded", zap.String("id", tx.ID), zap.String("total", tx.FinalTotal.String()), zap.Int("units", tx.Units()))
	return tx, s.save(ctx, KeyTransactions, KeyProducts)
}

// SetExpense records the operating expense deducted from revenue.
func (s *Shop) SetExpense(ctx context.Context, expense Money) error {
	if expense.IsNegative() {
		return invalid("expense", expense.String(), "cannot be negative")
	}
	s.expense = M(expense.value, s.currency)
	return s.save(ctx, KeyExpense)
}

// Dashboard computes the dashboard of today.
func (s *Shop) Dashboard() *Dashboard {
	d := NewDashboard(s.catalog, s.ledger, s.expense, s.Today(), s.loc, s.threshold)
	d.ShopName = s.name
	return d
}

// Export writes the ledger as CSV.
func (s *Shop) Export(w io.Writer) error {
	return ExportCSV(w, s.ledger, s.loc)
}

// HasPIN reports whether a PIN protects the shop.
func (s *Shop) HasPIN() bool { return s.pinHash != "" }

// SetPIN protects the shop with pin.
func (s *Shop) SetPIN(ctx context.Context, pin string) error {
	hash, err := gate.Hash(pin)
	if err != nil {
		return err
	}
	s.pinHash = hash
	return s.save(ctx, KeyPIN)
}

// ClearPIN removes the PIN protection.
func (s *Shop) ClearPIN(ctx context.Context) error {
	s.pinHash = ""
	if err := s.store.Delete(ctx, KeyPIN); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Unlock checks pin against the stored PIN. A shop without PIN is always
// unlocked.
func (s *Shop) Unlock(pin string) error {
	if s.pinHash == "" {
		return nil
	}
	return gate.Check(s.pinHash, pin)
}
