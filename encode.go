package kasir

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// amountCmd is a specialized struct to read an amount in two fields.
type amountCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountCmd) Money() Money {
	return M(a.Amount, a.Currency)
}

// productCmd is the persisted form of a product. Its price is read in the
// currency field shared with the enclosing object.
type productCmd struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Stock    int             `json:"stock"`
	Image    string          `json:"image"`
}

func (c productCmd) Product() Product {
	return Product{ID: c.ID, Name: c.Name, Category: c.Category, Price: M(c.Price, c.Currency), Stock: c.Stock, Image: c.Image}
}

func (p Product) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", p.ID)
	w.Append("name", p.Name)
	w.Optional("category", p.Category)
	w.Append("price", p.Price.value)
	w.Optional("currency", p.Price.cur)
	w.Append("stock", p.Stock)
	w.Optional("image", p.Image)
	return w.MarshalJSON()
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var c productCmd
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*p = c.Product()
	return nil
}

func (l CartLine) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(l.Product)
	w.Append("qty", l.Qty)
	return w.MarshalJSON()
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	var temp struct {
		productCmd
		Qty int `json:"qty"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*l = CartLine{Product: temp.Product(), Qty: temp.Qty}
	return nil
}

// MarshalJSON writes the transaction with a stable field order. All amounts
// share the currency field.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date.Format(time.RFC3339Nano))
	w.Optional("currency", t.FinalTotal.cur)
	w.Append("rawTotal", t.RawTotal.value)
	w.Append("tax", t.Tax.value)
	w.Append("discount", t.Discount.value)
	w.Append("finalTotal", t.FinalTotal.value)
	items := t.Items
	if items == nil {
		items = []CartLine{}
	}
	w.Append("items", items)
	return w.MarshalJSON()
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID         string          `json:"id"`
		Date       time.Time       `json:"date"`
		Currency   string          `json:"currency"`
		RawTotal   decimal.Decimal `json:"rawTotal"`
		Tax        decimal.Decimal `json:"tax"`
		Discount   decimal.Decimal `json:"discount"`
		FinalTotal decimal.Decimal `json:"finalTotal"`
		Items      []CartLine      `json:"items"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction{
		ID:         temp.ID,
		Date:       temp.Date,
		RawTotal:   M(temp.RawTotal, temp.Currency),
		Tax:        M(temp.Tax, temp.Currency),
		Discount:   M(temp.Discount, temp.Currency),
		FinalTotal: M(temp.FinalTotal, temp.Currency),
		Items:      temp.Items,
	}
	return nil
}

// scanLines calls fn for every non empty line of r.
func scanLines(r io.Reader, fn func(line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}

// DecodeCatalog decodes products from a stream of JSONL data, one product per
// line, in catalog order.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var products []Product
	seen := make(map[int]bool)
	err := scanLines(r, func(line []byte) error {
		var p Product
		if err := json.Unmarshal(line, &p); err != nil {
			return fmt.Errorf("could not decode product %q: %w", string(line), err)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = true
		if p.Stock < 0 {
			// Stock is never negative, whatever was stored.
			p.Stock = 0
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewCatalog(products...), nil
}

// EncodeCatalog writes the products in JSONL format, in catalog order.
func EncodeCatalog(w io.Writer, c *Catalog) error {
	for _, p := range c.products {
		if err := encodeLine(w, p); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}
	return nil
}

// DecodeLedger decodes transactions from a stream of JSONL data and returns a
// sorted Ledger. Inconsistent or duplicate transactions are rejected.
func DecodeLedger(r io.Reader, currency string) (*Ledger, error) {
	ledger := NewLedger(currency)
	err := scanLines(r, func(line []byte) error {
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return fmt.Errorf("could not decode transaction %q: %w", string(line), err)
		}
		return ledger.Append(tx)
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeTransaction writes one transaction as a JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	if err := encodeLine(w, tx); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeLedger persists the transactions in chronological order, in JSONL
// format.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	ledger.stableSort()
	for _, tx := range ledger.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

func encodeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
