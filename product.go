package kasir

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Product is an item sellable by the shop.
type Product struct {
	ID       int
	Name     string
	Price    Money
	Stock    int
	Category string
	Image    string // optional URI
}

// InStock reports whether at least one unit can be sold.
func (p Product) InStock() bool { return p.Stock > 0 }

// ProductFields are the mutable attributes of a product, as entered by the
// shop owner.
type ProductFields struct {
	Name     string
	Price    Money
	Stock    int
	Category string
	Image    string
}

// Fields returns the mutable attributes of the product.
func (p Product) Fields() ProductFields {
	return ProductFields{Name: p.Name, Price: p.Price, Stock: p.Stock, Category: p.Category, Image: p.Image}
}

// Validate checks the fields and returns a *ValidationError for the first
// invalid one.
func (f ProductFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid("name", f.Name, "cannot be empty")
	}
	if f.Price.IsNegative() {
		return invalid("price", f.Price.Decimal().String(), "cannot be negative")
	}
	if f.Stock < 0 {
		return invalid("stock", strconv.Itoa(f.Stock), "cannot be negative")
	}
	if f.Image != "" {
		u, err := url.Parse(f.Image)
		if err != nil || u.Scheme == "" {
			return &ValidationError{Field: "image", Value: f.Image, Reason: "not an absolute URI", Err: err}
		}
	}
	return nil
}

// ParseProductFields builds ProductFields from raw text input. Price is a
// decimal amount in major units of currency.
func ParseProductFields(name, price, stock, category, image, currency string) (ProductFields, error) {
	f := ProductFields{
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
		Image:    strings.TrimSpace(image),
	}
	p, err := ParseMoney(strings.TrimSpace(price), currency)
	if err != nil {
		return f, &ValidationError{Field: "price", Value: price, Reason: "not a number", Err: err}
	}
	f.Price = p
	s, err := strconv.Atoi(strings.TrimSpace(stock))
	if err != nil {
		return f, &ValidationError{Field: "stock", Value: stock, Reason: "not an integer", Err: err}
	}
	f.Stock = s
	return f, f.Validate()
}

// apply copies the fields onto the product, keeping its identity.
func (f ProductFields) apply(p Product) Product {
	p.Name, p.Price, p.Stock, p.Category, p.Image = f.Name, f.Price, f.Stock, f.Category, f.Image
	return p
}

func (p Product) String() string {
	return fmt.Sprintf("#%d %s %s (%d)", p.ID, p.Name, p.Price, p.Stock)
}
