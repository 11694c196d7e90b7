package kasir

import (
	"slices"
	"strings"
)

// AllCategories is the category filter that matches every product.
const AllCategories = "All"

// DefaultRestockThreshold is the stock level under which a product needs
// restocking.
const DefaultRestockThreshold = 10

// Catalog is the ordered set of products sold by the shop.
//
// Product ids come from a monotonic sequence and are never reused.
type Catalog struct {
	products []Product
	lastID   int
}

// NewCatalog creates a catalog with products, in that order.
func NewCatalog(products ...Product) *Catalog {
	c := &Catalog{products: make([]Product, 0, len(products))}
	for _, p := range products {
		c.products = append(c.products, p)
		c.Reserve(p.ID)
	}
	return c
}

// Reserve makes sure the next id assigned by Add is greater than id.
func (c *Catalog) Reserve(id int) {
	if id > c.lastID {
		c.lastID = id
	}
}

// Add validates the fields and appends a new product with a fresh id.
func (c *Catalog) Add(f ProductFields) (Product, error) {
	if err := f.Validate(); err != nil {
		return Product{}, err
	}
	c.lastID++
	p := f.apply(Product{ID: c.lastID})
	c.products = append(c.products, p)
	return p, nil
}

// Update replaces the mutable fields of product id. An unknown id is silently
// ignored.
func (c *Catalog) Update(id int, f ProductFields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if i := c.index(id); i >= 0 {
		c.products[i] = f.apply(c.products[i])
	}
	return nil
}

// Remove deletes product id, if present.
func (c *Catalog) Remove(id int) {
	c.products = slices.DeleteFunc(c.products, func(p Product) bool { return p.ID == id })
}

// DecrementStock removes qty units of product id, never going below zero. It
// returns the number of units actually removed.
func (c *Catalog) DecrementStock(id, qty int) int {
	i := c.index(id)
	if i < 0 || qty <= 0 {
		return 0
	}
	removed := min(qty, c.products[i].Stock)
	c.products[i].Stock -= removed
	return removed
}

// Get returns product id.
func (c *Catalog) Get(id int) (Product, bool) {
	if i := c.index(id); i >= 0 {
		return c.products[i], true
	}
	return Product{}, false
}

func (c *Catalog) index(id int) int {
	return slices.IndexFunc(c.products, func(p Product) bool { return p.ID == id })
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Products returns a copy of all the products in catalog order.
func (c *Catalog) Products() []Product { return slices.Clone(c.products) }

// Filter selects products in List.
type Filter struct {
	Search   string // case-insensitive substring of the name
	Category string // "" or AllCategories matches everything
}

func (f Filter) match(p Product) bool {
	if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search))
}

// List returns the products matching the filter, in catalog order.
func (c *Catalog) List(f Filter) []Product {
	var res []Product
	for _, p := range c.products {
		if f.match(p) {
			res = append(res, p)
		}
	}
	return res
}

// LowStock returns the products with stock strictly below threshold, in
// catalog order.
func (c *Catalog) LowStock(threshold int) []Product {
	var res []Product
	for _, p := range c.products {
		if p.Stock < threshold {
			res = append(res, p)
		}
	}
	return res
}

// Categories returns AllCategories followed by every distinct category in
// order of first appearance.
func (c *Catalog) Categories() []string {
	res := []string{AllCategories}
	for _, p := range c.products {
		if !slices.Contains(res, p.Category) {
			res = append(res, p.Category)
		}
	}
	return res
}

// Shortages returns the lines asking for more units than the catalog holds.
// A product no longer in the catalog has nothing available.
func (c *Catalog) Shortages(lines []CartLine) []StockConflict {
	var res []StockConflict
	for _, l := range lines {
		available := 0
		if p, ok := c.Get(l.Product.ID); ok {
			available = p.Stock
		}
		if l.Qty > available {
			res = append(res, StockConflict{ProductID: l.Product.ID, Name: l.Product.Name, Requested: l.Qty, Available: available})
		}
	}
	return res
}

// Clone returns an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{products: slices.Clone(c.products), lastID: c.lastID}
}

// DefaultCatalog returns the catalog a new shop starts with.
func DefaultCatalog(currency string) *Catalog {
	return NewCatalog(
		Product{ID: 1, Name: "Kopi Gula Aren", Price: M(18000, currency), Stock: 50, Category: "Minuman", Image: "https://images.unsplash.com/photo-1541167760496-1628856ab772?q=80&w=200&auto=format&fit=crop"},
		Product{ID: 2, Name: "Croissant Butter", Price: M(22000, currency), Stock: 5, Category: "Makanan", Image: "https://images.unsplash.com/photo-1555507036-ab1f4038808a?q=80&w=200&auto=format&fit=crop"},
		Product{ID: 3, Name: "Air Mineral", Price: M(5000, currency), Stock: 100, Category: "Minuman"},
		Product{ID: 4, Name: "Dimsum Mentai", Price: M(30000, currency), Stock: 15, Category: "Snack"},
		Product{ID: 5, Name: "Nasi Goreng", Price: M(25000, currency), Stock: 0, Category: "Makanan", Image: "https://images.unsplash.com/photo-1603133872878-684f208fb74b?q=80&w=200&auto=format&fit=crop"},
	)
}
