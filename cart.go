package kasir

import "slices"

// CartLine is a product snapshot with the quantity selected for sale.
type CartLine struct {
	Product
	Qty int
}

// Total returns price times quantity.
func (l CartLine) Total() Money { return l.Price.Times(l.Qty) }

// Cart is the transient selection of products pending sale. Its zero value is
// an empty cart ready to use.
type Cart struct {
	lines    []CartLine
	currency string
}

// NewCart creates an empty cart whose totals are expressed in currency.
func NewCart(currency string) *Cart { return &Cart{currency: currency} }

// AddItem adds one unit of p. It does nothing and returns false when p is out
// of stock or when the cart already holds p.Stock units of it.
func (c *Cart) AddItem(p Product) bool {
	if p.Stock <= 0 {
		return false
	}
	if i := c.index(p.ID); i >= 0 {
		if c.lines[i].Qty >= p.Stock {
			return false
		}
		c.lines[i].Qty++
		return true
	}
	c.lines = append(c.lines, CartLine{Product: p, Qty: 1})
	return true
}

// DecrementItem removes one unit of product id; the line disappears at zero.
func (c *Cart) DecrementItem(id int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.lines[i].Qty--
	if c.lines[i].Qty <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

// Remove drops the whole line of product id.
func (c *Cart) Remove(id int) {
	c.lines = slices.DeleteFunc(c.lines, func(l CartLine) bool { return l.ID == id })
}

// Clear empties the cart.
func (c *Cart) Clear() { c.lines = nil }

// Subtotal returns the sum of price times quantity over all lines.
func (c *Cart) Subtotal() Money {
	total := M(0, c.currency)
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []CartLine { return slices.Clone(c.lines) }

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int { return len(c.lines) }

// Units returns the total quantity in the cart.
func (c *Cart) Units() int {
	n := 0
	for _, l := range c.lines {
		n += l.Qty
	}
	return n
}

// IsEmpty reports whether the cart has no line.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Qty returns the quantity of product id in the cart.
func (c *Cart) Qty(id int) int {
	if i := c.index(id); i >= 0 {
		return c.lines[i].Qty
	}
	return 0
}

func (c *Cart) index(id int) int {
	return slices.IndexFunc(c.lines, func(l CartLine) bool { return l.ID == id })
}
