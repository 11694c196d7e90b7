package kasir

// Breakdown is the price of a cart.
type Breakdown struct {
	Subtotal Money
	Tax      Money
	Discount Money
	Total    Money
}

// Price computes tax = subtotal × rate and total = max(0, subtotal + tax −
// discount). The discount is an absolute amount; it may exceed the taxed
// subtotal, the total is then zero.
func Price(subtotal Money, rate Rate, discount Money) (Breakdown, error) {
	if !rate.Valid() {
		return Breakdown{}, invalid("tax rate", rate.String(), "must be between 0% and 100%")
	}
	if c := discount.Currency(); c != "" && subtotal.Currency() != "" && c != subtotal.Currency() {
		return Breakdown{}, invalid("discount", discount.String(), "currency mismatch")
	}
	if discount.IsNegative() {
		return Breakdown{}, invalid("discount", discount.String(), "cannot be negative")
	}
	tax := subtotal.MulRate(rate)
	total := subtotal.Add(tax).Sub(discount).Max(M(0, subtotal.Currency()))
	return Breakdown{Subtotal: subtotal, Tax: tax, Discount: discount, Total: total}, nil
}

// PriceCart prices the current content of the cart.
func PriceCart(c *Cart, rate Rate, discount Money) (Breakdown, error) {
	return Price(c.Subtotal(), rate, discount)
}
