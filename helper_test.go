package kasir

import (
	"fmt"
	"time"
)

// wib is the Jakarta time zone, fixed so tests do not depend on tzdata.
var wib = time.FixedZone("WIB", 7*3600)

func idr(v int) Money { return M(v, "IDR") }

func product(id int, name string, price, stock int) Product {
	return Product{ID: id, Name: name, Price: idr(price), Stock: stock, Category: "Test"}
}

// sequence returns an id generator yielding INV-1, INV-2...
func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("INV-%d", n)
	}
}

// clock returns a Now function always answering t.
func clock(t time.Time) func() time.Time { return func() time.Time { return t } }

// sale returns a valid transaction of total on instant at.
func sale(id string, at time.Time, total int) Transaction {
	p := product(1, "Kopi", total, 10)
	return Transaction{
		ID:         id,
		Date:       at,
		RawTotal:   idr(total),
		Tax:        idr(0),
		Discount:   idr(0),
		FinalTotal: idr(total),
		Items:      []CartLine{{Product: p, Qty: 1}},
	}
}
