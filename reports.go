package kasir

import (
	"time"

	"github.com/etnz/kasir/date"
)

// DefaultSalesWindow is the number of days in the sales chart.
const DefaultSalesWindow = 7

// shortWeekdays are the abbreviated weekday names of the id-ID locale.
var shortWeekdays = [7]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"}

// ShortWeekday returns the id-ID abbreviated name of wd.
func ShortWeekday(wd time.Weekday) string { return shortWeekdays[wd] }

// NetIncome returns the total revenue minus expense.
func NetIncome(ledger *Ledger, expense Money) Money {
	return ledger.TotalRevenue().Sub(expense)
}

// DayBucket is one bar of the sales chart.
type DayBucket struct {
	Date   date.Date
	Label  string
	Value  Money
	Height float64 // Value relative to the best day, within [0, 1]
}

// SalesByDay returns the summed final totals of the window days ending today,
// oldest first. Days are calendar days in loc.
func SalesByDay(ledger *Ledger, today date.Date, loc *time.Location, window int) []DayBucket {
	r := date.Trailing(today, window)
	totals := ledger.DailyTotals(loc, r)

	best := M(1, ledger.Currency())
	for _, v := range totals {
		best = best.Max(v)
	}
	res := make([]DayBucket, 0, r.Len())
	for d := range r.Days() {
		v := totals[d]
		res = append(res, DayBucket{
			Date:   d,
			Label:  ShortWeekday(d.Weekday()),
			Value:  v,
			Height: v.Ratio(best),
		})
	}
	return res
}

// LowStock returns the products under threshold, DefaultRestockThreshold when
// threshold is negative. A zero threshold lists nothing.
func LowStock(catalog *Catalog, threshold int) []Product {
	if threshold < 0 {
		threshold = DefaultRestockThreshold
	}
	return catalog.LowStock(threshold)
}

// Dashboard gathers the reports displayed on the shop dashboard.
type Dashboard struct {
	ShopName     string
	On           date.Date
	Revenue      Money
	Expense      Money
	NetIncome    Money
	Transactions int
	Sales        []DayBucket
	Threshold    int
	Restock      []Product
	Weather      string // optional, empty when unavailable
}

// NewDashboard computes the dashboard of the shop on day today.
func NewDashboard(catalog *Catalog, ledger *Ledger, expense Money, today date.Date, loc *time.Location, threshold int) *Dashboard {
	if threshold < 0 {
		threshold = DefaultRestockThreshold
	}
	return &Dashboard{
		On:           today,
		Revenue:      ledger.TotalRevenue(),
		Expense:      expense,
		NetIncome:    NetIncome(ledger, expense),
		Transactions: ledger.Len(),
		Sales:        SalesByDay(ledger, today, loc, DefaultSalesWindow),
		Threshold:    threshold,
		Restock:      LowStock(catalog, threshold),
	}
}
