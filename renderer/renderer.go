// Package renderer renders the shop reports as markdown.
//
// Each report is a text/template stored in templates/, optionally composed of
// partial templates. The markdown is meant to be displayed in a terminal by
// a markdown renderer, but stays readable as plain text.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/kasir"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

// TimeFormat is the layout of dates in reports.
const TimeFormat = "02/01/2006 15:04"

// barWidth is the width of a full bar in the sales chart.
const barWidth = 20

var funcs = template.FuncMap{
	"join": strings.Join,
	"bar":  bar,
}

// bar draws a horizontal bar of height, a ratio in [0, 1].
func bar(height float64) string {
	n := int(height*barWidth + 0.5)
	n = max(0, min(barWidth, n))
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

// Receipt is the printable proof of a sale.
type Receipt struct {
	Shop string
	Tx   kasir.Transaction
	Loc  *time.Location
}

func (r Receipt) When() string { return r.Tx.Date.In(r.Loc).Format(TimeFormat) }

// RenderReceipt renders the receipt of tx.
func RenderReceipt(shop string, tx kasir.Transaction, loc *time.Location) string {
	return renderTemplate("receipt", "receipt.md", nil, Receipt{Shop: shop, Tx: tx, Loc: loc})
}

// CartView is a cart priced with a tax rate and a discount.
type CartView struct {
	Lines []kasir.CartLine
	Rate  kasir.Rate
	Price kasir.Breakdown
}

// RenderCart renders the cart content and its price.
func RenderCart(v CartView) string {
	return renderTemplate("cart", "cart.md", nil, v)
}

// CatalogView is a filtered list of products.
type CatalogView struct {
	Filter     string
	Products   []kasir.Product
	Categories []string
	Threshold  int
}

// Stock describes the stock of p, flagging products to restock.
func (v CatalogView) Stock(p kasir.Product) string {
	switch {
	case p.Stock == 0:
		return "**sold out**"
	case p.Stock < v.Threshold:
		return fmt.Sprintf("**%d**", p.Stock)
	default:
		return fmt.Sprint(p.Stock)
	}
}

// RenderCatalog renders a list of products.
func RenderCatalog(v CatalogView) string {
	return renderTemplate("catalog", "catalog.md", nil, v)
}

// History is a list of transactions.
type History struct {
	Title        string
	Transactions []kasir.Transaction
	Loc          *time.Location
}

func (h History) When(tx kasir.Transaction) string { return tx.Date.In(h.Loc).Format(TimeFormat) }

// Total sums the final totals of the listed transactions.
func (h History) Total() kasir.Money {
	total := kasir.M(0, "")
	for _, tx := range h.Transactions {
		total = total.Add(tx.FinalTotal)
	}
	return total
}

// RenderHistory renders transactions, in the given order.
func RenderHistory(h History) string {
	if h.Title == "" {
		h.Title = "Sales"
	}
	return renderTemplate("history", "history.md", nil, h)
}

// RenderDashboard renders the shop dashboard.
func RenderDashboard(d *kasir.Dashboard) string {
	partials := map[string]string{
		"dashboard_summary": "dashboard_summary.md",
		"dashboard_sales":   "dashboard_sales.md",
		"dashboard_restock": "dashboard_restock.md",
	}
	return renderTemplate("dashboard", "dashboard.md", partials, d)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
