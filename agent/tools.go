package agent

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/kasir"
	"github.com/etnz/kasir/date"
	"github.com/etnz/kasir/renderer"
	"google.golang.org/genai"
)

// Shop is the read only view of the shop offered to the advisor.
type Shop interface {
	Name() string
	Location() *time.Location
	Today() date.Date
	RestockThreshold() int
	List(kasir.Filter) []kasir.Product
	Categories() []string
	Ledger() *kasir.Ledger
	Dashboard() *kasir.Dashboard
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	out, err := f.Func(ctx, args)
	if err != nil {
		return failure(id, f.Decl.Name, err)
	}
	return success(id, f.Decl.Name, out)
}

// Tools returns the functions reading shop.
func Tools(shop Shop) []*Func {
	return []*Func{dashboardTool(shop), productsTool(shop), salesTool(shop)}
}

func dashboardTool(shop Shop) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Dashboard",
			Description: `Dashboard summarizes the shop today: revenue, expense and net income,
			the sales of the last 7 days and the products to restock.`,
			Response: &genai.Schema{Type: genai.TypeString, Description: "The markdown dashboard."},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			return renderer.RenderDashboard(shop.Dashboard()), nil
		},
	}
}

func productsTool(shop Shop) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Products",
			Description: "Products lists the catalog with price and stock, optionally filtered.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"search":   {Type: genai.TypeString, Description: "Case insensitive part of the product name."},
					"category": {Type: genai.TypeString, Description: "Exact category, or 'All'."},
				},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the products."},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			var f kasir.Filter
			var err error
			if f.Search, err = stringArg(args, "search", ""); err != nil {
				return "", err
			}
			if f.Category, err = stringArg(args, "category", kasir.AllCategories); err != nil {
				return "", err
			}
			if f.Category != kasir.AllCategories && !slices.Contains(shop.Categories(), f.Category) {
				return "", fmt.Errorf("unknown category %q, valid categories are %v", f.Category, shop.Categories())
			}
			return renderer.RenderCatalog(renderer.CatalogView{
				Products:   shop.List(f),
				Categories: shop.Categories(),
				Threshold:  shop.RestockThreshold(),
			}), nil
		},
	}
}

func salesTool(shop Shop) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Sales",
			Description: "Sales lists the transactions of a day, week, month or year.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"period": {Type: genai.TypeString, Description: "One of daily, weekly, monthly or yearly. Default is daily."},
					"date":   {Type: genai.TypeString, Description: "A day in the period, formatted YYYY-MM-DD. Default is today."},
				},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the transactions with their total."},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			sp, err := stringArg(args, "period", "daily")
			if err != nil {
				return "", err
			}
			period, err := date.ParsePeriod(sp)
			if err != nil {
				return "", err
			}
			on := shop.Today()
			sd, err := stringArg(args, "date", "")
			if err != nil {
				return "", err
			}
			if sd != "" {
				if on, err = date.Parse(sd); err != nil {
					return "", fmt.Errorf("argument 'date' must be formatted YYYY-MM-DD, got %q", sd)
				}
			}
			r := date.NewRange(on, period)
			var txs []kasir.Transaction
			for _, tx := range shop.Ledger().Transactions(kasir.InRange(r, shop.Location())) {
				txs = append(txs, tx)
			}
			return renderer.RenderHistory(renderer.History{
				Title:        "Sales " + r.Identifier(),
				Transactions: txs,
				Loc:          shop.Location(),
			}), nil
		},
	}
}

// stringArg returns the string argument name, or def when it is absent.
func stringArg(args map[string]any, name, def string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}
