package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/kasir"
	"github.com/etnz/kasir/date"
	"github.com/etnz/kasir/renderer"
	"github.com/google/subcommands"
)

// pricingFlags select the tax and discount of a sale.
type pricingFlags struct {
	rate     string
	noTax    bool
	discount string
}

func (p *pricingFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.rate, "tax-rate", "", "Tax rate, e.g. 11% or 0.11. Defaults to the configured rate.")
	f.BoolVar(&p.noTax, "no-tax", false, "Do not apply the tax.")
	f.StringVar(&p.discount, "discount", "0", "Discount amount deducted from the total.")
}

// pricing returns the rate and discount to apply in shop.
func (p *pricingFlags) pricing(shop *kasir.Shop) (kasir.Rate, kasir.Money, error) {
	rate := shop.TaxRate()
	switch {
	case p.noTax:
		rate = kasir.R(0)
	case p.rate != "":
		r, err := kasir.ParseRate(p.rate)
		if err != nil {
			return rate, kasir.Money{}, fmt.Errorf("invalid tax rate %q: %w", p.rate, err)
		}
		rate = r
	}
	discount, err := kasir.ParseMoney(p.discount, shop.Currency())
	if err != nil {
		return rate, discount, fmt.Errorf("invalid discount %q: %w", p.discount, err)
	}
	return rate, discount, nil
}

type sellCmd struct{ pricingFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell products and print the receipt" }
func (*sellCmd) Usage() string {
	return `ksr sell [-tax-rate <rate> | -no-tax] [-discount <amount>] <id>[x<qty>]...

  Sells the listed products, e.g. 'ksr sell 1x2 3' sells two units of product 1
  and one of product 3, then prints the receipt.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.pricingFlags.set(f) }

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one product is required")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		rate, discount, err := c.pricing(a.shop)
		if err != nil {
			return err
		}
		cart := a.shop.NewCart()
		for _, arg := range f.Args() {
			id, qty, err := parseItem(arg)
			if err != nil {
				return err
			}
			if err := fill(a.shop, cart, id, qty); err != nil {
				return err
			}
		}
		tx, err := a.shop.Checkout(ctx, cart, rate, discount)
		if err != nil && tx.ID == "" {
			return err
		}
		printMarkdown(renderer.RenderReceipt(a.shop.Name(), tx, a.shop.Location()))
		return err
	})
}

// fill adds qty units of product id to cart, warning when the stock is short.
func fill(shop *kasir.Shop, cart *kasir.Cart, id, qty int) error {
	p, err := shop.Product(id)
	if err != nil {
		return err
	}
	for range qty {
		if !cart.AddItem(p) {
			fmt.Fprintf(stderr, "Warning: only %d of %s in stock\n", cart.Qty(id), p.Name)
			break
		}
	}
	return nil
}

type receiptCmd struct{}

func (*receiptCmd) Name() string     { return "receipt" }
func (*receiptCmd) Synopsis() string { return "print the receipt of a sale" }
func (*receiptCmd) Usage() string {
	return `ksr receipt [<transaction id>]

  Prints the receipt of a sale, the last one by default.
`
}

func (*receiptCmd) SetFlags(f *flag.FlagSet) {}

func (c *receiptCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		var tx kasir.Transaction
		ledger := a.shop.Ledger()
		if f.NArg() == 0 {
			recent := ledger.Recent()
			if len(recent) == 0 {
				return errors.New("no sale yet")
			}
			tx = recent[0]
		} else {
			var ok bool
			if tx, ok = ledger.Get(f.Arg(0)); !ok {
				return fmt.Errorf("%w: transaction %s", kasir.ErrNotFound, f.Arg(0))
			}
		}
		printMarkdown(renderer.RenderReceipt(a.shop.Name(), tx, a.shop.Location()))
		return nil
	})
}

type historyCmd struct {
	period string
	on     string
	last   int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list the sales" }
func (*historyCmd) Usage() string {
	return `ksr history [-period <period> [-on <date>]] [-n <count>]

  Lists the sales, most recent first. With -period, lists the sales of the
  day, week, month or year containing -on (today by default).
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "", "Period to list: daily, weekly, monthly or yearly.")
	f.StringVar(&c.on, "on", "", "A day of the period, YYYY-MM-DD. Defaults to today.")
	f.IntVar(&c.last, "n", 0, "List only the n most recent sales.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.on != "" && c.period == "" {
		c.period = "daily"
	}
	return run(ctx, func(a *app) error {
		h := renderer.History{Loc: a.shop.Location()}
		ledger := a.shop.Ledger()
		if c.period == "" {
			h.Transactions = ledger.Recent()
		} else {
			period, err := date.ParsePeriod(c.period)
			if err != nil {
				return err
			}
			on := a.shop.Today()
			if c.on != "" {
				if on, err = date.Parse(c.on); err != nil {
					return err
				}
			}
			r := date.NewRange(on, period)
			for _, tx := range ledger.Transactions(kasir.InRange(r, a.shop.Location())) {
				h.Transactions = append(h.Transactions, tx)
			}
			slices.Reverse(h.Transactions)
			h.Title = "Sales " + r.Identifier()
		}
		if c.last > 0 && len(h.Transactions) > c.last {
			h.Transactions = h.Transactions[:c.last]
		}
		printMarkdown(renderer.RenderHistory(h))
		return nil
	})
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the sales as CSV" }
func (*exportCmd) Usage() string {
	return `ksr export [-o <file>]

  Writes every sale as CSV (ID,Date,Total,Items) to the standard output or a file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the standard output.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		if c.output == "" {
			return a.shop.Export(stdout)
		}
		file, err := os.Create(c.output)
		if err != nil {
			return err
		}
		if err := a.shop.Export(file); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Exported %d sales to %s\n", a.shop.Ledger().Len(), c.output)
		return nil
	})
}
