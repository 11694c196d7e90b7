package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/etnz/kasir"
	"github.com/etnz/kasir/renderer"
	"github.com/google/subcommands"
)

type productsCmd struct {
	search   string
	category string
	low      bool
}

func (*productsCmd) Name() string     { return "products" }
func (*productsCmd) Synopsis() string { return "list the products of the catalog" }
func (*productsCmd) Usage() string {
	return `ksr products [-search <text>] [-category <name>] [-low]

  Lists the products with their price and stock. Products below the restock
  threshold are highlighted.
`
}

func (c *productsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Case insensitive part of the product name.")
	f.StringVar(&c.category, "category", kasir.AllCategories, "Category of the products.")
	f.BoolVar(&c.low, "low", false, "List only the products to restock.")
}

func (c *productsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		view := renderer.CatalogView{
			Categories: a.shop.Categories(),
			Threshold:  a.shop.RestockThreshold(),
		}
		if c.low {
			view.Filter = fmt.Sprintf("stock below %d", view.Threshold)
			view.Products = kasir.LowStock(a.shop.Catalog(), view.Threshold)
		} else {
			filter := kasir.Filter{Search: c.search, Category: c.category}
			view.Filter = describe(filter)
			view.Products = a.shop.List(filter)
		}
		printMarkdown(renderer.RenderCatalog(view))
		return nil
	})
}

func describe(f kasir.Filter) string {
	var s string
	if f.Category != "" && f.Category != kasir.AllCategories {
		s = "category " + f.Category
	}
	if f.Search != "" {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("matching %q", f.Search)
	}
	return s
}

// productFlags are the flags editing a product.
type productFlags struct {
	name, price, stock, category, image string
}

func (p *productFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Name of the product.")
	f.StringVar(&p.price, "price", "", "Unit price, e.g. 18000.")
	f.StringVar(&p.stock, "stock", "", "Units in stock.")
	f.StringVar(&p.category, "category", "", "Category of the product.")
	f.StringVar(&p.image, "image", "", "Absolute URL of the product image.")
}

type addProductCmd struct{ productFlags }

func (*addProductCmd) Name() string     { return "add-product" }
func (*addProductCmd) Synopsis() string { return "add a product to the catalog" }
func (*addProductCmd) Usage() string {
	return `ksr add-product -name <name> -price <price> [-stock <n>] [-category <name>] [-image <url>]

  Adds a product to the catalog. Its id is assigned automatically.
`
}

func (c *addProductCmd) SetFlags(f *flag.FlagSet) { c.productFlags.set(f) }

func (c *addProductCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.price == "" {
		fmt.Fprintln(stderr, "Error: -name and -price are required")
		return subcommands.ExitUsageError
	}
	if c.stock == "" {
		c.stock = "0"
	}
	return run(ctx, func(a *app) error {
		fields, err := kasir.ParseProductFields(c.name, c.price, c.stock, c.category, c.image, a.shop.Currency())
		if err != nil {
			return err
		}
		p, err := a.shop.AddProduct(ctx, fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Added %s\n", p)
		return nil
	})
}

type editProductCmd struct{ productFlags }

func (*editProductCmd) Name() string     { return "edit-product" }
func (*editProductCmd) Synopsis() string { return "edit a product of the catalog" }
func (*editProductCmd) Usage() string {
	return `ksr edit-product [-name <name>] [-price <price>] [-stock <n>] [-category <name>] [-image <url>] <id>

  Edits the product <id>. Flags not given keep their current value.
`
}

func (c *editProductCmd) SetFlags(f *flag.FlagSet) { c.productFlags.set(f) }

func (c *editProductCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one product id is required")
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		p, err := a.shop.Product(id)
		if err != nil {
			return err
		}
		// start from the current values, overridden by the flags set
		name, price, stock, category, image := p.Name, p.Price.Decimal().String(), strconv.Itoa(p.Stock), p.Category, p.Image
		f.Visit(func(fl *flag.Flag) {
			switch fl.Name {
			case "name":
				name = c.name
			case "price":
				price = c.price
			case "stock":
				stock = c.stock
			case "category":
				category = c.category
			case "image":
				image = c.image
			}
		})
		fields, err := kasir.ParseProductFields(name, price, stock, category, image, a.shop.Currency())
		if err != nil {
			return err
		}
		if err := a.shop.UpdateProduct(ctx, id, fields); err != nil {
			return err
		}
		p, _ = a.shop.Product(id)
		fmt.Fprintf(stdout, "Updated %s\n", p)
		return nil
	})
}

type removeProductCmd struct{}

func (*removeProductCmd) Name() string     { return "rm-product" }
func (*removeProductCmd) Synopsis() string { return "remove products from the catalog" }
func (*removeProductCmd) Usage() string {
	return `ksr rm-product <id>...

  Removes the products. Past sales keep a copy of the products they sold.
`
}

func (*removeProductCmd) SetFlags(f *flag.FlagSet) {}

func (c *removeProductCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one product id is required")
		return subcommands.ExitUsageError
	}
	ids := make([]int, 0, f.NArg())
	for _, arg := range f.Args() {
		id, err := parseID(arg)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		ids = append(ids, id)
	}
	return run(ctx, func(a *app) error {
		for _, id := range ids {
			p, err := a.shop.Product(id)
			if err != nil {
				fmt.Fprintf(stderr, "Warning: %v\n", err)
				continue
			}
			if err := a.shop.RemoveProduct(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Removed %s\n", p)
		}
		return nil
	})
}

type restockCmd struct{}

func (*restockCmd) Name() string     { return "restock" }
func (*restockCmd) Synopsis() string { return "add units to the stock of a product" }
func (*restockCmd) Usage() string {
	return `ksr restock <id> <qty>

  Adds <qty> units to the stock of product <id>.
`
}

func (*restockCmd) SetFlags(f *flag.FlagSet) {}

func (c *restockCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(stderr, "Error: a product id and a quantity are required")
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	qty, err := strconv.Atoi(f.Arg(1))
	if err != nil || qty <= 0 {
		fmt.Fprintf(stderr, "Error: invalid quantity %q\n", f.Arg(1))
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		p, err := a.shop.Restock(ctx, id, qty)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Restocked %s\n", p)
		return nil
	})
}
