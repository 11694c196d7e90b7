package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/etnz/kasir"
	"github.com/etnz/kasir/renderer"
	"github.com/google/subcommands"
)

type registerCmd struct{}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "open the interactive cash register" }
func (*registerCmd) Usage() string {
	return `ksr register

  Opens an interactive cash register session. The PIN is asked first when the
  shop has one. Type 'help' for the list of commands.
`
}

func (*registerCmd) SetFlags(f *flag.FlagSet) {}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		r := bufio.NewReader(stdin)
		if err := unlock(a, r); err != nil {
			return err
		}
		return newSession(a.shop, r).loop(ctx)
	})
}

const registerHelp = `Commands:
  products [text]    list the products, optionally matching text
  add <id> [qty]     add units of a product to the cart
  dec <id>           remove one unit from the cart
  rm <id>            remove a product from the cart
  clear              empty the cart
  tax on|off         apply the tax or not
  discount <amount>  set the discount of the sale
  cart               show the cart
  pay                sell the cart and print the receipt
  quit               close the register
`

// session is a cash register session: one cart sold at a time.
type session struct {
	shop     *kasir.Shop
	r        *bufio.Reader
	cart     *kasir.Cart
	tax      bool
	discount kasir.Money
}

func newSession(shop *kasir.Shop, r *bufio.Reader) *session {
	return &session{
		shop:     shop,
		r:        r,
		cart:     shop.NewCart(),
		tax:      true,
		discount: kasir.M(0, shop.Currency()),
	}
}

func (s *session) rate() kasir.Rate {
	if s.tax {
		return s.shop.TaxRate()
	}
	return kasir.R(0)
}

var errQuit = errors.New("quit")

func (s *session) loop(ctx context.Context) error {
	fmt.Fprintf(stdout, "%s register. Type 'help' for the commands.\n", s.shop.Name())
	for {
		line, err := readLine(s.r, "> ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		err = s.handle(ctx, strings.Fields(line))
		if errors.Is(err, errQuit) {
			return nil
		}
		if errors.Is(err, kasir.ErrPersist) {
			// the sale is recorded but not saved, later saves may succeed
			fmt.Fprintf(stderr, "Warning: %v\n", err)
			continue
		}
		if err != nil {
			fmt.Fprintf(stdout, "%v\n", err)
		}
	}
}

// handle executes one command line.
func (s *session) handle(ctx context.Context, args []string) error {
	switch cmd, args := args[0], args[1:]; cmd {
	case "help", "?":
		fmt.Fprint(stdout, registerHelp)
	case "quit", "exit", "q":
		if !s.cart.IsEmpty() {
			fmt.Fprintf(stdout, "Cart abandoned (%d units).\n", s.cart.Units())
		}
		return errQuit
	case "products", "p":
		filter := kasir.Filter{Search: strings.Join(args, " ")}
		printMarkdown(renderer.RenderCatalog(renderer.CatalogView{
			Filter:     describe(filter),
			Products:   s.shop.List(filter),
			Categories: s.shop.Categories(),
			Threshold:  s.shop.RestockThreshold(),
		}))
	case "add", "a":
		if len(args) == 0 || len(args) > 2 {
			return errors.New("usage: add <id> [qty]")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty := 1
		if len(args) == 2 {
			if qty, err = strconv.Atoi(args[1]); err != nil || qty <= 0 {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}
		if err := fill(s.shop, s.cart, id, qty); err != nil {
			return err
		}
		s.show()
	case "dec", "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <id>", cmd)
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if cmd == "dec" {
			s.cart.DecrementItem(id)
		} else {
			s.cart.Remove(id)
		}
		s.show()
	case "clear":
		s.cart.Clear()
		s.show()
	case "tax":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return errors.New("usage: tax on|off")
		}
		s.tax = args[0] == "on"
		s.show()
	case "discount":
		if len(args) != 1 {
			return errors.New("usage: discount <amount>")
		}
		d, err := kasir.ParseMoney(args[0], s.shop.Currency())
		if err != nil {
			return fmt.Errorf("invalid discount %q", args[0])
		}
		if d.IsNegative() {
			return fmt.Errorf("invalid discount %q: cannot be negative", args[0])
		}
		s.discount = d
		s.show()
	case "cart", "c":
		s.show()
	case "pay":
		tx, err := s.shop.Checkout(ctx, s.cart, s.rate(), s.discount)
		if tx.ID == "" {
			return err
		}
		s.discount = kasir.M(0, s.shop.Currency())
		printMarkdown(renderer.RenderReceipt(s.shop.Name(), tx, s.shop.Location()))
		return err
	default:
		return fmt.Errorf("unknown command %q, type 'help' for the commands", cmd)
	}
	return nil
}

// show prints the cart and its price.
func (s *session) show() {
	b, err := s.shop.Price(s.cart, s.rate(), s.discount)
	if err != nil {
		fmt.Fprintf(stdout, "%v\n", err)
		return
	}
	printMarkdown(renderer.RenderCart(renderer.CartView{Lines: s.cart.Lines(), Rate: s.rate(), Price: b}))
}
