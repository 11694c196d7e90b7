package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/kasir/gate"
	"github.com/google/subcommands"
)

type pinCmd struct {
	clear bool
}

func (*pinCmd) Name() string     { return "pin" }
func (*pinCmd) Synopsis() string { return "set or clear the register PIN" }
func (*pinCmd) Usage() string {
	return `ksr pin [-clear]

  Sets the PIN asked when the register opens, or clears it. The current PIN
  is asked first.
`
}

func (c *pinCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "Remove the PIN.")
}

func (c *pinCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		r := bufio.NewReader(stdin)
		if err := unlock(a, r); err != nil {
			return err
		}
		if c.clear {
			if err := a.shop.ClearPIN(ctx); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "PIN cleared.")
			return nil
		}
		pin, err := readLine(r, "New PIN: ")
		if err != nil {
			return err
		}
		if err := gate.Validate(pin); err != nil {
			return err
		}
		again, err := readLine(r, "Repeat PIN: ")
		if err != nil {
			return err
		}
		if again != pin {
			return errors.New("the PINs do not match")
		}
		if err := a.shop.SetPIN(ctx, pin); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "PIN set.")
		return nil
	})
}

type resetCmd struct {
	yes bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "erase all the shop data" }
func (*resetCmd) Usage() string {
	return `ksr reset -yes

  Erases the products, sales, expense and PIN, and restores the default
  catalog. The current PIN is asked first.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm the reset.")
}

func (c *resetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(stderr, "Error: reset erases every sale, confirm with -yes")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		if err := unlock(a, bufio.NewReader(stdin)); err != nil {
			return err
		}
		if err := a.shop.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Shop reset.")
		return nil
	})
}
