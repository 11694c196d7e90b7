// Package cmd implements the command line application of the shop.
package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/kasir"
	"github.com/etnz/kasir/config"
	"github.com/etnz/kasir/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// commands of the application, by group.
var commands = []struct {
	group string
	cmd   subcommands.Command
}{
	{"catalog", &productsCmd{}},
	{"catalog", &addProductCmd{}},
	{"catalog", &editProductCmd{}},
	{"catalog", &removeProductCmd{}},
	{"catalog", &restockCmd{}},

	{"sales", &sellCmd{}},
	{"sales", &registerCmd{}},
	{"sales", &receiptCmd{}},
	{"sales", &historyCmd{}},
	{"sales", &exportCmd{}},

	{"reports", &dashboardCmd{}},
	{"reports", &expenseCmd{}},
	{"reports", &adviseCmd{}},

	{"admin", &pinCmd{}},
	{"admin", &resetCmd{}},

	{"help", &topicCmd{}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, e := range commands {
		c.Register(e.cmd, e.group)
	}
}

// Has reports whether name is a command of the application.
func Has(name string) bool {
	for _, e := range commands {
		if e.cmd.Name() == name {
			return true
		}
	}
	return false
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ConfigFile = flag.String("config", "", "Path to the YAML configuration file. Defaults to "+config.DefaultPath+" when it exists.")
	Plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal.")
)

// standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app is the shop opened from the configuration.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  store.Store
	shop   *kasir.Shop
}

// openApp loads the configuration and opens the shop.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*ConfigFile)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	st, err := cfg.OpenStore(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("cannot open storage: %w", err)
	}
	opts, err := cfg.ShopOptions(logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	shop, err := kasir.Open(ctx, st, opts...)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: st, shop: shop}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("cannot close storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// run opens the app, executes f and reports its error.
func run(ctx context.Context, f func(*app) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	if err := f(a); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown prints md rendered for the terminal.
func printMarkdown(md string) {
	if *Plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

// parseID parses a product id argument.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

// parseItem parses "id" or "idxqty".
func parseItem(s string) (id, qty int, err error) {
	sid, sqty, found := strings.Cut(strings.ToLower(s), "x")
	if id, err = parseID(sid); err != nil {
		return 0, 0, err
	}
	qty = 1
	if found {
		if qty, err = strconv.Atoi(sqty); err != nil || qty <= 0 {
			return 0, 0, fmt.Errorf("invalid quantity in %q", s)
		}
	}
	return id, qty, nil
}

// readLine prompts and reads one line of r.
func readLine(r *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(stdout, prompt)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// unlock asks for the PIN when the shop has one.
func unlock(a *app, r *bufio.Reader) error {
	if !a.shop.HasPIN() {
		return nil
	}
	pin, err := readLine(r, "PIN: ")
	if err != nil {
		return fmt.Errorf("cannot read the PIN: %w", err)
	}
	return a.shop.Unlock(pin)
}
