package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/kasir"
	"github.com/etnz/kasir/agent"
	"github.com/etnz/kasir/renderer"
	"github.com/etnz/kasir/weather"
	"github.com/google/subcommands"
)

type dashboardCmd struct {
	noWeather bool
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display the shop dashboard" }
func (*dashboardCmd) Usage() string {
	return `ksr dashboard [-no-weather]

  Displays the revenue, expense and net income, the sales of the last 7 days
  and the products to restock.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noWeather, "no-weather", false, "Do not look up the current weather.")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		d := a.shop.Dashboard()
		if w := a.cfg.Weather; w.Enabled && !c.noWeather {
			client := weather.NewClient()
			client.Latitude, client.Longitude = w.Latitude, w.Longitude
			client.Logger = a.logger
			if w.CacheTTL > 0 {
				client.HTTP = weather.Cached("", w.CacheTTL, a.logger)
			}
			d.Weather = client.Lookup(ctx, w.Timeout)
		}
		printMarkdown(renderer.RenderDashboard(d))
		return nil
	})
}

type expenseCmd struct{}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "display or set the operating expense" }
func (*expenseCmd) Usage() string {
	return `ksr expense [<amount>]

  Displays the operating expense deducted from the revenue, or sets it to <amount>.
`
}

func (*expenseCmd) SetFlags(f *flag.FlagSet) {}

func (c *expenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: at most one amount is expected")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		if f.NArg() == 1 {
			expense, err := kasir.ParseMoney(f.Arg(0), a.shop.Currency())
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", f.Arg(0), err)
			}
			if err := a.shop.SetExpense(ctx, expense); err != nil {
				return err
			}
		}
		fmt.Fprintf(stdout, "Expense: %s\n", a.shop.Expense())
		fmt.Fprintf(stdout, "Net income: %s\n", kasir.NetIncome(a.shop.Ledger(), a.shop.Expense()))
		return nil
	})
}

type adviseCmd struct {
	interactive bool
	model       string
}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "ask the AI advisor about sales and stock" }
func (*adviseCmd) Usage() string {
	return `ksr advise [-i] [-model <name>] [<question>...]

  Asks the Gemini advisor a question about the shop. The advisor reads the
  dashboard, the products and the sales but never changes them.
  Needs an API key: advisor.api_key, KASIR_ADVISOR_API_KEY or GEMINI_API_KEY.
`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "Start an interactive session.")
	f.StringVar(&c.model, "model", "", "Gemini model. Defaults to the configured model.")
}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		model := c.model
		if model == "" {
			model = a.cfg.Advisor.Model
		}
		client, err := agent.NewClient(ctx, a.cfg.Advisor.APIKey)
		if err != nil {
			return err
		}
		advisor := agent.New(stdout, stdin, a.shop, model, a.logger)
		if c.interactive {
			return advisor.Run(ctx, client, printMarkdown)
		}
		question := strings.Join(f.Args(), " ")
		if question == "" {
			question = agent.DefaultQuestion
		}
		answer, err := advisor.Ask(ctx, client, question)
		if err != nil {
			return err
		}
		printMarkdown(answer)
		return nil
	})
}
