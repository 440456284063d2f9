package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/analytics"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
)

type quoteCmd struct {
	app     *app
	asJSON  bool
	convert bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "resolve the current price of one or more tickers" }
func (*quoteCmd) Usage() string {
	return `folioctl quote [-json] [-convert] <ticker>...

  Tries the configured price providers in order and prints the first valid
  quote. When every provider fails a synthetic price is shown and flagged.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "Print the full resolution as JSON, including provider attempts.")
	f.BoolVar(&c.convert, "convert", false, "Also convert the price into the reporting currency.")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	container, err := c.app.wire(ctx)
	if err != nil {
		return c.app.fail(err)
	}

	tw := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', 0)
	if !c.asJSON {
		fmt.Fprintln(tw, "TICKER\tPRICE\tSOURCE\tCONVERTED")
	}
	for _, arg := range f.Args() {
		res, err := container.Resolver.Resolve(ctx, arg)
		if err != nil {
			return c.app.fail(fmt.Errorf("%s: %w", arg, err))
		}

		var conv *currency.Conversion
		if c.convert {
			v := container.Normalizer.Convert(ctx, res.Quote.Price, res.Quote.Currency)
			conv = &v
		}

		if c.asJSON {
			out := map[string]interface{}{"resolution": res, "synthetic": res.Synthetic()}
			if conv != nil {
				out["converted"] = conv
			}
			if err := writeJSON(c.app, out); err != nil {
				return c.app.fail(err)
			}
			continue
		}

		converted := "-"
		if conv != nil && !conv.Unconverted {
			converted = analytics.FormatMoney(conv.Amount, string(conv.Currency))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			res.Quote.Ticker,
			analytics.FormatMoney(res.Quote.Price, string(res.Quote.Currency)),
			res.Quote.Source,
			converted,
		)
	}
	if err := tw.Flush(); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type detectCmd struct {
	app *app
}

func (*detectCmd) Name() string     { return "detect" }
func (*detectCmd) Synopsis() string { return "print the trading currency inferred from each ticker" }
func (*detectCmd) Usage() string {
	return `folioctl detect <ticker>...
`
}

func (*detectCmd) SetFlags(*flag.FlagSet) {}

func (c *detectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	detector := currency.NewDetector()
	for _, arg := range f.Args() {
		ticker, err := domain.NormalizeTicker(arg)
		if err != nil {
			return c.app.fail(err)
		}
		fmt.Fprintf(c.app.out, "%s\t%s\n", ticker, detector.Detect(ticker))
	}
	return subcommands.ExitSuccess
}

type convertCmd struct {
	app  *app
	from string
	to   string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert an amount between two currencies" }
func (*convertCmd) Usage() string {
	return `folioctl convert -from <code> [-to <code>] <amount>

  -to defaults to the reporting currency. If no rate can be found the amount
  is printed unchanged and marked unconverted.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "USD", "Currency of the amount.")
	f.StringVar(&c.to, "to", "", "Target currency (defaults to the reporting currency).")
}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	amount, err := strconv.ParseFloat(f.Arg(0), 64)
	if err != nil {
		return c.app.fail(fmt.Errorf("invalid amount %q", f.Arg(0)))
	}

	container, err := c.app.wire(ctx)
	if err != nil {
		return c.app.fail(err)
	}

	to := domain.Currency(c.to)
	if c.to == "" {
		to = container.Normalizer.ReportingCurrency()
	}

	conv := container.Normalizer.ConvertBetween(ctx, amount, domain.Currency(c.from), to)
	line := fmt.Sprintf("%s = %s",
		analytics.FormatMoney(conv.Original, string(conv.From)),
		analytics.FormatMoney(conv.Amount, string(conv.Currency)),
	)
	if conv.Unconverted {
		line += " (unconverted: no rate available)"
	} else {
		line += fmt.Sprintf(" (rate %.6f, %s)", conv.Rate, conv.Source)
	}
	fmt.Fprintln(c.app.out, line)
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	app     *app
	account string
	asJSON  bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show an account's positions valued in the reporting currency" }
func (*summaryCmd) Usage() string {
	return `folioctl summary -account <id> [-json] [ticker]

  Without a ticker, every position of the account is summarized.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account whose lots are summarized (required).")
	f.BoolVar(&c.asJSON, "json", false, "Print summaries as JSON.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	container, err := c.app.wire(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	svc := container.PortfolioService

	var summaries []domain.PortfolioSummary
	var failures map[string]string
	if f.NArg() == 1 {
		summary, err := svc.Summary(ctx, c.account, f.Arg(0))
		if err != nil {
			return c.app.fail(err)
		}
		summaries = append(summaries, *summary)
	} else {
		batch, err := svc.Summaries(ctx, c.account)
		if err != nil {
			return c.app.fail(err)
		}
		summaries, failures = batch.Summaries, batch.Errors
	}

	if c.asJSON {
		if err := writeJSON(c.app, map[string]interface{}{"summaries": summaries, "errors": failures}); err != nil {
			return c.app.fail(err)
		}
		return subcommands.ExitSuccess
	}

	if len(summaries) == 0 && len(failures) == 0 {
		fmt.Fprintf(c.app.out, "No lots recorded for %s\n", c.account)
		return subcommands.ExitSuccess
	}

	tw := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tSHARES\tAVG PRICE\tPRICE\tVALUE\tPROFIT\tPROFIT %")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\t%s\t%s\t%s\n",
			s.Ticker,
			s.TotalShares,
			money(s.WeightedAveragePrice, s.ReportingCurrency),
			money(s.CurrentPrice, s.PriceCurrency),
			money(s.TotalValue, s.ReportingCurrency),
			money(s.TotalProfit, s.ReportingCurrency),
			percent(s.ProfitPercentage),
		)
	}
	if err := tw.Flush(); err != nil {
		return c.app.fail(err)
	}
	for _, s := range summaries {
		for _, w := range s.Warnings {
			fmt.Fprintf(c.app.errOut, "warning: %s: %s\n", s.Ticker, w)
		}
	}
	for ticker, msg := range failures {
		fmt.Fprintf(c.app.errOut, "error: %s: %s\n", ticker, msg)
	}
	return subcommands.ExitSuccess
}

func money(v *float64, c domain.Currency) string {
	if v == nil {
		return "-"
	}
	return analytics.FormatMoney(*v, string(c))
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func writeJSON(a *app, v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
