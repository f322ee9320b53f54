package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
)

// trackCmd runs one full reporting cycle.
type trackCmd struct {
	config     string
	skipEmail  bool
	skipCharts bool
	quiet      bool
}

func (*trackCmd) Name() string     { return "track" }
func (*trackCmd) Synopsis() string { return "run one full reporting cycle" }
func (*trackCmd) Usage() string {
	return `folio track [-config <path>] [-no-email] [-no-charts] [-q]

  Loads holdings, fetches live quotes, values the portfolio, extends the
  performance history, computes risk metrics, persists the updated workbook,
  renders charts, and emails the report.
`
}

func (c *trackCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "Path to config file")
	f.BoolVar(&c.skipEmail, "no-email", false, "Skip email delivery")
	f.BoolVar(&c.skipCharts, "no-charts", false, "Skip chart rendering")
	f.BoolVar(&c.quiet, "q", false, "Suppress the startup banner")
}

func (c *trackCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := app.NewApp(c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if !c.quiet {
		common.PrintBanner(a.Config, a.Logger)
	}

	result, err := a.RunCycle(ctx, app.CycleOptions{
		SkipEmail:  c.skipEmail,
		SkipCharts: c.skipCharts,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printCycleSummary(result)
	return subcommands.ExitSuccess
}

// printCycleSummary writes a terminal summary of the cycle to stdout.
func printCycleSummary(result *app.CycleResult) {
	rep := result.Report
	snap := rep.Snapshot

	fmt.Printf("Portfolio valued %s\n", rep.GeneratedAt.Format("2006-01-02"))
	fmt.Printf("  Investment:    %.2f\n", snap.TotalInvestment)
	fmt.Printf("  Current value: %.2f\n", snap.TotalCurrentValue)
	fmt.Printf("  P&L:           %.2f (%+.2f%%)\n", snap.TotalPL, snap.TotalPLPercentage)

	if rep.PricesMissing > 0 {
		fmt.Printf("  Unpriced positions: %d\n", rep.PricesMissing)
	}
	for _, a := range rep.Alerts {
		fmt.Printf("  ALERT %s %+.2f%%\n", a.Symbol, a.PLPercentage)
	}
	for _, chart := range result.Charts {
		fmt.Printf("  Chart: %s\n", chart.Path)
	}
	if len(result.Degraded) > 0 {
		fmt.Printf("  Degraded stages: %v\n", result.Degraded)
	}
}
