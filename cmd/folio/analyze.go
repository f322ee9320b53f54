package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/app"
)

// analyzeCmd runs the offline analysis path: metrics from persisted history,
// no network calls, no email.
type analyzeCmd struct {
	config string
	date   string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "compute performance metrics from persisted history" }
func (*analyzeCmd) Usage() string {
	return `folio analyze [-config <path>] [-d <date>]

  Computes monthly returns and risk metrics from the persisted performance
  history without touching the network, exports the tables to the output
  workbook, and renders the history chart. When no history has been persisted
  a synthetic backfill is generated and clearly flagged.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "Path to config file")
	f.StringVar(&c.date, "d", "", "As-of date (YYYY-MM-DD, defaults to today)")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	asOf := time.Now()
	if c.date != "" {
		parsed, err := time.Parse("2006-01-02", c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad date %q: %v\n", c.date, err)
			return subcommands.ExitUsageError
		}
		asOf = parsed
	}

	a, err := app.NewApp(c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.RunAnalyze(ctx, asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	risk, monthly := res.Risk, res.Monthly

	if res.History.Synthetic {
		fmt.Println("NOTE: history is a synthetic backfill, not real market data.")
		fmt.Println()
	}

	fmt.Printf("Performance analysis (%d observation days)\n", risk.ObservationDays)
	fmt.Printf("  Total return:          %+.2f%%\n", risk.TotalReturnPct)
	fmt.Printf("  Annualized return:     %+.2f%%\n", risk.AnnualizedReturnPct)
	fmt.Printf("  Annualized volatility: %.2f%%\n", risk.AnnualizedVolatilityPct)
	if risk.SharpeDefined && !math.IsNaN(risk.SharpeRatio) {
		fmt.Printf("  Sharpe ratio:          %.2f\n", risk.SharpeRatio)
	} else {
		fmt.Printf("  Sharpe ratio:          undefined (flat series)\n")
	}
	fmt.Printf("  Max drawdown:          %.2f%%\n", risk.MaxDrawdownPct)
	fmt.Printf("  Best day:              %+.2f%%\n", risk.BestDayPct)
	fmt.Printf("  Worst day:             %+.2f%%\n", risk.WorstDayPct)
	fmt.Printf("  Positive days:         %.1f%%\n", risk.PositiveDayPct)
	if risk.DroppedSteps > 0 {
		fmt.Printf("  Dropped return steps:  %d (zero-base)\n", risk.DroppedSteps)
	}

	if len(monthly) > 0 {
		fmt.Println("\nMonthly performance:")
		for _, m := range monthly {
			fmt.Printf("  %-9s cumulative %+.2f%%  monthly %+.2f%%\n",
				m.Label(), m.Snapshot.TotalPLPercentage, m.MonthlyReturnPct)
		}
	}

	if len(res.Charts) > 0 {
		fmt.Println("\nCharts:")
		for _, ch := range res.Charts {
			fmt.Printf("  %s\n", ch.Path)
		}
	}
	if len(res.Degraded) > 0 {
		fmt.Printf("\nDegraded stages: %v\n", res.Degraded)
	} else {
		fmt.Printf("\nTables exported to %s\n", a.Config.Storage.OutputPath)
	}

	return subcommands.ExitSuccess
}
