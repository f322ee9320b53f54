package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/app"
)

// testCmd runs a cycle against mock prices: no network, no email.
type testCmd struct {
	config string
	bump   float64
}

func (*testCmd) Name() string     { return "test" }
func (*testCmd) Synopsis() string { return "run a dry cycle with mock prices" }
func (*testCmd) Usage() string {
	return `folio test [-config <path>] [-bump <pct>]

  Runs a full cycle against mock quotes derived from the purchase prices
  (purchase price shifted by -bump percent). No network calls, no email.
  Useful for verifying the pipeline end to end before configuring the feed.
`
}

func (c *testCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "Path to config file")
	f.Float64Var(&c.bump, "bump", 8.0, "Percent change applied to purchase prices for mock quotes")
}

func (c *testCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := app.NewApp(c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	positions, err := a.Storage.Workbook().LoadPositions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	mock := make(map[string]float64, len(positions))
	for _, p := range positions {
		mock[p.Symbol] = p.PurchasePrice * (1 + c.bump/100)
	}

	result, err := a.RunCycle(ctx, app.CycleOptions{
		MockPrices: mock,
		SkipEmail:  true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Dry run complete (mock prices at %+.1f%%)\n", c.bump)
	printCycleSummary(result)
	return subcommands.ExitSuccess
}
