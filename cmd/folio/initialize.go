package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/storage"
)

// initCmd writes a starter holdings workbook.
type initCmd struct {
	path string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a starter holdings workbook" }
func (*initCmd) Usage() string {
	return `folio init [-workbook <path>]

  Creates a holdings workbook with sample positions to edit. Refuses to
  overwrite an existing file.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "workbook", "sample_portfolio.xlsx", "Path for the new workbook")
}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := storage.CreateSampleWorkbook(c.path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created %s. Edit the Holdings sheet and run 'folio track'.\n", c.path)
	return subcommands.ExitSuccess
}
