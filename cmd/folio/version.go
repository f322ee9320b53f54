package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/common"
)

// versionCmd prints the build version.
type versionCmd struct{}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print version information" }
func (*versionCmd) Usage() string {
	return `folio version

  Prints version, build, and commit information.
`
}

func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (*versionCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	fmt.Printf("folio %s\n", common.CurrentBuild())
	return subcommands.ExitSuccess
}
