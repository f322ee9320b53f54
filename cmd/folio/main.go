// Command folio tracks a personal equity portfolio: it values holdings
// against live quotes, maintains a daily performance history, computes risk
// metrics, and delivers an HTML report with charts by email.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(&trackCmd{}, "")
	commander.Register(&analyzeCmd{}, "")
	commander.Register(&testCmd{}, "")
	commander.Register(&initCmd{}, "")
	commander.Register(&scheduleCmd{}, "")
	commander.Register(&versionCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
