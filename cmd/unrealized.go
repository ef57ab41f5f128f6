package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/lotwise/taxlot"
	"github.com/lotwise/taxlot/gecko"
	"github.com/lotwise/taxlot/renderer"
)

// unrealizedCmd holds the flags for the 'unrealized' subcommand.
type unrealizedCmd struct {
	fiat          string
	skipErrors    bool
	assumeOpening bool
}

func (*unrealizedCmd) Name() string     { return "unrealized" }
func (*unrealizedCmd) Synopsis() string { return "paper gains on open lots" }
func (*unrealizedCmd) Usage() string {
	return `tlt unrealized [-fiat <currency>] [-skip-errors] [-assume-opening]

  Values every lot still held at today's rate against its rate at origin and
  reports the difference, aggregated per currency.
`
}

func (c *unrealizedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fiat, "fiat", "", "Fiat currency of the report, the configured one by default")
	f.BoolVar(&c.skipErrors, "skip-errors", false, "Skip lots whose rate cannot be resolved instead of failing")
	f.BoolVar(&c.assumeOpening, "assume-opening", false, "Synthesize opening deposits for funds the history never saw acquired")
}

func (c *unrealizedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fiat := c.fiat
	if fiat == "" {
		fiat = cfg.Fiat
	}

	w, err := buildWallet(c.assumeOpening)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying history: %v\n", err)
		return subcommands.ExitFailure
	}

	now := time.Now().UTC()
	calc := taxlot.NewCalculator(gecko.NewService(), fiat)
	calc.SkipErrors = c.skipErrors
	report, err := calc.Unrealized(w, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing unrealized gains: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.UnrealizedMarkdown(report, now))
	return subcommands.ExitSuccess
}
