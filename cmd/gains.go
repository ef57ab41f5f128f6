package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/lotwise/taxlot"
	"github.com/lotwise/taxlot/gecko"
	"github.com/lotwise/taxlot/renderer"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	fiat          string
	year          int
	skipErrors    bool
	assumeOpening bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains and staking income per year" }
func (*gainsCmd) Usage() string {
	return `tlt gains [-fiat <currency>] [-year <year>] [-skip-errors] [-assume-opening]

  Replays the history and reports, per calendar year, the gain realized by
  every conversion and the income recognized on every staking reward.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fiat, "fiat", "", "Fiat currency of the report, the configured one by default")
	f.IntVar(&c.year, "year", 0, "Restrict the report to one calendar year")
	f.BoolVar(&c.skipErrors, "skip-errors", false, "Skip entries whose rate cannot be resolved instead of failing")
	f.BoolVar(&c.assumeOpening, "assume-opening", false, "Synthesize opening deposits for funds the history never saw acquired")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	calc := taxlot.NewCalculator(gecko.NewService(), fiat)
	calc.SkipErrors = c.skipErrors
	report, err := calc.Realized(w)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing gains: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.year != 0 {
		kept := report.Entries[:0]
		for _, e := range report.Entries {
			if e.DisposedOn.Year() == c.year {
				kept = append(kept, e)
			}
		}
		report.Entries = kept
	}

	printMarkdown(renderer.RealizedMarkdown(report))
	return subcommands.ExitSuccess
}
