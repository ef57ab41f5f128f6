package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/lotwise/taxlot/renderer"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	assumeOpening bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "open lots of a currency with their ancestry" }
func (*lotsCmd) Usage() string {
	return `tlt lots [-assume-opening] <currency>...

  Lists the open lots of each given currency: when they were minted, what is
  left of them, and the original acquisition they descend from.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.assumeOpening, "assume-opening", false, "Synthesize opening deposits for funds the history never saw acquired")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one currency is required")
		return subcommands.ExitUsageError
	}

	w, err := buildWallet(c.assumeOpening)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying history: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, cur := range f.Args() {
		printMarkdown(renderer.LotsMarkdown(w, cur))
	}
	return subcommands.ExitSuccess
}
