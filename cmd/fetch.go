package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/lotwise/taxlot"
	"github.com/lotwise/taxlot/kraken"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	noCache bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download the Kraken ledger into the history file" }
func (*fetchCmd) Usage() string {
	return `tlt fetch [-no-cache]

  Downloads the full Kraken account ledger, normalizes it into transactions,
  and writes the history file in JSONL format. Raw ledger rows are cached
  locally so later runs only fetch what is new.

  Credentials come from the config file or from the TLT_KRAKEN_KEY and
  TLT_KRAKEN_SECRET environment variables.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noCache, "no-cache", false, "Ignore the raw ledger cache and refetch everything")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.KrakenKey == "" || cfg.KrakenSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: no Kraken credentials configured")
		return subcommands.ExitUsageError
	}

	client := kraken.New(cfg.KrakenKey, cfg.KrakenSecret)
	if !c.noCache && cfg.CacheDir != "" {
		client.CacheFile = filepath.Join(cfg.CacheDir, "tlt", "kraken-ledger.json")
	}

	txs, err := client.FetchHistory(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching history: %v\n", err)
		return subcommands.ExitFailure
	}

	out, err := os.Create(*historyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating history %q: %v\n", *historyFile, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := taxlot.EncodeHistory(out, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing history %q: %v\n", *historyFile, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Wrote %d transactions to %s\n", len(txs), *historyFile)
	return subcommands.ExitSuccess
}
