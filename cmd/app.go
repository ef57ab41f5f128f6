// Package cmd implements the CLI application to manage a crypto tax-lot ledger.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/lotwise/taxlot"
)

// Commands lists every subcommand. A main package registers them on a
// commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&fetchCmd{},
	&gainsCmd{},
	&unrealizedCmd{},
	&holdingsCmd{},
	&lotsCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var historyFile = flag.String("history-file", "history.jsonl", "Path to the transaction history file (JSONL format)")
var configFile = flag.String("config", "tlt.yaml", "Path to the configuration file")

// loadHistory reads and validates the whole transaction history.
func loadHistory() ([]taxlot.Transaction, error) {
	f, err := os.Open(*historyFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open history %q: %w", *historyFile, err)
	}
	defer f.Close()
	return taxlot.DecodeHistory(f)
}

// buildWallet replays the whole history into a fresh wallet.
func buildWallet(assumeOpening bool) (*taxlot.Wallet, error) {
	txs, err := loadHistory()
	if err != nil {
		return nil, err
	}
	w := taxlot.NewWallet()
	w.SynthesizeOpening = assumeOpening
	if err := w.Replay(txs); err != nil {
		return nil, err
	}
	return w, nil
}
