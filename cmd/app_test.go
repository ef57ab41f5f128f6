package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lotwise/taxlot"
)

// withHistory points the global history flag at a file holding the given
// transactions for the duration of the test.
func withHistory(t *testing.T, txs []taxlot.Transaction) {
	t.Helper()
	var buf bytes.Buffer
	if err := taxlot.EncodeHistory(&buf, txs); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "history.jsonl")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	old := *historyFile
	*historyFile = path
	t.Cleanup(func() { *historyFile = old })
}

func TestBuildWallet(t *testing.T) {
	day := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	withHistory(t, []taxlot.Transaction{
		taxlot.NewDeposit(day, "d1", taxlot.V(100, "ADA"), taxlot.V(0, "ADA")),
		taxlot.NewTrade(day.AddDate(0, 1, 0), "t1", taxlot.V(40, "ADA"), taxlot.V(10, "ATOM"), taxlot.V(0, "ADA")),
	})

	w, err := buildWallet(false)
	if err != nil {
		t.Fatalf("buildWallet() error = %v", err)
	}
	if got := w.Available("ADA"); !got.Equal(taxlot.V(60, "ADA")) {
		t.Errorf("ADA available = %s, want 60 ADA", got)
	}
	if got := w.Available("ATOM"); !got.Equal(taxlot.V(10, "ATOM")) {
		t.Errorf("ATOM available = %s, want 10 ATOM", got)
	}
}

func TestBuildWallet_MissingHistory(t *testing.T) {
	old := *historyFile
	*historyFile = filepath.Join(t.TempDir(), "absent.jsonl")
	t.Cleanup(func() { *historyFile = old })

	if _, err := buildWallet(false); err == nil {
		t.Error("buildWallet() should fail on a missing history file")
	}
}

func TestBuildWallet_IncompleteHistoryNeedsTheFlag(t *testing.T) {
	day := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	withHistory(t, []taxlot.Transaction{
		taxlot.NewWithdrawal(day, "w1", taxlot.V(25, "ADA"), taxlot.V(0, "ADA")),
	})

	if _, err := buildWallet(false); err == nil {
		t.Error("buildWallet(false) should fail on a history that starts mid-stream")
	}
	w, err := buildWallet(true)
	if err != nil {
		t.Fatalf("buildWallet(true) error = %v", err)
	}
	if got := w.Available("ADA"); !got.IsZero() {
		t.Errorf("ADA available = %s, want 0 after the synthesized opening", got)
	}
}
