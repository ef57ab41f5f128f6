package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/lotwise/taxlot"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestRealizedMarkdown(t *testing.T) {
	report := &taxlot.RealizedReport{
		Fiat: "USD",
		Entries: []taxlot.RealizedEntry{
			{
				AcquiredOn: day(2021, 1, 10),
				DisposedOn: day(2021, 6, 1),
				Consumed:   taxlot.V(100, "ADA"),
				Proceeds:   taxlot.V(5, "ATOM"),
				Cost:       taxlot.M(100, "USD"),
				Gross:      taxlot.M(150, "USD"),
				Gain:       taxlot.M(50, "USD"),
			},
			{
				AcquiredOn: day(2022, 3, 3),
				DisposedOn: day(2022, 3, 3),
				Proceeds:   taxlot.V(2, "ATOM"),
				Cost:       taxlot.M(0, "USD"),
				Gross:      taxlot.M(20, "USD"),
				Gain:       taxlot.M(20, "USD"),
				Reward:     true,
			},
		},
	}

	got := RealizedMarkdown(report)

	for _, want := range []string{
		"## 2021",
		"## 2022",
		"| 2021-01-10 | 2021-06-01 | 100 ADA | 5 ATOM |",
		"| staking |",
		"Staking income: **+$20.00**",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RealizedMarkdown() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Skipped") {
		t.Errorf("RealizedMarkdown() has a Skipped section without skipped entries:\n%s", got)
	}
}

func TestUnrealizedMarkdown(t *testing.T) {
	report := &taxlot.UnrealizedReport{
		Fiat: "USD",
		Positions: []taxlot.UnrealizedPosition{
			{
				Currency: "ATOM",
				Held:     taxlot.V(20, "ATOM"),
				Cost:     taxlot.M(80, "USD"),
				Market:   taxlot.M(200, "USD"),
				Gain:     taxlot.M(120, "USD"),
			},
		},
	}

	got := UnrealizedMarkdown(report, day(2023, 1, 1))

	for _, want := range []string{
		"as of 2023-01-01",
		"| ATOM | 20 |",
		"**+$120.00**",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("UnrealizedMarkdown() missing %q in:\n%s", want, got)
		}
	}
}

func TestHoldingsAndLotsMarkdown(t *testing.T) {
	w := taxlot.NewWallet()
	history := []taxlot.Transaction{
		taxlot.NewDeposit(day(2021, 1, 1), "D1", taxlot.V(100, "ADA"), taxlot.V(0, "ADA")),
		taxlot.NewTrade(day(2021, 2, 1), "T1", taxlot.V(40, "ADA"), taxlot.V(10, "ATOM"), taxlot.V(0, "ADA")),
	}
	if err := w.Replay(history); err != nil {
		t.Fatal(err)
	}

	holdings := HoldingsMarkdown(w)
	for _, want := range []string{"| ADA | 60 |", "| ATOM | 10 |"} {
		if !strings.Contains(holdings, want) {
			t.Errorf("HoldingsMarkdown() missing %q in:\n%s", want, holdings)
		}
	}

	lots := LotsMarkdown(w, "ATOM")
	// the ATOM lot descends from the 40 ADA consumed by the trade
	if want := "| 2021-02-01 | trade | 10 | 10 | 40 ADA |"; !strings.Contains(lots, want) {
		t.Errorf("LotsMarkdown() missing %q in:\n%s", want, lots)
	}
}
