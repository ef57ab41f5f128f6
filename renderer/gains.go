// Package renderer turns reports into markdown strings, ready to print raw or
// through a terminal renderer.
package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotwise/taxlot"
)

// RealizedMarkdown renders a realized gains report, one section per year.
func RealizedMarkdown(report *taxlot.RealizedReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Realized Gains Report (%s)\n\n", report.Fiat)

	for _, year := range report.Years() {
		fmt.Fprintf(&b, "## %d\n\n", year)
		fmt.Fprintln(&b, "| Acquired | Disposed | Consumed | Proceeds | Cost | Gross | Gain |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|")

		for _, e := range report.Entries {
			if e.DisposedOn.Year() != year {
				continue
			}
			consumed := e.Consumed.String()
			if e.Reward {
				consumed = "staking"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				e.AcquiredOn.Format("2006-01-02"),
				e.DisposedOn.Format("2006-01-02"),
				consumed,
				e.Proceeds.String(),
				e.Cost.String(),
				e.Gross.String(),
				e.Gain.SignedString(),
			)
		}
		fmt.Fprintf(&b, "\nTrading gain: **%s**", report.TradingGain(year).SignedString())
		fmt.Fprintf(&b, " · Staking income: **%s**", report.RewardIncome(year).SignedString())
		fmt.Fprintf(&b, " · Total: **%s**\n\n", report.TotalGain(year).SignedString())
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(&b, "## Skipped\n\n%d entries could not be valued:\n\n", len(report.Skipped))
		for _, err := range report.Skipped {
			fmt.Fprintf(&b, "- %v\n", err)
		}
	}

	return b.String()
}

// UnrealizedMarkdown renders the open positions and their paper gains.
func UnrealizedMarkdown(report *taxlot.UnrealizedReport, asOf time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Unrealized Gains as of %s (%s)\n\n", asOf.Format("2006-01-02"), report.Fiat)
	fmt.Fprintln(&b, "| Currency | Held | Cost | Market | Gain |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")

	for _, p := range report.Positions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			p.Currency,
			p.Held.Quantity(),
			p.Cost.String(),
			p.Market.String(),
			p.Gain.SignedString(),
		)
	}
	fmt.Fprintf(&b, "| **Total** | | | | **%s** |\n", report.TotalGain().SignedString())

	if len(report.Skipped) > 0 {
		fmt.Fprintf(&b, "\n%d lots could not be valued.\n", len(report.Skipped))
	}

	return b.String()
}
