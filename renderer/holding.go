package renderer

import (
	"fmt"
	"strings"

	"github.com/lotwise/taxlot"
)

// HoldingsMarkdown renders the available balance of every currency the wallet
// ever held, dust and emptied currencies included.
func HoldingsMarkdown(w *taxlot.Wallet) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Holdings\n\n")
	fmt.Fprintln(&b, "| Currency | Available |")
	fmt.Fprintln(&b, "|:---|---:|")

	for _, cur := range w.Currencies() {
		fmt.Fprintf(&b, "| %s | %s |\n", cur, w.Available(cur).Quantity())
	}

	return b.String()
}

// LotsMarkdown renders every open lot of one currency with its cost-basis
// ancestry: the quantity of the root acquisition this slice descends from.
func LotsMarkdown(w *taxlot.Wallet, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Open Lots: %s\n\n", currency)
	fmt.Fprintln(&b, "| Origin | Kind | Total | Available | Descends From |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")

	for _, l := range w.Stack(currency).Lots {
		if !l.Available().IsPositive() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			l.Origin.Date.Format("2006-01-02"),
			l.Origin.Kind,
			l.Total.Quantity(),
			l.Available().Quantity(),
			l.OriginalQuantity().String(),
		)
	}

	return b.String()
}
