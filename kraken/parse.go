package kraken

import (
	"fmt"
	"log"

	"github.com/lotwise/taxlot"
	"github.com/shopspring/decimal"
)

// assetAliases maps Kraken's internal asset codes to plain currency symbols.
var assetAliases = map[string]string{
	"ZUSD":     "USD",
	"ZEUR":     "EUR",
	"USD.HOLD": "USD",
	"ATOM.S":   "ATOM",
}

func asset(code string) string {
	if alias, ok := assetAliases[code]; ok {
		return alias
	}
	return code
}

// ParseHistory turns raw ledger rows, sorted ascending by time, into
// normalized transactions. Trade and spend/receive row pairs are merged by
// refid into single trades; transfers are ignored; a trade row without its
// counterpart is logged and skipped; any other unknown row type is fatal.
func ParseHistory(rows []ledgerRow) ([]taxlot.Transaction, error) {
	var txs []taxlot.Transaction

	for idx := 0; idx < len(rows); idx++ {
		row := rows[idx]

		switch row.Type {
		case "deposit":
			if !row.Amount.IsPositive() {
				return nil, fmt.Errorf("deposit %s has non-positive amount %s", row.ID, row.Amount)
			}
			txs = append(txs, taxlot.NewDeposit(row.date(), row.RefID,
				taxlot.V(row.Amount, asset(row.Asset)),
				taxlot.V(row.Fee, asset(row.Asset))))

		case "withdrawal":
			if !row.Amount.IsNegative() {
				return nil, fmt.Errorf("withdrawal %s has non-negative amount %s", row.ID, row.Amount)
			}
			txs = append(txs, taxlot.NewWithdrawal(row.date(), row.RefID,
				taxlot.V(row.Amount.Neg(), asset(row.Asset)),
				taxlot.V(row.Fee, asset(row.Asset))))

		case "staking":
			if !row.Amount.IsPositive() {
				return nil, fmt.Errorf("staking %s has non-positive amount %s", row.ID, row.Amount)
			}
			txs = append(txs, taxlot.NewStaking(row.date(), row.RefID,
				taxlot.V(row.Amount, asset(row.Asset)),
				taxlot.V(row.Fee, asset(row.Asset))))

		case "spend", "trade":
			next, ok := counterpart(rows, idx)
			if !ok {
				if row.Type == "spend" {
					return nil, fmt.Errorf("spend %s (%s) has no receive counterpart", row.ID, row.RefID)
				}
				log.Printf("skipping: no pair for %s %s (%s)", row.Asset, row.Amount, row.RefID)
				continue
			}
			tx, err := mergeTradePair(row, next)
			if err != nil {
				return nil, err
			}
			txs = append(txs, tx)
			idx++

		case "receive":
			// always consumed together with its spend row
			return nil, fmt.Errorf("receive %s (%s) without a preceding spend", row.ID, row.RefID)

		case "transfer":
			// internal movement, no ledger effect

		default:
			return nil, &taxlot.UnknownKindError{Kind: taxlot.Kind(row.Type)}
		}
	}

	return txs, nil
}

// counterpart reports whether the row after idx closes the same refid.
func counterpart(rows []ledgerRow, idx int) (ledgerRow, bool) {
	if idx+1 >= len(rows) {
		return ledgerRow{}, false
	}
	next := rows[idx+1]
	if next.RefID != rows[idx].RefID {
		return ledgerRow{}, false
	}
	return next, true
}

// mergeTradePair merges the outgoing and incoming rows of one conversion into
// a single trade. The fee sits on whichever row charged it.
func mergeTradePair(out, in ledgerRow) (taxlot.Transaction, error) {
	if !out.Amount.IsNegative() || !in.Amount.IsPositive() {
		return taxlot.Transaction{}, fmt.Errorf("trade pair %s has amounts %s / %s, want negative then positive",
			out.RefID, out.Amount, in.Amount)
	}
	if out.Fee.IsPositive() && in.Fee.IsPositive() {
		return taxlot.Transaction{}, fmt.Errorf("trade pair %s charges a fee on both rows", out.RefID)
	}

	fee := taxlot.V(decimal.Zero, "")
	if out.Fee.IsPositive() {
		fee = taxlot.V(out.Fee, asset(out.Asset))
	} else if in.Fee.IsPositive() {
		fee = taxlot.V(in.Fee, asset(in.Asset))
	}

	return taxlot.NewTrade(out.date(), out.RefID,
		taxlot.V(out.Amount.Neg(), asset(out.Asset)),
		taxlot.V(in.Amount, asset(in.Asset)),
		fee), nil
}
