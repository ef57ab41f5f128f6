package taxlot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// txJSON is the wire form of one transaction, one object per JSONL line.
type txJSON struct {
	Kind        Kind      `json:"kind"`
	Date        time.Time `json:"date"`
	ID          string    `json:"id,omitempty"`
	Source      *Value    `json:"source,omitempty"`
	Destination *Value    `json:"destination,omitempty"`
	Fee         *Value    `json:"fee,omitempty"`
}

// EncodeTransaction writes one transaction as a single JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	raw := txJSON{Kind: tx.Kind, Date: tx.Date, ID: tx.ID, Source: tx.Source, Destination: tx.Destination}
	if !tx.Fee.IsZero() {
		fee := tx.Fee
		raw.Fee = &fee
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// EncodeHistory writes a full history in JSONL, one transaction per line.
func EncodeHistory(w io.Writer, txs []Transaction) error {
	for _, tx := range txs {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeHistory reads a JSONL history and returns it validated and sorted
// ascending by date, file order as the stable tie-break.
func DecodeHistory(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var raw txJSON
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		tx := Transaction{Kind: raw.Kind, Date: raw.Date, ID: raw.ID, Source: raw.Source, Destination: raw.Destination}
		if raw.Fee != nil {
			tx.Fee = *raw.Fee
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}
