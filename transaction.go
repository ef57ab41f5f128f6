package taxlot

import (
	"time"
)

// Kind is a typed string identifying the ledger event a transaction records.
type Kind string

const (
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
	Trade      Kind = "trade"
	Staking    Kind = "staking"
)

// Known reports whether k belongs to the recognized set.
func (k Kind) Known() bool {
	switch k {
	case Deposit, Withdrawal, Trade, Staking:
		return true
	}
	return false
}

// Transaction is one immutable ledger event. Deposits and staking rewards
// carry a destination only, withdrawals a source only, trades both. The fee
// currency is free, it need not match either side.
//
// Histories handed to a Wallet are assumed already sorted ascending by date,
// with ingestion order as the stable tie-break.
type Transaction struct {
	Date        time.Time
	Source      *Value
	Destination *Value
	Fee         Value
	Kind        Kind
	ID          string // exchange correlation id (refid)
}

// NewDeposit records funds entering the wallet from outside.
func NewDeposit(date time.Time, id string, destination, fee Value) Transaction {
	return Transaction{Date: date, Destination: &destination, Fee: fee, Kind: Deposit, ID: id}
}

// NewWithdrawal records funds leaving the wallet for good.
func NewWithdrawal(date time.Time, id string, source, fee Value) Transaction {
	return Transaction{Date: date, Source: &source, Fee: fee, Kind: Withdrawal, ID: id}
}

// NewTrade records a conversion of source into destination. Exchange rows that
// come in pairs (spend/receive) must already be merged into one trade.
func NewTrade(date time.Time, id string, source, destination, fee Value) Transaction {
	return Transaction{Date: date, Source: &source, Destination: &destination, Fee: fee, Kind: Trade, ID: id}
}

// NewStaking records a staking reward. Reward lots carry a zero cost basis,
// their full fiat value at receipt is income.
func NewStaking(date time.Time, id string, reward, fee Value) Transaction {
	return Transaction{Date: date, Destination: &reward, Fee: fee, Kind: Staking, ID: id}
}

// Validate checks that the transaction carries the fields its kind requires.
func (t Transaction) Validate() error {
	if !t.Kind.Known() {
		return &UnknownKindError{Kind: t.Kind}
	}
	switch t.Kind {
	case Deposit, Staking:
		if t.Destination == nil || t.Source != nil {
			return invariantf("validate", "%s %q must have destination only", t.Kind, t.ID)
		}
	case Withdrawal:
		if t.Source == nil || t.Destination != nil {
			return invariantf("validate", "withdrawal %q must have source only", t.ID)
		}
	case Trade:
		if t.Source == nil || t.Destination == nil {
			return invariantf("validate", "trade %q must have both source and destination", t.ID)
		}
	}
	return nil
}

// Equal reports whether two transactions are the same event.
func (t Transaction) Equal(o Transaction) bool {
	if t.Kind != o.Kind || t.ID != o.ID || !t.Date.Equal(o.Date) {
		return false
	}
	// zero fees compare equal whatever currency they were tagged with
	if !t.Fee.Equal(o.Fee) && !(t.Fee.IsZero() && o.Fee.IsZero()) {
		return false
	}
	return valuePtrEqual(t.Source, o.Source) && valuePtrEqual(t.Destination, o.Destination)
}

func valuePtrEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Year returns the calendar year gains of this transaction are bucketed into.
func (t Transaction) Year() int { return t.Date.Year() }
