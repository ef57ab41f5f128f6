package taxlot

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Wallet owns one stack per currency and applies transactions to them in
// chronological order. It is the deterministic fold at the heart of the
// ledger: replaying the same history from an empty wallet always yields the
// same stacks.
type Wallet struct {
	stacks     map[string]*Stack
	applied    []Transaction
	deductions []*Deduction // in creation order, across all stacks

	// SynthesizeOpening selects the recovery policy for insufficient funds.
	// When set, the wallet synthesizes an implicit opening deposit equal to
	// the shortfall, dated at the triggering transaction, before pulling.
	// When unset (the default) the error propagates and the transaction has
	// no effect. Incomplete incremental histories want the former, a batch
	// replay of a full history wants the latter to surface ingestion bugs.
	SynthesizeOpening bool
}

// NewWallet creates an empty wallet.
func NewWallet() *Wallet {
	return &Wallet{stacks: make(map[string]*Stack)}
}

// Stack returns the stack for a currency, creating it on first use.
func (w *Wallet) Stack(currency string) *Stack {
	s, ok := w.stacks[currency]
	if !ok {
		s = NewStack(currency)
		w.stacks[currency] = s
	}
	return s
}

// Available returns the wallet-wide available balance of a currency.
func (w *Wallet) Available(currency string) Value {
	return w.Stack(currency).Available()
}

// Currencies returns every currency the wallet ever held, sorted.
func (w *Wallet) Currencies() []string {
	curs := make([]string, 0, len(w.stacks))
	for cur := range w.stacks {
		curs = append(curs, cur)
	}
	sort.Strings(curs)
	return curs
}

// Transactions returns every applied transaction, synthesized openings
// included, in application order.
func (w *Wallet) Transactions() []Transaction {
	return append([]Transaction(nil), w.applied...)
}

// Replay applies a full history in order.
func (w *Wallet) Replay(txs []Transaction) error {
	for _, tx := range txs {
		if err := w.Apply(tx); err != nil {
			return fmt.Errorf("applying %s %q on %s: %w", tx.Kind, tx.ID, tx.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

// Apply dispatches one transaction to the stacks it touches. A transaction's
// effects are all-or-nothing: availability across the source and fee stacks is
// checked before any lot is mutated, so a failed Apply leaves the wallet
// untouched.
func (w *Wallet) Apply(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := w.ensureFunds(tx); err != nil {
		return err
	}

	switch tx.Kind {
	case Deposit, Staking:
		w.Stack(tx.Destination.Currency()).Push(*tx.Destination, tx)
	case Withdrawal:
		_, ds, err := w.Stack(tx.Source.Currency()).Pull(*tx.Source, tx, false)
		if err != nil {
			return err
		}
		w.deductions = append(w.deductions, ds...)
	case Trade:
		produced, ds, err := w.Stack(tx.Source.Currency()).Pull(*tx.Source, tx, true)
		if err != nil {
			return err
		}
		w.deductions = append(w.deductions, ds...)
		dst := w.Stack(tx.Destination.Currency())
		for _, l := range produced {
			dst.PushLot(l)
		}
	default:
		return &UnknownKindError{Kind: tx.Kind}
	}

	// The fee value is consumed, not converted.
	if tx.Fee.IsPositive() {
		_, ds, err := w.Stack(tx.Fee.Currency()).Pull(tx.Fee, tx, false)
		if err != nil {
			return err
		}
		w.deductions = append(w.deductions, ds...)
	}

	w.applied = append(w.applied, tx)
	return nil
}

// ensureFunds verifies that every stack the transaction pulls from can cover
// its share, crediting the transaction's own destination when the fee shares
// its currency (destination lots land before the fee is pulled, so a deposit,
// reward or trade covers its own fee). Shortfalls either synthesize an opening
// deposit or fail, per SynthesizeOpening.
func (w *Wallet) ensureFunds(tx Transaction) error {
	needs := make(map[string]decimal.Decimal)
	if tx.Kind == Withdrawal || tx.Kind == Trade {
		needs[tx.Source.Currency()] = tx.Source.Quantity()
	}
	if tx.Fee.IsPositive() {
		needs[tx.Fee.Currency()] = needs[tx.Fee.Currency()].Add(tx.Fee.Quantity())
	}

	// deterministic order for error reporting and synthesized openings
	curs := make([]string, 0, len(needs))
	for cur := range needs {
		curs = append(curs, cur)
	}
	sort.Strings(curs)

	for _, cur := range curs {
		have := w.Stack(cur).Available().Quantity()
		if tx.Destination != nil && cur == tx.Destination.Currency() {
			have = have.Add(tx.Destination.Quantity())
		}
		short := needs[cur].Sub(have)
		if short.LessThanOrEqual(pullEpsilon) {
			continue
		}
		if !w.SynthesizeOpening {
			return &InsufficientFundsError{Currency: cur, Requested: needs[cur], Available: have}
		}
		opening := NewDeposit(tx.Date, "opening:"+tx.ID, V(short, cur), V(0, cur))
		w.Stack(cur).Push(*opening.Destination, opening)
		w.applied = append(w.applied, opening)
	}
	return nil
}

// Deductions returns every deduction recorded across all stacks, sorted by
// transaction date with creation order as the stable tie-break.
func (w *Wallet) Deductions() []*Deduction {
	ds := append([]*Deduction(nil), w.deductions...)
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Tx.Date.Before(ds[j].Tx.Date) })
	return ds
}

// OpenLots returns every lot with a positive available balance, the holdings
// unrealized gains are computed on.
func (w *Wallet) OpenLots() []*Lot {
	var open []*Lot
	for _, cur := range w.Currencies() {
		for _, l := range w.stacks[cur].Lots {
			if l.Available().IsPositive() {
				open = append(open, l)
			}
		}
	}
	return open
}

// RewardLots returns every lot minted by a staking reward, consumed or not.
func (w *Wallet) RewardLots() []*Lot {
	var rewards []*Lot
	for _, cur := range w.Currencies() {
		for _, l := range w.stacks[cur].Lots {
			if l.Rewarded() {
				rewards = append(rewards, l)
			}
		}
	}
	return rewards
}
