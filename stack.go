package taxlot

import (
	"github.com/shopspring/decimal"
)

// pullEpsilon is the tolerated shortfall, in currency units, when allocating a
// pull across a stack. Exchange histories routinely under-report dust by less.
var pullEpsilon = decimal.New(1, -3)

// Stack is the ordered collection of lots of a single currency. Lots sit in
// creation order, and that order is what makes the oldest-first allocation
// deterministic and auditable.
type Stack struct {
	Currency string
	Lots     []*Lot
}

// NewStack creates an empty stack for a currency.
func NewStack(currency string) *Stack {
	return &Stack{Currency: currency}
}

// Push appends a new lot holding v, created by tx.
func (s *Stack) Push(v Value, tx Transaction) *Lot {
	l := newLot(v, tx, nil)
	s.Lots = append(s.Lots, l)
	return l
}

// PushLot appends an already-constructed lot, keeping the Source link
// established when the destination side of a trade minted it.
func (s *Stack) PushLot(l *Lot) {
	if l.Total.Currency() != s.Currency {
		panic(invariantf("push", "cannot push a %s lot on the %s stack", l.Total.Currency(), s.Currency))
	}
	s.Lots = append(s.Lots, l)
}

// Available returns the sum of all member lots' available balances.
func (s *Stack) Available() Value {
	sum := decimal.Zero
	for _, l := range s.Lots {
		sum = sum.Add(l.Available().Quantity())
	}
	return V(sum, s.Currency)
}

// Pull consumes v from the stack oldest-lot-first, appending a deduction to
// every visited lot. With produceDest set, each deduction also mints a
// destination lot worth the consumed quantity at the transaction's conversion
// rate; the minted lots are returned for the caller to push into the
// destination stack. The deductions are returned in the order they were
// taken. A stack only ever mutates its own lots.
//
// A shortfall beyond pullEpsilon returns an *InsufficientFundsError; the
// stack never fabricates funds, recovery is the caller's policy.
func (s *Stack) Pull(v Value, tx Transaction, produceDest bool) ([]*Lot, []*Deduction, error) {
	if v.Currency() != s.Currency {
		return nil, nil, invariantf("pull", "cannot pull %s from the %s stack", v, s.Currency)
	}

	// First pass: select target lots and check sufficiency.
	rem := v.Quantity()
	var targets []*Lot
	for _, l := range s.Lots {
		if rem.IsZero() {
			break
		}
		available := l.Available().Quantity()
		if available.IsPositive() {
			targets = append(targets, l)
			rem = rem.Sub(decimal.Min(rem, available))
		}
	}
	if rem.GreaterThan(pullEpsilon) {
		return nil, nil, &InsufficientFundsError{
			Currency:  s.Currency,
			Requested: v.Quantity(),
			Available: v.Quantity().Sub(rem),
		}
	}

	var rate decimal.Decimal
	if produceDest {
		if tx.Destination == nil || tx.Source == nil {
			return nil, nil, invariantf("pull", "transaction %q cannot produce destination lots", tx.ID)
		}
		rate = tx.Destination.Quantity().Div(tx.Source.Quantity())
	}

	// Second pass: deduct, minting destination lots along the way.
	rem = v.Quantity()
	var produced []*Lot
	var taken []*Deduction
	for _, target := range targets {
		amount := decimal.Min(rem, target.Available().Quantity())

		var dest *Lot
		if produceDest {
			dest = newLot(V(amount.Mul(rate), tx.Destination.Currency()), tx, target)
			produced = append(produced, dest)
		}
		d, err := target.deduct(V(amount, s.Currency), tx, dest)
		if err != nil {
			return nil, nil, err
		}
		taken = append(taken, d)

		rem = rem.Sub(amount)
		if rem.IsNegative() {
			return nil, nil, invariantf("pull", "over-deducted %s %s", rem.Neg(), s.Currency)
		}
	}
	if rem.GreaterThan(pullEpsilon) {
		return nil, nil, invariantf("pull", "allocated %s of requested %s %s",
			v.Quantity().Sub(rem), v.Quantity(), s.Currency)
	}
	return produced, taken, nil
}
