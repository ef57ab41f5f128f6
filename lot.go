package taxlot

// Lot is a quantity of one currency created by exactly one transaction. A lot
// is mutable only by appending deductions; it is never freed, even fully
// consumed lots keep their ancestry queryable.
type Lot struct {
	Total  Value
	Origin Transaction

	// Deductions records every later consumption of this lot, in order.
	Deductions []*Deduction

	// Source is a back-reference (not an ownership edge) to the lot this one
	// was converted from, nil for lots minted by deposits and rewards.
	Source *Lot
}

// Deduction records that a transaction consumed part or all of a lot's
// remaining balance. Dest is the lot the consumed value was converted into,
// nil for withdrawals and fee burns where value leaves the system.
type Deduction struct {
	Value  Value
	Tx     Transaction
	Source *Lot
	Dest   *Lot
}

func newLot(total Value, origin Transaction, source *Lot) *Lot {
	return &Lot{Total: total, Origin: origin, Source: source}
}

// Available returns what is left of the lot: total minus all deductions.
func (l *Lot) Available() Value {
	rem := l.Total.Quantity()
	for _, d := range l.Deductions {
		rem = rem.Sub(d.Value.Quantity())
	}
	return V(rem, l.Total.Currency())
}

// Rewarded reports whether the lot originates from a staking reward and thus
// carries a zero cost basis.
func (l *Lot) Rewarded() bool { return l.Origin.Kind == Staking }

// deduct appends a consumption of v to the lot. Over-deduction and currency
// mixups are internal invariant violations, not user errors.
func (l *Lot) deduct(v Value, tx Transaction, dest *Lot) (*Deduction, error) {
	if v.Currency() != l.Total.Currency() {
		return nil, invariantf("deduct", "cannot deduct %s from a %s lot", v, l.Total.Currency())
	}
	if l.Available().LessThan(v) {
		return nil, invariantf("deduct", "deducting %s exceeds available %s", v, l.Available())
	}
	d := &Deduction{Value: v, Tx: tx, Source: l, Dest: dest}
	l.Deductions = append(l.Deductions, d)
	return d, nil
}

// Root walks the Source chain back to the lot's ultimate ancestor, the lot
// minted by a deposit, reward, or synthesized opening balance.
func (l *Lot) Root() *Lot {
	r := l
	for r.Source != nil {
		r = r.Source
	}
	return r
}

// OriginalQuantity traces the lot back through its conversion chain and
// returns the quantity of the root currency this lot descends from. For a lot
// minted by trading a whole deposit away, that is the deposited quantity; for
// a partial conversion it is the consumed share of it.
func (l *Lot) OriginalQuantity() Value {
	if l.Source == nil {
		return l.Total
	}
	mint := l.mintingDeduction()
	if mint == nil {
		// A Source without a matching deduction cannot be built through Stack.
		panic(invariantf("lineage", "lot has source but no minting deduction"))
	}
	share := mint.Value.Quantity().Div(l.Source.Total.Quantity())
	return l.Source.OriginalQuantity().Scale(share)
}

// mintingDeduction finds the deduction on the source lot that produced l.
func (l *Lot) mintingDeduction() *Deduction {
	for _, d := range l.Source.Deductions {
		if d.Dest == l {
			return d
		}
	}
	return nil
}

func (l *Lot) String() string {
	a := l.Available()
	return a.Currency() + " " + a.Quantity().String() + " / " + l.Total.Quantity().String()
}
