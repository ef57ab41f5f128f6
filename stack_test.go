package taxlot

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStack_Pull_FIFOTouchesOldestOnly(t *testing.T) {
	s := NewStack("ADA")
	first := s.Push(ada(100), NewDeposit(on(2021, time.January, 1), "d1", ada(100), none("ADA")))
	second := s.Push(ada(100), NewDeposit(on(2021, time.February, 1), "d2", ada(100), none("ADA")))

	withdrawal := NewWithdrawal(on(2021, time.March, 1), "w1", ada(30), none("ADA"))
	if _, _, err := s.Pull(ada(30), withdrawal, false); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}

	if got := first.Available(); !got.Equal(ada(70)) {
		t.Errorf("oldest lot available = %s, want 70 ADA", got)
	}
	if got := second.Available(); !got.Equal(ada(100)) {
		t.Errorf("newest lot available = %s, want 100 ADA untouched", got)
	}
	if len(second.Deductions) != 0 {
		t.Errorf("newest lot has %d deductions, want 0", len(second.Deductions))
	}
}

func TestStack_Pull_InsufficientFunds(t *testing.T) {
	s := NewStack("ADA")
	s.Push(ada(99), NewDeposit(on(2021, time.January, 1), "d1", ada(99), none("ADA")))

	_, _, err := s.Pull(ada(100), NewWithdrawal(on(2021, time.February, 1), "w1", ada(100), none("ADA")), false)

	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Pull() error = %v, want *InsufficientFundsError", err)
	}
	if insufficient.Currency != "ADA" {
		t.Errorf("Currency = %s, want ADA", insufficient.Currency)
	}
	if !insufficient.Shortfall().Equal(decimal.NewFromInt(1)) {
		t.Errorf("Shortfall() = %s, want 1", insufficient.Shortfall())
	}
	// a failed pull must not have deducted anything
	if got := s.Available(); !got.Equal(ada(99)) {
		t.Errorf("Available() after failed pull = %s, want 99 ADA", got)
	}
}

func TestStack_Pull_ToleratesDustShortfall(t *testing.T) {
	s := NewStack("ADA")
	s.Push(ada(99.9995), NewDeposit(on(2021, time.January, 1), "d1", ada(99.9995), none("ADA")))

	if _, _, err := s.Pull(ada(100), NewWithdrawal(on(2021, time.February, 1), "w1", ada(100), none("ADA")), false); err != nil {
		t.Fatalf("Pull() within epsilon error = %v", err)
	}
	if got := s.Available(); !got.IsZero() {
		t.Errorf("Available() = %s, want 0", got)
	}
}

func TestStack_Pull_Conservation(t *testing.T) {
	// three lots of uneven sizes, pull across all of them
	s := NewStack("ADA")
	for i, q := range []float64{12.5, 0.75, 86.75} {
		date := on(2021, time.January, 1+i)
		s.Push(ada(q), NewDeposit(date, "d", ada(q), none("ADA")))
	}

	trade := NewTrade(on(2021, time.February, 1), "t1", ada(100), btc(0.0025), none("ADA"))
	produced, _, err := s.Pull(ada(100), trade, true)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if len(produced) != 3 {
		t.Fatalf("Pull() produced %d lots, want 3", len(produced))
	}

	total := decimal.Zero
	for _, l := range produced {
		if l.Total.Currency() != "BTC" {
			t.Errorf("produced lot currency = %s, want BTC", l.Total.Currency())
		}
		if l.Source == nil {
			t.Error("produced lot has no source back-reference")
		}
		total = total.Add(l.Total.Quantity())
	}
	// sum of produced lots == pulled quantity * conversion rate, within epsilon
	want := decimal.NewFromFloat(0.0025)
	if total.Sub(want).Abs().GreaterThan(decimal.New(1, -12)) {
		t.Errorf("produced total = %s, want %s", total, want)
	}
}

func TestStack_Pull_DeductionsCarryDest(t *testing.T) {
	s := NewStack("ADA")
	lot := s.Push(ada(100), NewDeposit(on(2021, time.January, 1), "d1", ada(100), none("ADA")))

	trade := NewTrade(on(2021, time.February, 1), "t1", ada(40), btc(0.001), none("ADA"))
	produced, taken, err := s.Pull(ada(40), trade, true)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}

	if len(lot.Deductions) != 1 {
		t.Fatalf("source lot has %d deductions, want 1", len(lot.Deductions))
	}
	if len(taken) != 1 || taken[0] != lot.Deductions[0] {
		t.Fatal("Pull() did not return the deduction it recorded")
	}
	d := lot.Deductions[0]
	if d.Dest != produced[0] {
		t.Error("deduction dest is not the produced lot")
	}
	if !d.Value.Equal(ada(40)) {
		t.Errorf("deduction value = %s, want 40 ADA", d.Value)
	}
	if got := lot.Available(); !got.Equal(ada(60)) {
		t.Errorf("source lot available = %s, want 60 ADA", got)
	}
}

func TestStack_Pull_WrongCurrencyIsInvariant(t *testing.T) {
	s := NewStack("ADA")
	_, _, err := s.Pull(btc(1), NewWithdrawal(on(2021, time.January, 1), "w1", btc(1), none("BTC")), false)
	var invariant *InvariantError
	if !errors.As(err, &invariant) {
		t.Fatalf("Pull() error = %v, want *InvariantError", err)
	}
}
