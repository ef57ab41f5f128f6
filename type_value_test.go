package taxlot

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValue_Scale_PreservesPrecision(t *testing.T) {
	v := V(decimal.RequireFromString("0.123456789012345678"), "BTC")
	scaled := v.Scale(decimal.RequireFromString("3"))

	want := decimal.RequireFromString("0.370370367037037034")
	if !scaled.Quantity().Equal(want) {
		t.Errorf("Scale() = %s, want %s", scaled.Quantity(), want)
	}
	if scaled.Currency() != "BTC" {
		t.Errorf("Scale() currency = %s, want BTC", scaled.Currency())
	}
	// the receiver is untouched
	if !v.Quantity().Equal(decimal.RequireFromString("0.123456789012345678")) {
		t.Errorf("Scale() mutated its receiver: %s", v)
	}
}

func TestValue_Equal(t *testing.T) {
	testCases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same quantity and currency", usd(10), usd(10), true},
		{"different representation same number", V(10.0, "USD"), V(10, "USD"), true},
		{"different quantity", usd(10), usd(11), false},
		{"different currency never equal", usd(10), btc(10), false},
		{"zero values of different currencies", usd(0), btc(0), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestValue_Add_WeakCurrency(t *testing.T) {
	sum := Value{}.Add(usd(5)).Add(usd(7))
	if !sum.Equal(usd(12)) {
		t.Errorf("Add() = %s, want 12 USD", sum)
	}

	defer func() {
		if recover() == nil {
			t.Error("Add() across currencies should panic")
		}
	}()
	usd(1).Add(btc(1))
}
