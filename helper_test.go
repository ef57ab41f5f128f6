package taxlot

import (
	"time"
)

// helpers to build values and dates from consts in tests

func usd(q float64) Value  { return V(q, "USD") }
func btc(q float64) Value  { return V(q, "BTC") }
func ada(q float64) Value  { return V(q, "ADA") }
func atom(q float64) Value { return V(q, "ATOM") }

func none(cur string) Value { return V(0, cur) }

// on builds a timestamp at noon UTC of the given day.
func on(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
