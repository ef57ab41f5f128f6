package taxlot

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RateService looks up a conversion rate between two currencies at a point in
// time, returning the rate and how far the underlying data point is from the
// requested instant. Implementations must return (1, 0) without I/O when from
// and to are equal, and may cache, throttle or retry internally.
type RateService interface {
	Rate(at time.Time, from, to string, forceLive bool) (rate decimal.Decimal, staleness time.Duration, err error)
}

// DefaultStalenessLimit is how far a rate data point may sit from the
// requested instant before the calculator forces a live re-fetch.
const DefaultStalenessLimit = 48 * time.Hour

// Calculator walks a wallet's deduction graph and open lots to produce
// realized and unrealized gains in one fiat currency.
type Calculator struct {
	Rates RateService
	Fiat  string

	// StalenessLimit overrides DefaultStalenessLimit when positive.
	StalenessLimit time.Duration

	// SkipErrors selects the error policy: when set, a failing deduction or
	// lot is recorded on the report and computation continues; when unset the
	// first failure aborts.
	SkipErrors bool
}

// NewCalculator creates a calculator with the default staleness limit and the
// abort-on-error policy.
func NewCalculator(rates RateService, fiat string) *Calculator {
	return &Calculator{Rates: rates, Fiat: fiat}
}

func (c *Calculator) limit() time.Duration {
	if c.StalenessLimit > 0 {
		return c.StalenessLimit
	}
	return DefaultStalenessLimit
}

// rate resolves a fiat rate, forcing a live re-fetch once when the cached
// answer is too stale, and refusing to use a figure that stays stale.
func (c *Calculator) rate(at time.Time, currency string) (decimal.Decimal, error) {
	rate, staleness, err := c.Rates.Rate(at, currency, c.Fiat, false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate %s/%s at %s: %w", currency, c.Fiat, at.Format("2006-01-02"), err)
	}
	if staleness > c.limit() {
		rate, staleness, err = c.Rates.Rate(at, currency, c.Fiat, true)
		if err != nil {
			return decimal.Zero, fmt.Errorf("live rate %s/%s at %s: %w", currency, c.Fiat, at.Format("2006-01-02"), err)
		}
	}
	if staleness > c.limit() {
		return decimal.Zero, &StaleRateError{Currency: currency, At: at, Staleness: staleness, Limit: c.limit()}
	}
	return rate, nil
}

// RealizedEntry is the gain recognized on one deduction that converted value,
// or on one staking reward.
type RealizedEntry struct {
	AcquiredOn time.Time // origin date of the consumed lot, basis date
	DisposedOn time.Time // date of the disposing transaction
	Consumed   Value     // quantity pulled from the source lot
	Proceeds   Value     // the destination lot it became
	Cost       Money     // fiat value of Consumed at acquisition
	Gross      Money     // fiat value of Proceeds at disposal
	Gain       Money     // Gross - Cost
	Reward     bool      // staking income, zero basis
}

// RealizedReport buckets realized gains by the calendar year of the disposing
// transaction. Trade gains and staking income are kept apart but summable.
type RealizedReport struct {
	Fiat    string
	Entries []RealizedEntry
	Skipped []error // only populated under the skip-and-report policy
}

// Years returns every year with at least one entry, sorted.
func (r *RealizedReport) Years() []int {
	seen := make(map[int]bool)
	for _, e := range r.Entries {
		seen[e.DisposedOn.Year()] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// TradingGain totals the year's gains from conversions, rewards excluded.
func (r *RealizedReport) TradingGain(year int) Money {
	return r.total(year, false)
}

// RewardIncome totals the year's staking income.
func (r *RealizedReport) RewardIncome(year int) Money {
	total := M(0, r.Fiat)
	for _, e := range r.Entries {
		if e.Reward && e.DisposedOn.Year() == year {
			total = total.Add(e.Gain)
		}
	}
	return total
}

// TotalGain totals the year's gains, staking income included.
func (r *RealizedReport) TotalGain(year int) Money {
	return r.total(year, true)
}

func (r *RealizedReport) total(year int, withRewards bool) Money {
	total := M(0, r.Fiat)
	for _, e := range r.Entries {
		if e.DisposedOn.Year() != year {
			continue
		}
		if e.Reward && !withRewards {
			continue
		}
		total = total.Add(e.Gain)
	}
	return total
}

// Realized computes the gain recognized by every deduction that produced a
// destination lot (withdrawals and fee burns recognize nothing), plus the
// income recognized by every staking reward at receipt.
func (c *Calculator) Realized(w *Wallet) (*RealizedReport, error) {
	report := &RealizedReport{Fiat: c.Fiat}

	for _, d := range w.Deductions() {
		if d.Dest == nil {
			continue
		}
		entry, err := c.realizedEntry(d)
		if err != nil {
			if c.SkipErrors {
				report.Skipped = append(report.Skipped, err)
				continue
			}
			return nil, err
		}
		report.Entries = append(report.Entries, entry)
	}

	for _, l := range w.RewardLots() {
		rate, err := c.rate(l.Origin.Date, l.Total.Currency())
		if err != nil {
			if c.SkipErrors {
				report.Skipped = append(report.Skipped, err)
				continue
			}
			return nil, err
		}
		report.Entries = append(report.Entries, RealizedEntry{
			AcquiredOn: l.Origin.Date,
			DisposedOn: l.Origin.Date,
			Proceeds:   l.Total,
			Cost:       M(0, c.Fiat),
			Gross:      M(l.Total.Quantity().Mul(rate), c.Fiat),
			Gain:       M(l.Total.Quantity().Mul(rate), c.Fiat),
			Reward:     true,
		})
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].DisposedOn.Before(report.Entries[j].DisposedOn)
	})
	return report, nil
}

func (c *Calculator) realizedEntry(d *Deduction) (RealizedEntry, error) {
	srcRate, err := c.rate(d.Source.Origin.Date, d.Source.Total.Currency())
	if err != nil {
		return RealizedEntry{}, err
	}
	dstRate, err := c.rate(d.Tx.Date, d.Dest.Total.Currency())
	if err != nil {
		return RealizedEntry{}, err
	}

	cost := M(d.Value.Quantity().Mul(srcRate), c.Fiat)
	gross := M(d.Dest.Total.Quantity().Mul(dstRate), c.Fiat)
	return RealizedEntry{
		AcquiredOn: d.Source.Origin.Date,
		DisposedOn: d.Tx.Date,
		Consumed:   d.Value,
		Proceeds:   d.Dest.Total,
		Cost:       cost,
		Gross:      gross,
		Gain:       gross.Sub(cost),
	}, nil
}

// UnrealizedPosition aggregates the still-held lots of one currency.
type UnrealizedPosition struct {
	Currency string
	Held     Value // total available quantity
	Cost     Money // fiat value at each lot's origin date
	Market   Money // fiat value now
	Gain     Money // Market - Cost
}

// UnrealizedReport holds per-currency unrealized gains on open lots.
type UnrealizedReport struct {
	Fiat      string
	Positions []UnrealizedPosition
	Skipped   []error
}

// TotalGain sums the unrealized gain across all positions.
func (r *UnrealizedReport) TotalGain() Money {
	total := M(0, r.Fiat)
	for _, p := range r.Positions {
		total = total.Add(p.Gain)
	}
	return total
}

// Unrealized computes, for every lot still open at now, the difference between
// its current fiat value and its fiat value at origin, aggregated per
// currency.
func (c *Calculator) Unrealized(w *Wallet, now time.Time) (*UnrealizedReport, error) {
	report := &UnrealizedReport{Fiat: c.Fiat}
	positions := make(map[string]*UnrealizedPosition)
	currentRates := make(map[string]decimal.Decimal)

	for _, l := range w.OpenLots() {
		cur := l.Total.Currency()

		current, ok := currentRates[cur]
		if !ok {
			var err error
			current, err = c.rate(now, cur)
			if err != nil {
				if c.SkipErrors {
					report.Skipped = append(report.Skipped, err)
					continue
				}
				return nil, err
			}
			currentRates[cur] = current
		}
		original, err := c.rate(l.Origin.Date, cur)
		if err != nil {
			if c.SkipErrors {
				report.Skipped = append(report.Skipped, err)
				continue
			}
			return nil, err
		}

		available := l.Available()
		p, ok := positions[cur]
		if !ok {
			p = &UnrealizedPosition{Currency: cur, Held: V(0, cur), Cost: M(0, c.Fiat), Market: M(0, c.Fiat), Gain: M(0, c.Fiat)}
			positions[cur] = p
		}
		p.Held = p.Held.Add(available)
		p.Cost = p.Cost.Add(M(available.Quantity().Mul(original), c.Fiat))
		p.Market = p.Market.Add(M(available.Quantity().Mul(current), c.Fiat))
		p.Gain = p.Market.Sub(p.Cost)
	}

	curs := make([]string, 0, len(positions))
	for cur := range positions {
		curs = append(curs, cur)
	}
	sort.Strings(curs)
	for _, cur := range curs {
		report.Positions = append(report.Positions, *positions[cur])
	}
	return report, nil
}
