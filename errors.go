package taxlot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InsufficientFundsError is returned by Stack.Pull when the stack cannot cover
// a requested deduction beyond the pull tolerance. It is recoverable: the
// caller decides whether to give up or to synthesize an opening balance (see
// Wallet.SynthesizeOpening).
type InsufficientFundsError struct {
	Currency  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("attempted to pull %s %s but stack only contains %s %s",
		e.Requested, e.Currency, e.Available, e.Currency)
}

// Shortfall returns the missing quantity.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// InvariantError reports a broken internal invariant: a negative available
// balance, a conservation mismatch after a pull pass, or a transaction whose
// required fields are missing for its kind. It is always fatal, never retried.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Detail)
}

func invariantf(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// StaleRateError reports a rate lookup that stayed beyond the staleness limit
// even after a forced live re-fetch. The calculator never silently uses such a
// figure.
type StaleRateError struct {
	Currency  string
	At        time.Time
	Staleness time.Duration
	Limit     time.Duration
}

func (e *StaleRateError) Error() string {
	return fmt.Sprintf("rate for %s at %s is %s stale (limit %s)",
		e.Currency, e.At.Format(time.RFC3339), e.Staleness, e.Limit)
}

// UnknownKindError reports a transaction kind outside the recognized set.
// Fatal at ingestion.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown transaction kind %q", string(e.Kind))
}
