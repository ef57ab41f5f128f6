package taxlot

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Value is an exact quantity of one currency. The zero Value is "0" of no
// particular currency.
type Value struct {
	quantity decimal.Decimal
	cur      string
}

// V creates a Value from any numeric type.
func V[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](quantity T, currency string) Value {
	return Value{quantity: newDecimal(quantity), cur: currency}
}

func (v Value) Quantity() decimal.Decimal { return v.quantity }
func (v Value) Currency() string          { return v.cur }
func (v Value) IsZero() bool              { return v.quantity.IsZero() }
func (v Value) IsPositive() bool          { return v.quantity.IsPositive() }
func (v Value) IsNegative() bool          { return v.quantity.IsNegative() }
func (v Value) LessThan(o Value) bool     { return v.quantity.LessThan(o.quantity) }

// Scale returns a new Value with the quantity multiplied by factor.
// The full precision of the product is preserved.
func (v Value) Scale(factor decimal.Decimal) Value {
	return Value{quantity: v.quantity.Mul(factor), cur: v.cur}
}

// Add returns the sum of two values of the same currency.
func (v Value) Add(o Value) Value {
	return Value{quantity: v.quantity.Add(o.quantity), cur: sameCur(v, o)}
}

// Sub returns the difference of two values of the same currency.
func (v Value) Sub(o Value) Value {
	return Value{quantity: v.quantity.Sub(o.quantity), cur: sameCur(v, o)}
}

// Equal reports structural equality: quantity and currency must both match.
// Values of different currencies are never equal, they are not comparable
// enough to be an error.
func (v Value) Equal(o Value) bool {
	return v.cur == o.cur && v.quantity.Equal(o.quantity)
}

// sameCur resolves the currency of a binary operation. The "" currency is
// totally weak, a genuine mismatch is a programming error.
func sameCur(a, b Value) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

func (v Value) String() string {
	return fmt.Sprintf("%s %s", v.quantity.String(), v.cur)
}

// valueJSON is the wire form of a Value in history files.
type valueJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(valueJSON{Amount: v.quantity, Currency: v.cur})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.quantity = raw.Amount
	v.cur = raw.Currency
	return nil
}
