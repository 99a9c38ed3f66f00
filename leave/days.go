/*
days.go - Decimal day quantities

Leave is measured in days with one legal fraction, the half day. All
arithmetic goes through decimal.Decimal so that the balance/rate/LOP split
sums exactly; float64 only appears at serialization boundaries.
*/
package leave

import (
	"github.com/shopspring/decimal"
)

// Days is a signed quantity of leave days. The zero value is 0 days.
type Days struct {
	Value decimal.Decimal
}

func NewDays(value float64) Days {
	return Days{Value: decimal.NewFromFloat(value)}
}

func DaysFromInt(value int) Days {
	return Days{Value: decimal.NewFromInt(int64(value))}
}

func DaysFromDecimal(value decimal.Decimal) Days {
	return Days{Value: value}
}

func ZeroDays() Days {
	return Days{Value: decimal.Zero}
}

// MustParseDays parses a stored decimal string, falling back to zero on
// malformed input.
func MustParseDays(s string) Days {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Days{Value: decimal.Zero}
	}
	return Days{Value: d}
}

func (d Days) Add(o Days) Days         { return Days{Value: d.Value.Add(o.Value)} }
func (d Days) Sub(o Days) Days         { return Days{Value: d.Value.Sub(o.Value)} }
func (d Days) Neg() Days               { return Days{Value: d.Value.Neg()} }
func (d Days) IsZero() bool            { return d.Value.IsZero() }
func (d Days) IsNegative() bool        { return d.Value.IsNegative() }
func (d Days) IsPositive() bool        { return d.Value.IsPositive() }
func (d Days) Equal(o Days) bool       { return d.Value.Equal(o.Value) }
func (d Days) GreaterThan(o Days) bool { return d.Value.GreaterThan(o.Value) }
func (d Days) LessThan(o Days) bool    { return d.Value.LessThan(o.Value) }
func (d Days) Min(o Days) Days         { if d.LessThan(o) { return d }; return o }
func (d Days) Max(o Days) Days         { if d.GreaterThan(o) { return d }; return o }

func (d Days) Float64() float64 {
	f, _ := d.Value.Float64()
	return f
}

func (d Days) String() string {
	return d.Value.String()
}
