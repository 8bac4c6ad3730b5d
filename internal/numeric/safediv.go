// Package numeric holds the division guards shared by every ratio computed in
// the analytics core. A zero denominator never produces an error: it yields an
// explicit undefined marker so each call site decides, visibly, what to
// substitute.
package numeric

import "github.com/shopspring/decimal"

// Hundred is used for percentage conversions.
var Hundred = decimal.NewFromInt(100)

// SafeDiv returns n/d, or an invalid NullDecimal when d is zero.
// A NullDecimal with Valid=false serializes to JSON null.
func SafeDiv(n, d decimal.Decimal) decimal.NullDecimal {
	if d.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(n.Div(d))
}

// SafeDivFloat returns n/d and true, or 0 and false when d is zero.
func SafeDivFloat(n, d float64) (float64, bool) {
	if d == 0 {
		return 0, false
	}
	return n / d, true
}

// ScorePlaces is the precision scores are reported at.
const ScorePlaces = 3

// FromFloat converts a float measure (a score, never money) to a decimal
// rounded half to even at places.
func FromFloat(f float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(f).RoundBank(places)
}

// NullFromFloat is FromFloat for optional measures; nil is undefined.
func NullFromFloat(f *float64, places int32) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(FromFloat(*f, places))
}

// OrZero unwraps v, substituting zero when it is undefined.
func OrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// Round rounds a defined value to places (half to even) and leaves an
// undefined one alone.
func Round(v decimal.NullDecimal, places int32) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.RoundBank(places))
}
