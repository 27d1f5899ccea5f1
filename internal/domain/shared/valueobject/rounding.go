package valueobject

import "github.com/shopspring/decimal"

// Rounding is the single decimal rounding policy applied to every
// computed ticket amount. Scale rounding is banker's rounding
// (midpoints go to the even digit).
type Rounding struct {
	Scale int32
}

// DefaultRounding rounds to two decimal places
var DefaultRounding = Rounding{Scale: 2}

// NewRounding returns a policy for the given number of decimals.
// Negative scales are clamped to zero.
func NewRounding(decimals int) Rounding {
	if decimals < 0 {
		decimals = 0
	}
	return Rounding{Scale: int32(decimals)}
}

// Round rounds d to the policy scale
func (r Rounding) Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(r.Scale)
}

// SnapToStep moves amount onto a multiple of step.
//
// A positive step rounds half away from zero. A negative step truncates
// toward zero, so the result never grows in magnitude. A zero step
// returns amount unchanged.
func SnapToStep(amount, step decimal.Decimal) decimal.Decimal {
	switch step.Sign() {
	case 0:
		return amount
	case 1:
		return amount.Div(step).Round(0).Mul(step)
	default:
		return amount.Div(step).Truncate(0).Mul(step)
	}
}
