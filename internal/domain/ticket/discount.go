package ticket

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscountType discriminates how a discount amount is interpreted
type DiscountType int

const (
	DiscountPercent DiscountType = iota
	DiscountAmount
	DiscountAuto // synthetic rounding discount maintained by Recalculate
	DiscountTip
)

// String returns the string representation of DiscountType
func (t DiscountType) String() string {
	switch t {
	case DiscountPercent:
		return "PERCENT"
	case DiscountAmount:
		return "AMOUNT"
	case DiscountAuto:
		return "AUTO"
	case DiscountTip:
		return "TIP"
	}
	return "UNKNOWN"
}

// IsValid checks if the type is a known DiscountType
func (t DiscountType) IsValid() bool {
	return t >= DiscountPercent && t <= DiscountTip
}

// ParseDiscountType parses the string form produced by String
func ParseDiscountType(s string) (DiscountType, bool) {
	for t := DiscountPercent; t <= DiscountTip; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Discount is a ticket or line scoped deduction
type Discount struct {
	Type           DiscountType
	LineID         uuid.UUID // uuid.Nil applies to the whole ticket
	Amount         decimal.Decimal
	DiscountAmount decimal.Decimal // computed on every calculation pass
	UserID         uuid.UUID
}

// DiscountBreakdown is the result of a discount calculation. Amounts is
// parallel to the input entries.
type DiscountBreakdown struct {
	Amounts      []decimal.Decimal
	Total        decimal.Decimal
	PercentTotal decimal.Decimal
	FlatTotal    decimal.Decimal
}

// CalculateDiscounts computes every entry against subtotal, or against the
// target line total for line scoped percentages. lineTotal reports false for
// a line that no longer exists, which yields a zero amount.
//
// Each amount is rounded before it is summed and the sums are rounded again.
func CalculateDiscounts(discounts []*Discount, subtotal decimal.Decimal, lineTotal func(uuid.UUID) (decimal.Decimal, bool), r valueobject.Rounding) DiscountBreakdown {
	result := DiscountBreakdown{
		Amounts:      make([]decimal.Decimal, len(discounts)),
		Total:        decimal.Zero,
		PercentTotal: decimal.Zero,
		FlatTotal:    decimal.Zero,
	}

	for i, d := range discounts {
		var amount decimal.Decimal
		if d.Type == DiscountPercent {
			amount = percentOf(discountScope(d, subtotal, lineTotal), d.Amount)
		} else {
			amount = d.Amount
		}
		amount = r.Round(amount)
		result.Amounts[i] = amount
		result.Total = result.Total.Add(amount)
		if d.Type == DiscountPercent {
			result.PercentTotal = result.PercentTotal.Add(amount)
		} else {
			result.FlatTotal = result.FlatTotal.Add(amount)
		}
	}

	result.Total = r.Round(result.Total)
	result.PercentTotal = r.Round(result.PercentTotal)
	result.FlatTotal = r.Round(result.FlatTotal)
	return result
}

func discountScope(d *Discount, subtotal decimal.Decimal, lineTotal func(uuid.UUID) (decimal.Decimal, bool)) decimal.Decimal {
	if d.LineID == uuid.Nil {
		return subtotal
	}
	if lineTotal == nil {
		return decimal.Zero
	}
	total, ok := lineTotal(d.LineID)
	if !ok {
		return decimal.Zero
	}
	return total
}

// percentOf returns (base * rate) / 100, or zero when rate is not positive
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return base.Mul(rate).Div(hundred)
}
