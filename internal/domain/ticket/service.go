package ticket

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CalculationMethod selects the base a service charge is computed from
type CalculationMethod int

const (
	// MethodSubtotalPercent is a percentage of subtotal minus percent discounts
	MethodSubtotalPercent CalculationMethod = iota
	// MethodSubtotalWithTaxPercent is a percentage of subtotal minus percent discounts plus tax
	MethodSubtotalWithTaxPercent
	// MethodRunningTotalPercent is a percentage of the running total including earlier services
	MethodRunningTotalPercent
	// MethodFlat adds the nominal amount verbatim
	MethodFlat
)

// IsValid checks if the method is a known CalculationMethod
func (m CalculationMethod) IsValid() bool {
	return m >= MethodSubtotalPercent && m <= MethodFlat
}

// ServiceEntry is a service charge or tax service attached to a ticket
type ServiceEntry struct {
	ServiceID        uuid.UUID
	Name             string
	Method           CalculationMethod
	Amount           decimal.Decimal
	CalculatedAmount decimal.Decimal // computed on every calculation pass
}

// ServiceBreakdown is the result of a service calculation. Amounts is
// parallel to the input entries.
type ServiceBreakdown struct {
	Amounts []decimal.Decimal
	Total   decimal.Decimal
}

// CalculateTax sums the tax of lines whose prices exclude tax and which are
// neither voided nor gifted, then reduces it by the share of the percent
// discount in the plain subtotal. The result is not rounded.
func CalculateTax(lines []*LineItem, plainSubtotal, percentDiscount decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, l := range lines {
		if l.TaxIncluded || !l.countsTowardTotal() {
			continue
		}
		tax = tax.Add(l.UnitTax().Mul(l.Quantity))
	}
	if percentDiscount.IsPositive() && !plainSubtotal.IsZero() {
		tax = tax.Sub(tax.Mul(percentDiscount).Div(plainSubtotal))
	}
	return tax
}

// CalculateServices computes entries in order. subtotal is the plain
// subtotal already reduced by percent discounts. Each amount is added to the
// running total before the next entry is computed.
func CalculateServices(services []*ServiceEntry, subtotal, tax decimal.Decimal, r valueobject.Rounding) ServiceBreakdown {
	result := ServiceBreakdown{
		Amounts: make([]decimal.Decimal, len(services)),
		Total:   decimal.Zero,
	}

	current := subtotal
	for i, s := range services {
		var amount decimal.Decimal
		switch s.Method {
		case MethodSubtotalPercent:
			amount = subtotal.Mul(s.Amount).Div(hundred)
		case MethodSubtotalWithTaxPercent:
			amount = subtotal.Add(tax).Mul(s.Amount).Div(hundred)
		case MethodRunningTotalPercent:
			amount = current.Mul(s.Amount).Div(hundred)
		default:
			amount = s.Amount
		}
		amount = r.Round(amount)
		result.Amounts[i] = amount
		current = current.Add(amount)
		result.Total = result.Total.Add(amount)
	}

	result.Total = r.Round(result.Total)
	return result
}
