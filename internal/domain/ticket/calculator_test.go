package ticket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDiscounts(t *testing.T) {
	r := valueobject.NewRounding(2)
	lineID := uuid.New()
	lineTotal := func(id uuid.UUID) (decimal.Decimal, bool) {
		if id == lineID {
			return dec("40"), true
		}
		return decimal.Zero, false
	}

	discounts := []*Discount{
		{Type: DiscountPercent, Amount: dec("10")},
		{Type: DiscountPercent, LineID: lineID, Amount: dec("25")},
		{Type: DiscountPercent, LineID: uuid.New(), Amount: dec("25")},
		{Type: DiscountAmount, Amount: dec("1.5")},
		{Type: DiscountTip, Amount: dec("-2")},
	}

	result := CalculateDiscounts(discounts, dec("123.45"), lineTotal, r)

	require.Len(t, result.Amounts, 5)
	assertDecimal(t, "12.34", result.Amounts[0], "12.345 rounds to even")
	assertDecimal(t, "10", result.Amounts[1])
	assertDecimal(t, "0", result.Amounts[2], "missing line yields zero")
	assertDecimal(t, "1.5", result.Amounts[3])
	assertDecimal(t, "-2", result.Amounts[4])
	assertDecimal(t, "22.34", result.PercentTotal)
	assertDecimal(t, "-0.5", result.FlatTotal)
	assertDecimal(t, "21.84", result.Total)
}

func TestCalculateDiscounts_NonPositivePercentIsZero(t *testing.T) {
	result := CalculateDiscounts([]*Discount{
		{Type: DiscountPercent, Amount: dec("-5")},
	}, dec("100"), nil, valueobject.DefaultRounding)

	assertDecimal(t, "0", result.Total)
}

func TestCalculateDiscounts_RoundsEachEntryBeforeSumming(t *testing.T) {
	// three entries of 0.005 each round to 0.00 before summation
	discounts := []*Discount{
		{Type: DiscountPercent, Amount: dec("0.5")},
		{Type: DiscountPercent, Amount: dec("0.5")},
		{Type: DiscountPercent, Amount: dec("0.5")},
	}
	result := CalculateDiscounts(discounts, dec("1"), nil, valueobject.NewRounding(2))
	assertDecimal(t, "0", result.Total)
}

func TestCalculateTax(t *testing.T) {
	lines := []*LineItem{
		{Quantity: dec("2"), TaxAmount: dec("1.5"), Properties: []LineProperty{{Price: dec("1"), TaxAmount: dec("0.1"), Quantity: dec("2")}}},
		{Quantity: dec("1"), TaxAmount: dec("4"), TaxIncluded: true},
		{Quantity: dec("1"), TaxAmount: dec("3"), Voided: true},
		{Quantity: dec("1"), TaxAmount: dec("3"), Gifted: true},
	}

	assertDecimal(t, "3.4", CalculateTax(lines, dec("50"), decimal.Zero))
	// 3.4 - 3.4*5/50
	assertDecimal(t, "3.06", CalculateTax(lines, dec("50"), dec("5")))
	assertDecimal(t, "3.4", CalculateTax(lines, decimal.Zero, dec("5")), "zero subtotal skips the reduction")
}

func TestCalculateServices(t *testing.T) {
	r := valueobject.NewRounding(2)
	services := []*ServiceEntry{
		{Method: MethodRunningTotalPercent, Amount: dec("10")},
		{Method: MethodRunningTotalPercent, Amount: dec("10")},
		{Method: MethodSubtotalPercent, Amount: dec("10")},
		{Method: MethodSubtotalWithTaxPercent, Amount: dec("10")},
		{Method: MethodFlat, Amount: dec("2.5")},
	}

	result := CalculateServices(services, dec("100"), dec("20"), r)

	require.Len(t, result.Amounts, 5)
	assertDecimal(t, "10", result.Amounts[0])
	assertDecimal(t, "11", result.Amounts[1], "running total includes the first service")
	assertDecimal(t, "10", result.Amounts[2])
	assertDecimal(t, "12", result.Amounts[3])
	assertDecimal(t, "2.5", result.Amounts[4])
	assertDecimal(t, "45.5", result.Total)
}

func TestCalculateServices_Empty(t *testing.T) {
	result := CalculateServices(nil, dec("10"), dec("1"), valueobject.DefaultRounding)
	assert.Empty(t, result.Amounts)
	assertDecimal(t, "0", result.Total)
}

func TestDiscountType_Parse(t *testing.T) {
	for _, dt := range []DiscountType{DiscountPercent, DiscountAmount, DiscountAuto, DiscountTip} {
		parsed, ok := ParseDiscountType(dt.String())
		require.True(t, ok)
		assert.Equal(t, dt, parsed)
	}
	_, ok := ParseDiscountType("BOGUS")
	assert.False(t, ok)
	assert.Equal(t, "UNKNOWN", DiscountType(99).String())
}
