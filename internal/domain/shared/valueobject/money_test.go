package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), "EUR")
		require.NoError(t, err)
		assert.Equal(t, Currency("EUR"), m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoney_String(t *testing.T) {
	m, err := NewMoney(decimal.RequireFromString("4.125"), DefaultCurrency)
	require.NoError(t, err)
	assert.Equal(t, "4.13 USD", m.String())

	m, err = NewMoney(decimal.NewFromInt(-3), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "-3.00 EUR", m.String())
}
