package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("accepts supported currencies", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), ARS)
		require.NoError(t, err)
		assert.Equal(t, ARS, m.Currency())
		assert.True(t, decimal.NewFromInt(100).Equal(m.Amount()))
	})

	t.Run("rejects unsupported currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), Currency("EUR"))
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("1234.56", USD)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1234.56").Equal(m.Amount()))

		_, err = NewMoneyFromString("abc", USD)
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyARS(decimal.NewFromInt(100))
	b := NewMoneyARS(decimal.NewFromInt(40))

	t.Run("add and sub", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(140).Equal(sum.Amount()))

		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(60).Equal(diff.Amount()))
	})

	t.Run("mixed currencies refuse arithmetic", func(t *testing.T) {
		usd := NewMoneyUSD(decimal.NewFromInt(1))
		_, err := a.Add(usd)
		assert.Error(t, err)
		_, err = a.Sub(usd)
		assert.Error(t, err)
	})

	t.Run("comparisons", func(t *testing.T) {
		assert.True(t, b.LessThan(a))
		assert.True(t, a.GreaterThan(b))
		assert.False(t, a.LessThan(NewMoneyUSD(decimal.NewFromInt(1000))), "mixed currencies are incomparable")
	})

	t.Run("neg and abs", func(t *testing.T) {
		n := a.Neg()
		assert.True(t, n.IsNegative())
		assert.True(t, n.Abs().IsPositive())
	})
}

func TestMoneyString(t *testing.T) {
	m := NewMoneyARS(decimal.RequireFromString("1500"))
	assert.Equal(t, "ARS 1500.00", m.String())
}

func TestCurrencies(t *testing.T) {
	assert.Equal(t, []Currency{ARS, USD}, Currencies)
	assert.Equal(t, ARS, DefaultCurrency)
}
