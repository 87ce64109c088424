package treasury

import (
	"testing"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCashbox(t *testing.T, openingARS int64) *Cashbox {
	t.Helper()
	box, err := NewCashbox(uuid.New(), Balances{ARS: decimal.NewFromInt(openingARS)})
	require.NoError(t, err)
	return box
}

func testTotals(incomeARS, expenseARS int64) MovementTotals {
	return MovementTotals{
		Income:  Balances{ARS: decimal.NewFromInt(incomeARS)},
		Expense: Balances{ARS: decimal.NewFromInt(expenseARS)},
	}
}

func TestNewCashbox(t *testing.T) {
	t.Run("opens with balances", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		assert.True(t, box.IsOpen())
		assert.False(t, box.OpenedAt.IsZero())
	})

	t.Run("rejects negative opening", func(t *testing.T) {
		_, err := NewCashbox(uuid.New(), Balances{ARS: decimal.NewFromInt(-1)})
		assert.Error(t, err)
	})
}

func TestCashboxClose(t *testing.T) {
	// opening 10000, income 3000, expense 2000: expected closing 11000
	totals := testTotals(3000, 2000)

	t.Run("exact count yields zero difference", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(11000)}, totals))

		assert.Equal(t, CashboxStatusClosed, box.Status)
		assert.True(t, box.Differences.ARS.IsZero())
		assert.NotNil(t, box.ClosedAt)
	})

	t.Run("surplus is positive difference", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(12000)}, totals))
		assert.True(t, decimal.NewFromInt(1000).Equal(box.Differences.ARS))
	})

	t.Run("shortage is negative difference", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(10500)}, totals))
		assert.True(t, decimal.NewFromInt(-500).Equal(box.Differences.ARS))
	})

	t.Run("cannot close twice", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(11000)}, totals))
		assert.Error(t, box.Close(Balances{ARS: decimal.NewFromInt(11000)}, totals))
	})
}

func TestDifferenceIsCritical(t *testing.T) {
	cases := []struct {
		name     string
		currency valueobject.Currency
		diff     string
		critical bool
	}{
		{"ars at threshold", valueobject.ARS, "1000", false},
		{"ars above threshold", valueobject.ARS, "1000.01", true},
		{"ars shortage above threshold", valueobject.ARS, "-1500", true},
		{"usd at threshold", valueobject.USD, "100", false},
		{"usd above threshold", valueobject.USD, "150", true},
		{"usd small", valueobject.USD, "-20", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diff := decimal.RequireFromString(tc.diff)
			assert.Equal(t, tc.critical, DifferenceIsCritical(tc.currency, diff))
		})
	}
}

func TestAggregateMovements(t *testing.T) {
	boxID := uuid.New()
	mk := func(mt MovementType, amount int64, currency valueobject.Currency) CashMovement {
		m, err := NewCashMovement(boxID, mt, decimal.NewFromInt(amount), currency, "")
		require.NoError(t, err)
		return *m
	}

	totals := AggregateMovements([]CashMovement{
		mk(MovementTypeIncome, 3000, valueobject.ARS),
		mk(MovementTypeExpense, 2000, valueobject.ARS),
		mk(MovementTypeExpense, 500, valueobject.ARS),
		mk(MovementTypeIncome, 100, valueobject.USD),
		mk(MovementTypeRefill, 9999, valueobject.ARS),
	})

	assert.True(t, decimal.NewFromInt(3000).Equal(totals.Income.ARS))
	assert.True(t, decimal.NewFromInt(2500).Equal(totals.Expense.ARS))
	assert.True(t, decimal.NewFromInt(100).Equal(totals.Income.USD))
	assert.True(t, totals.Expense.USD.IsZero(), "refills must not count as income or expense")
}

func TestCashboxReopen(t *testing.T) {
	box := openTestCashbox(t, 10000)
	require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(10000)}, MovementTotals{}))

	require.NoError(t, box.Reopen())
	assert.True(t, box.IsOpen())
	assert.Nil(t, box.ClosedAt)

	assert.Error(t, box.Reopen(), "reopening an open cashbox must fail")
}

func TestCashboxRefill(t *testing.T) {
	t.Run("bumps the opening balance", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		require.NoError(t, box.ApplyRefill(valueobject.ARS, decimal.NewFromInt(5000)))
		assert.True(t, decimal.NewFromInt(15000).Equal(box.OpeningBalances.ARS))
	})

	t.Run("requires open box and positive amount", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		assert.Error(t, box.ApplyRefill(valueobject.ARS, decimal.Zero))

		require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(10000)}, MovementTotals{}))
		assert.Error(t, box.ApplyRefill(valueobject.ARS, decimal.NewFromInt(100)))
	})
}

func TestCashboxAdjustment(t *testing.T) {
	totals := testTotals(3000, 2000)

	t.Run("recomputes difference and voids approval", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(10500)}, totals))
		require.NoError(t, box.ApproveDifference(uuid.New()))
		require.True(t, box.DifferenceApproved)

		require.NoError(t, box.ApplyAdjustment(valueobject.ARS, decimal.NewFromInt(500), totals))

		assert.True(t, box.Differences.ARS.IsZero())
		assert.False(t, box.DifferenceApproved)
		assert.Nil(t, box.ApprovedBy)
	})

	t.Run("requires closed box and non-zero amount", func(t *testing.T) {
		box := openTestCashbox(t, 10000)
		assert.Error(t, box.ApplyAdjustment(valueobject.ARS, decimal.NewFromInt(100), totals))

		require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(11000)}, totals))
		assert.Error(t, box.ApplyAdjustment(valueobject.ARS, decimal.Zero, totals))
	})
}

func TestHasUnapprovedDifference(t *testing.T) {
	totals := testTotals(3000, 2000)

	box := openTestCashbox(t, 10000)
	require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(11000)}, totals))
	assert.False(t, box.HasUnapprovedDifference(), "zero difference needs no approval")

	box = openTestCashbox(t, 10000)
	require.NoError(t, box.Close(Balances{ARS: decimal.NewFromInt(11700)}, totals))
	assert.True(t, box.HasUnapprovedDifference())

	require.NoError(t, box.ApproveDifference(uuid.New()))
	assert.False(t, box.HasUnapprovedDifference())

	require.NoError(t, box.RejectDifference())
	assert.True(t, box.HasUnapprovedDifference())
}
