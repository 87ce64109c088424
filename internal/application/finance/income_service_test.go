package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/accounting"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *financeFixture) createIncome(t *testing.T, workID uuid.UUID, amount int64, receivedAt time.Time) *finance.Income {
	t.Helper()
	income, err := f.incomes.Create(context.Background(), CreateIncomeRequest{
		WorkID:      workID,
		Amount:      decimal.NewFromInt(amount),
		Currency:    valueobject.ARS,
		ReceiptDate: receivedAt,
		Description: "certification advance",
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)
	return income
}

func TestIncomeCreate(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)

	t.Run("registers pending against an open work", func(t *testing.T) {
		income := f.createIncome(t, f.workID, 50000, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, finance.IncomeStatePending, income.State)
	})

	t.Run("closed work refuses incomes", func(t *testing.T) {
		closedWork := f.addWork(t, true, false)
		_, err := f.incomes.Create(ctx, CreateIncomeRequest{
			WorkID:      closedWork,
			Amount:      decimal.NewFromInt(100),
			Currency:    valueobject.ARS,
			ReceiptDate: time.Now(),
			CreatedBy:   uuid.New(),
		})
		requireCode(t, err, shared.CodeBadRequest)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := f.incomes.Create(ctx, CreateIncomeRequest{
			WorkID:      f.workID,
			Amount:      decimal.Zero,
			Currency:    valueobject.ARS,
			ReceiptDate: time.Now(),
			CreatedBy:   uuid.New(),
		})
		requireCode(t, err, shared.CodeInvalidAmount)
	})
}

func TestIncomeValidate(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)

	income := f.createIncome(t, f.workID, 50000, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))

	t.Run("restricted to administration", func(t *testing.T) {
		_, err := f.incomes.Validate(ctx, income.ID,
			identity.Actor{ID: uuid.New(), Role: identity.RoleSupervisor})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("projects a fiscal record", func(t *testing.T) {
		validated, err := f.incomes.Validate(ctx, income.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, finance.IncomeStateValidated, validated.State)

		record, err := f.records.FindByIncomeID(ctx, income.ID)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, accounting.RecordTypeFiscal, record.Type)
		assert.Equal(t, 4, record.Month)
		assert.Equal(t, 2026, record.Year)
		assert.True(t, decimal.NewFromInt(50000).Equal(record.Amount))
	})

	t.Run("cannot validate twice", func(t *testing.T) {
		_, err := f.incomes.Validate(ctx, income.ID, admin)
		requireCode(t, err, shared.CodeInvalidState)
	})
}

func TestIncomeValidateClosedMonth(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)

	// A closed record marks the whole fiscal month as closed.
	closedRecord := &accounting.Record{
		BaseEntity:  shared.NewBaseEntity(),
		WorkID:      f.workID,
		Type:        accounting.RecordTypeFiscal,
		Amount:      decimal.NewFromInt(1),
		Currency:    valueobject.ARS,
		Month:       5,
		Year:        2026,
		MonthStatus: accounting.MonthStatusClosed,
	}
	require.NoError(t, f.records.Create(ctx, closedRecord))

	income := f.createIncome(t, f.workID, 1000, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))

	t.Run("administration cannot project into a closed month", func(t *testing.T) {
		_, err := f.incomes.Validate(ctx, income.ID, admin)
		requireCode(t, err, shared.CodeMonthClosed)

		reloaded, err := f.incomes.GetByID(ctx, income.ID)
		require.NoError(t, err)
		assert.Equal(t, finance.IncomeStatePending, reloaded.State)
	})

	t.Run("direction may", func(t *testing.T) {
		validated, err := f.incomes.Validate(ctx, income.ID, direction)
		require.NoError(t, err)
		assert.Equal(t, finance.IncomeStateValidated, validated.State)
	})
}

func TestIncomeAnnul(t *testing.T) {
	ctx := context.Background()
	f := newFinanceFixture(t)

	income := f.createIncome(t, f.workID, 1000, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))

	annulled, err := f.incomes.Annul(ctx, income.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, finance.IncomeStateAnnulled, annulled.State)

	_, err = f.incomes.Annul(ctx, income.ID, admin)
	requireCode(t, err, shared.CodeInvalidState)
}
