package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustExpense(t *testing.T, supplierID *uuid.UUID, docType finance.DocumentType, number string, date time.Time) *finance.Expense {
	t.Helper()
	e, err := finance.NewExpense(
		uuid.New(), supplierID,
		valueobject.NewMoneyARS(decimal.NewFromInt(1000)),
		docType, number, date, "materials",
	)
	require.NoError(t, err)
	return e
}

func TestGenerateVoucherNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewGormExpenseRepository(newTestDB(t))
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("first voucher", func(t *testing.T) {
		number, err := repo.GenerateVoucherNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "VAL-000001", number)
	})

	t.Run("continues the sequence", func(t *testing.T) {
		e := mustExpense(t, nil, finance.DocumentTypeVAL, "", date)
		e.DocumentNumber = "VAL-000005"
		require.NoError(t, repo.Save(ctx, e))

		number, err := repo.GenerateVoucherNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "VAL-000006", number)
	})

	t.Run("ignores fiscal documents", func(t *testing.T) {
		supplierID := uuid.New()
		e := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00009999", date)
		require.NoError(t, repo.Save(ctx, e))

		number, err := repo.GenerateVoucherNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "VAL-000006", number)
	})

	t.Run("survives sequences past the padding", func(t *testing.T) {
		for _, number := range []string{"VAL-999999", "VAL-1000000"} {
			e := mustExpense(t, nil, finance.DocumentTypeVAL, "", date)
			e.DocumentNumber = number
			require.NoError(t, repo.Save(ctx, e))
		}

		number, err := repo.GenerateVoucherNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "VAL-1000001", number)
	})
}

func TestFindDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewGormExpenseRepository(newTestDB(t))

	supplierID := uuid.New()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	original := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00001234", date)
	require.NoError(t, repo.Save(ctx, original))

	t.Run("matches supplier, number and date", func(t *testing.T) {
		dup := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00001234", date)
		require.NoError(t, repo.Save(ctx, dup))

		found, err := repo.FindDuplicates(ctx, dup)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, original.ID, found[0].ID)
	})

	t.Run("ignores other suppliers and dates", func(t *testing.T) {
		otherSupplier := uuid.New()
		e := mustExpense(t, &otherSupplier, finance.DocumentTypeInvoiceA, "0001-00001234", date)
		found, err := repo.FindDuplicates(ctx, e)
		require.NoError(t, err)
		assert.Empty(t, found)

		e = mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00001234", date.AddDate(0, 0, 1))
		found, err = repo.FindDuplicates(ctx, e)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("ignores terminal states", func(t *testing.T) {
		annulled := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00005678", date)
		require.NoError(t, annulled.TransitionTo(finance.ExpenseStateAnnulled, uuid.New()))
		require.NoError(t, repo.Save(ctx, annulled))

		probe := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00005678", date)
		found, err := repo.FindDuplicates(ctx, probe)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("no supplier means no duplicates", func(t *testing.T) {
		e := mustExpense(t, nil, finance.DocumentTypeVAL, "", date)
		found, err := repo.FindDuplicates(ctx, e)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestExpenseSaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormExpenseRepository(newTestDB(t))

	supplierID := uuid.New()
	e := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00000001",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, e))

	stale, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)

	require.NoError(t, repo.SaveWithLock(ctx, e))
	assert.Equal(t, 2, e.Version)

	err = repo.SaveWithLock(ctx, stale)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.CodeVersionConflict, de.Code)
	assert.Equal(t, 1, stale.Version, "failed save must not bump the version")
}

func TestCountPendingInPeriod(t *testing.T) {
	ctx := context.Background()
	repo := NewGormExpenseRepository(newTestDB(t))
	supplierID := uuid.New()

	inPeriod := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00000010",
		time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, inPeriod))

	validated := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00000011",
		time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, validated.TransitionTo(finance.ExpenseStateValidated, uuid.New()))
	require.NoError(t, repo.Save(ctx, validated))

	nextMonth := mustExpense(t, &supplierID, finance.DocumentTypeInvoiceA, "0001-00000012",
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, nextMonth))

	count, err := repo.CountPendingInPeriod(ctx, 6, 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountPendingInPeriod(ctx, 7, 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestExpenseFindAllFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewGormExpenseRepository(newTestDB(t))

	workID := uuid.New()
	supplierID := uuid.New()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	first, err := finance.NewExpense(workID, &supplierID,
		valueobject.NewMoneyARS(decimal.NewFromInt(500)),
		finance.DocumentTypeInvoiceA, "0001-00000100", date, "cement bags")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := finance.NewExpense(uuid.New(), &supplierID,
		valueobject.NewMoneyARS(decimal.NewFromInt(900)),
		finance.DocumentTypeInvoiceB, "0002-00000200", date, "scaffolding")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	t.Run("by work", func(t *testing.T) {
		found, err := repo.FindAll(ctx, finance.ExpenseFilter{WorkID: &workID})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, first.ID, found[0].ID)
	})

	t.Run("by search term", func(t *testing.T) {
		found, err := repo.FindAll(ctx, finance.ExpenseFilter{Filter: shared.Filter{Search: "scaffold"}})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, second.ID, found[0].ID)
	})

	t.Run("count matches", func(t *testing.T) {
		total, err := repo.Count(ctx, finance.ExpenseFilter{SupplierID: &supplierID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}
