package accounting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	alertapp "github.com/obrafin/backend/internal/application/alert"
	"github.com/obrafin/backend/internal/domain/accounting"
	"github.com/obrafin/backend/internal/domain/alert"
	"github.com/obrafin/backend/internal/domain/contract"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/domain/treasury"
	"github.com/obrafin/backend/internal/infrastructure/persistence"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type monthFixture struct {
	service   *MonthService
	db        *gorm.DB
	records   *persistence.GormRecordRepository
	expenses  *persistence.GormExpenseRepository
	cashboxes *persistence.GormCashboxRepository
	contracts *persistence.GormContractRepository
}

func newMonthFixture(t *testing.T) *monthFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ExpenseModel{},
		&models.ContractModel{},
		&models.CashboxModel{},
		&models.RecordModel{},
		&models.AlertModel{},
	))

	log := zap.NewNop()
	f := &monthFixture{
		db:        db,
		records:   persistence.NewGormRecordRepository(db),
		expenses:  persistence.NewGormExpenseRepository(db),
		cashboxes: persistence.NewGormCashboxRepository(db),
		contracts: persistence.NewGormContractRepository(db),
	}
	emitter := alertapp.NewEmitter(persistence.NewGormAlertRepository(db), log)
	f.service = NewMonthService(db, f.records, f.expenses, f.cashboxes, f.contracts, emitter, log)
	return f
}

// seedRecord inserts one open ledger record into the period
func (f *monthFixture) seedRecord(t *testing.T, month, year int) {
	t.Helper()
	record := &accounting.Record{
		BaseEntity:  shared.NewBaseEntity(),
		WorkID:      uuid.New(),
		Type:        accounting.RecordTypeFiscal,
		Amount:      decimal.NewFromInt(1000),
		Currency:    valueobject.ARS,
		Month:       month,
		Year:        year,
		MonthStatus: accounting.MonthStatusOpen,
	}
	require.NoError(t, f.records.Create(context.Background(), record))
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestCloseMonthGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("restricted to administration", func(t *testing.T) {
		f := newMonthFixture(t)
		err := f.service.CloseMonth(ctx, 6, 2026, identity.RoleSupervisor)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("rejects invalid periods", func(t *testing.T) {
		f := newMonthFixture(t)
		assertCode(t, f.service.CloseMonth(ctx, 13, 2026, identity.RoleAdministration), shared.CodeBadRequest)
		assertCode(t, f.service.CloseMonth(ctx, 1, 1999, identity.RoleAdministration), shared.CodeBadRequest)
	})

	t.Run("refuses an empty period", func(t *testing.T) {
		f := newMonthFixture(t)
		assertCode(t, f.service.CloseMonth(ctx, 6, 2026, identity.RoleAdministration), shared.CodeBadRequest)
	})

	t.Run("refuses pending expenses in the period", func(t *testing.T) {
		f := newMonthFixture(t)
		f.seedRecord(t, 6, 2026)

		supplierID := uuid.New()
		pending, err := finance.NewExpense(uuid.New(), &supplierID,
			valueobject.NewMoneyARS(decimal.NewFromInt(500)),
			finance.DocumentTypeInvoiceA, "0001-00000001",
			time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), "")
		require.NoError(t, err)
		require.NoError(t, f.expenses.Save(ctx, pending))

		err = f.service.CloseMonth(ctx, 6, 2026, identity.RoleAdministration)
		assertCode(t, err, shared.CodeBadRequest)
		assert.Contains(t, err.Error(), "1 pending expense")
	})

	t.Run("refuses unapproved cashbox differences", func(t *testing.T) {
		f := newMonthFixture(t)
		now := time.Now()
		month, year := int(now.Month()), now.Year()
		f.seedRecord(t, month, year)

		box, err := treasury.NewCashbox(uuid.New(), treasury.Balances{ARS: decimal.NewFromInt(10000)})
		require.NoError(t, err)
		require.NoError(t, box.Close(treasury.Balances{ARS: decimal.NewFromInt(10500)}, treasury.MovementTotals{}))
		require.NoError(t, f.cashboxes.Save(ctx, box))

		err = f.service.CloseMonth(ctx, month, year, identity.RoleAdministration)
		assertCode(t, err, shared.CodeBadRequest)
		assert.Contains(t, err.Error(), "unapproved differences")

		require.NoError(t, box.ApproveDifference(uuid.New()))
		require.NoError(t, f.cashboxes.Save(ctx, box))
		assert.NoError(t, f.service.CloseMonth(ctx, month, year, identity.RoleAdministration))
	})
}

func TestCloseMonth(t *testing.T) {
	ctx := context.Background()

	t.Run("closes and refuses a second closure", func(t *testing.T) {
		f := newMonthFixture(t)
		f.seedRecord(t, 6, 2026)

		require.NoError(t, f.service.CloseMonth(ctx, 6, 2026, identity.RoleAdministration))

		status, err := f.service.PeriodStatus(ctx, 6, 2026)
		require.NoError(t, err)
		assert.Equal(t, accounting.MonthStatusClosed, status)

		assertCode(t, f.service.CloseMonth(ctx, 6, 2026, identity.RoleAdministration), shared.CodeMonthClosed)
	})

	t.Run("other periods stay open", func(t *testing.T) {
		f := newMonthFixture(t)
		f.seedRecord(t, 6, 2026)
		f.seedRecord(t, 7, 2026)

		require.NoError(t, f.service.CloseMonth(ctx, 6, 2026, identity.RoleAdministration))

		status, err := f.service.PeriodStatus(ctx, 7, 2026)
		require.NoError(t, err)
		assert.Equal(t, accounting.MonthStatusOpen, status)
	})

	t.Run("over-executed contracts warn without blocking", func(t *testing.T) {
		f := newMonthFixture(t)
		f.seedRecord(t, 6, 2026)

		c, err := contract.NewContract(uuid.New(), uuid.New(), "roofing",
			decimal.NewFromInt(100000), valueobject.ARS)
		require.NoError(t, err)
		_, err = c.ApplyExecuted(decimal.NewFromInt(120000))
		require.NoError(t, err)
		require.True(t, c.IsOverExecuted())
		require.NoError(t, f.contracts.Save(ctx, c))

		require.NoError(t, f.service.CloseMonth(ctx, 6, 2026, identity.RoleAdministration))

		var count int64
		require.NoError(t, f.db.Model(&models.AlertModel{}).
			Where("type = ?", alert.TypeContractOverExecuted).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestReopenMonth(t *testing.T) {
	ctx := context.Background()
	f := newMonthFixture(t)
	f.seedRecord(t, 6, 2026)
	require.NoError(t, f.service.CloseMonth(ctx, 6, 2026, identity.RoleAdministration))

	t.Run("restricted to direction", func(t *testing.T) {
		err := f.service.ReopenMonth(ctx, 6, 2026, identity.RoleAdministration)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("reopens a closed period", func(t *testing.T) {
		require.NoError(t, f.service.ReopenMonth(ctx, 6, 2026, identity.RoleDirection))

		status, err := f.service.PeriodStatus(ctx, 6, 2026)
		require.NoError(t, err)
		assert.Equal(t, accounting.MonthStatusOpen, status)
	})

	t.Run("refuses an open period", func(t *testing.T) {
		assertCode(t, f.service.ReopenMonth(ctx, 6, 2026, identity.RoleDirection), shared.CodeBadRequest)
	})
}
