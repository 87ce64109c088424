package treasury

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	alertapp "github.com/obrafin/backend/internal/application/alert"
	"github.com/obrafin/backend/internal/domain/alert"
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

func newTestCashboxService(t *testing.T) (*CashboxService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.CashboxModel{},
		&models.CashMovementModel{},
		&models.AlertModel{},
	))

	log := zap.NewNop()
	emitter := alertapp.NewEmitter(persistence.NewGormAlertRepository(db), log)
	service := NewCashboxService(db,
		persistence.NewGormCashboxRepository(db),
		persistence.NewGormMovementRepository(db),
		emitter, log)
	return service, db
}

func alertCount(t *testing.T, db *gorm.DB, alertType alert.Type) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AlertModel{}).Where("type = ?", alertType).Count(&count).Error)
	return count
}

func ars(v int64) treasury.Balances {
	return treasury.Balances{ARS: decimal.NewFromInt(v)}
}

func TestCashboxOpen(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestCashboxService(t)
	userID := uuid.New()

	box, err := service.Open(ctx, userID, ars(10000))
	require.NoError(t, err)
	assert.True(t, box.IsOpen())

	t.Run("one open cashbox per user", func(t *testing.T) {
		_, err := service.Open(ctx, userID, ars(500))
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeInvalidState, de.Code)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		_, err := service.Open(ctx, uuid.New(), ars(500))
		assert.NoError(t, err)
	})
}

func TestRegisterMovement(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestCashboxService(t)

	box, err := service.Open(ctx, uuid.New(), ars(10000))
	require.NoError(t, err)

	t.Run("appends to an open cashbox", func(t *testing.T) {
		m, err := service.RegisterMovement(ctx, RegisterMovementRequest{
			CashboxID:   box.ID,
			Type:        treasury.MovementTypeExpense,
			Amount:      decimal.NewFromInt(2000),
			Currency:    valueobject.ARS,
			Description: "fuel",
		})
		require.NoError(t, err)
		assert.Equal(t, treasury.MovementTypeExpense, m.Type)

		movements, err := service.ListMovements(ctx, box.ID)
		require.NoError(t, err)
		assert.Len(t, movements, 1)
	})

	t.Run("links the source expense", func(t *testing.T) {
		expenseID := uuid.New()
		m, err := service.RegisterMovement(ctx, RegisterMovementRequest{
			CashboxID: box.ID,
			Type:      treasury.MovementTypeExpense,
			Amount:    decimal.NewFromInt(100),
			Currency:  valueobject.ARS,
			ExpenseID: &expenseID,
		})
		require.NoError(t, err)
		require.NotNil(t, m.ExpenseID)
		assert.Equal(t, expenseID, *m.ExpenseID)
	})

	t.Run("refuses the refill type", func(t *testing.T) {
		_, err := service.RegisterMovement(ctx, RegisterMovementRequest{
			CashboxID: box.ID,
			Type:      treasury.MovementTypeRefill,
			Amount:    decimal.NewFromInt(100),
			Currency:  valueobject.ARS,
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeBadRequest, de.Code)
	})

	t.Run("refuses a closed cashbox", func(t *testing.T) {
		closed, err := service.Open(ctx, uuid.New(), ars(100))
		require.NoError(t, err)
		_, err = service.Close(ctx, closed.ID, ars(100))
		require.NoError(t, err)

		_, err = service.RegisterMovement(ctx, RegisterMovementRequest{
			CashboxID: closed.ID,
			Type:      treasury.MovementTypeIncome,
			Amount:    decimal.NewFromInt(100),
			Currency:  valueobject.ARS,
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeInvalidState, de.Code)
	})
}

func TestCashboxRefillService(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestCashboxService(t)

	box, err := service.Open(ctx, uuid.New(), ars(10000))
	require.NoError(t, err)

	box, err = service.Refill(ctx, box.ID, valueobject.ARS, decimal.NewFromInt(5000), "weekly top-up")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15000).Equal(box.OpeningBalances.ARS))

	movements, err := service.ListMovements(ctx, box.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, treasury.MovementTypeRefill, movements[0].Type)
}

func TestCashboxServiceClose(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T, service *CashboxService) *treasury.Cashbox {
		box, err := service.Open(ctx, uuid.New(), ars(10000))
		require.NoError(t, err)
		_, err = service.RegisterMovement(ctx, RegisterMovementRequest{
			CashboxID: box.ID, Type: treasury.MovementTypeIncome,
			Amount: decimal.NewFromInt(3000), Currency: valueobject.ARS,
		})
		require.NoError(t, err)
		_, err = service.RegisterMovement(ctx, RegisterMovementRequest{
			CashboxID: box.ID, Type: treasury.MovementTypeExpense,
			Amount: decimal.NewFromInt(2000), Currency: valueobject.ARS,
		})
		require.NoError(t, err)
		return box
	}

	t.Run("clean close raises no alert", func(t *testing.T) {
		service, db := newTestCashboxService(t)
		box := open(t, service)

		box, err := service.Close(ctx, box.ID, ars(11000))
		require.NoError(t, err)
		assert.True(t, box.Differences.ARS.IsZero())
		assert.Equal(t, int64(0), alertCount(t, db, alert.TypeCashboxDifference))
	})

	t.Run("small difference raises a warning", func(t *testing.T) {
		service, db := newTestCashboxService(t)
		box := open(t, service)

		box, err := service.Close(ctx, box.ID, ars(11500))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(box.Differences.ARS))

		var model models.AlertModel
		require.NoError(t, db.First(&model, "type = ?", alert.TypeCashboxDifference).Error)
		assert.Equal(t, alert.SeverityWarning, model.Severity)
	})

	t.Run("critical difference raises a critical alert", func(t *testing.T) {
		service, db := newTestCashboxService(t)
		box := open(t, service)

		_, err := service.Close(ctx, box.ID, ars(13000))
		require.NoError(t, err)

		var model models.AlertModel
		require.NoError(t, db.First(&model, "type = ?", alert.TypeCashboxDifference).Error)
		assert.Equal(t, alert.SeverityCritical, model.Severity)
	})
}

func TestDifferenceApproval(t *testing.T) {
	ctx := context.Background()
	service, db := newTestCashboxService(t)

	box, err := service.Open(ctx, uuid.New(), ars(10000))
	require.NoError(t, err)
	box, err = service.Close(ctx, box.ID, ars(10700))
	require.NoError(t, err)
	require.True(t, box.HasUnapprovedDifference())

	admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdministration}
	operator := identity.Actor{ID: uuid.New(), Role: identity.RoleOperator}

	t.Run("operators cannot approve", func(t *testing.T) {
		_, err := service.ApproveDifference(ctx, box.ID, operator)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("administration approves", func(t *testing.T) {
		box, err := service.ApproveDifference(ctx, box.ID, admin)
		require.NoError(t, err)
		assert.True(t, box.DifferenceApproved)
		require.NotNil(t, box.ApprovedBy)
		assert.Equal(t, admin.ID, *box.ApprovedBy)
	})

	t.Run("rejection voids approval and alerts", func(t *testing.T) {
		box, err := service.RejectDifference(ctx, box.ID, admin)
		require.NoError(t, err)
		assert.False(t, box.DifferenceApproved)
		assert.Equal(t, int64(1), alertCount(t, db, alert.TypeCashboxDifferenceRejected))
	})
}

func TestManualAdjustment(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestCashboxService(t)

	box, err := service.Open(ctx, uuid.New(), ars(10000))
	require.NoError(t, err)
	box, err = service.Close(ctx, box.ID, ars(10500))
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(500).Equal(box.Differences.ARS))

	admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdministration}
	direction := identity.Actor{ID: uuid.New(), Role: identity.RoleDirection}

	t.Run("restricted to direction", func(t *testing.T) {
		_, err := service.ManualAdjustment(ctx, box.ID, valueobject.ARS, decimal.NewFromInt(-500), "uncounted fuel purchase", admin)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("requires a reason", func(t *testing.T) {
		_, err := service.ManualAdjustment(ctx, box.ID, valueobject.ARS, decimal.NewFromInt(-500), "", direction)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeBadRequest, de.Code)
	})

	t.Run("records a correcting movement and voids approval", func(t *testing.T) {
		_, err := service.ApproveDifference(ctx, box.ID, admin)
		require.NoError(t, err)

		box, err := service.ManualAdjustment(ctx, box.ID, valueobject.ARS, decimal.NewFromInt(-500), "uncounted fuel purchase", direction)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10000).Equal(box.ClosingBalances.ARS))
		assert.True(t, decimal.NewFromInt(500).Equal(box.Differences.ARS), "the shortfall stays on record")
		assert.False(t, box.DifferenceApproved)

		movements, err := service.ListMovements(ctx, box.ID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, treasury.MovementTypeExpense, movements[0].Type)
		assert.True(t, decimal.NewFromInt(500).Equal(movements[0].Amount))
		assert.Equal(t, "uncounted fuel purchase", movements[0].Description)
	})

	t.Run("positive amounts book as income", func(t *testing.T) {
		other, err := service.Open(ctx, uuid.New(), ars(1000))
		require.NoError(t, err)
		_, err = service.Close(ctx, other.ID, ars(1200))
		require.NoError(t, err)

		other, err = service.ManualAdjustment(ctx, other.ID, valueobject.ARS, decimal.NewFromInt(300), "recount found extra notes", direction)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1500).Equal(other.ClosingBalances.ARS))

		movements, err := service.ListMovements(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, treasury.MovementTypeIncome, movements[0].Type)
		assert.True(t, decimal.NewFromInt(300).Equal(movements[0].Amount))
	})

	t.Run("reopen and close reproduce the adjusted difference", func(t *testing.T) {
		box, err := service.Reopen(ctx, box.ID, admin)
		require.NoError(t, err)
		box, err = service.Close(ctx, box.ID, ars(10000))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(box.Differences.ARS))
	})
}

func TestCashboxServiceReopen(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestCashboxService(t)

	box, err := service.Open(ctx, uuid.New(), ars(10000))
	require.NoError(t, err)
	_, err = service.Close(ctx, box.ID, ars(10000))
	require.NoError(t, err)

	t.Run("restricted to the approval tier", func(t *testing.T) {
		_, err := service.Reopen(ctx, box.ID, identity.Actor{ID: uuid.New(), Role: identity.RoleSupervisor})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("refused while the owner has another open box", func(t *testing.T) {
		userID := uuid.New()
		first, err := service.Open(ctx, userID, ars(100))
		require.NoError(t, err)
		_, err = service.Close(ctx, first.ID, ars(100))
		require.NoError(t, err)
		_, err = service.Open(ctx, userID, ars(200))
		require.NoError(t, err)

		_, err = service.Reopen(ctx, first.ID, identity.Actor{ID: uuid.New(), Role: identity.RoleAdministration})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeInvalidState, de.Code)
	})

	t.Run("puts the box back in service", func(t *testing.T) {
		box, err := service.Reopen(ctx, box.ID, identity.Actor{ID: uuid.New(), Role: identity.RoleAdministration})
		require.NoError(t, err)
		assert.True(t, box.IsOpen())
	})
}
