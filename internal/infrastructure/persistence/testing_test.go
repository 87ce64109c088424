package persistence

import (
	"testing"

	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.WorkModel{},
		&models.SupplierModel{},
		&models.ExpenseModel{},
		&models.IncomeModel{},
		&models.ContractModel{},
		&models.CashboxModel{},
		&models.CashMovementModel{},
		&models.RecordModel{},
		&models.AlertModel{},
	))
	return db
}
