package accounting

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordRepository defines the interface for accounting record persistence
type RecordRepository interface {
	WithTx(tx *gorm.DB) RecordRepository

	// FindByID finds a record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// FindByExpenseID finds the record projected from an expense, or nil
	FindByExpenseID(ctx context.Context, expenseID uuid.UUID) (*Record, error)

	// FindByIncomeID finds the record projected from an income, or nil
	FindByIncomeID(ctx context.Context, incomeID uuid.UUID) (*Record, error)

	// FindByPeriod lists every record of a fiscal month
	FindByPeriod(ctx context.Context, month, year int) ([]Record, error)

	// CountByPeriod counts records in a fiscal month
	CountByPeriod(ctx context.Context, month, year int) (int64, error)

	// PeriodStatus returns the month status derived from the period's
	// records; MonthStatusOpen when the period has none.
	PeriodStatus(ctx context.Context, month, year int) (MonthStatus, error)

	// SetPeriodStatus bulk-updates the month status of every record in
	// the period
	SetPeriodStatus(ctx context.Context, month, year int, status MonthStatus) error

	// Create persists a new record
	Create(ctx context.Context, r *Record) error
}
