package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ExpenseFilter defines filtering options for expense queries
type ExpenseFilter struct {
	shared.Filter
	WorkID     *uuid.UUID
	SupplierID *uuid.UUID
	ContractID *uuid.UUID
	State      *ExpenseState
	FromDate   *time.Time
	ToDate     *time.Time
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	WithTx(tx *gorm.DB) ExpenseRepository

	// FindByID finds an expense by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindAll lists expenses with filtering
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, error)

	// FindDuplicates finds other pending/validated expenses sharing the
	// supplier, document number and purchase date with the given expense.
	FindDuplicates(ctx context.Context, e *Expense) ([]Expense, error)

	// CountPendingInPeriod counts PENDING expenses whose purchase date
	// falls inside the fiscal month
	CountPendingInPeriod(ctx context.Context, month, year int) (int64, error)

	// Save creates or updates an expense
	Save(ctx context.Context, e *Expense) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, e *Expense) error

	// GenerateVoucherNumber returns the next sequential VAL code. The
	// implementation scans for the true maximum so a collision forces a
	// rescan rather than a duplicate.
	GenerateVoucherNumber(ctx context.Context) (string, error)

	// Count counts expenses with filtering
	Count(ctx context.Context, filter ExpenseFilter) (int64, error)
}

// IncomeRepository defines the interface for income persistence
type IncomeRepository interface {
	WithTx(tx *gorm.DB) IncomeRepository

	// FindByID finds an income record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Income, error)

	// FindAll lists income records for a work
	FindAll(ctx context.Context, workID uuid.UUID) ([]Income, error)

	// Save creates or updates an income record
	Save(ctx context.Context, i *Income) error
}
