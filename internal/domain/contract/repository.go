package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Filter defines filtering options for contract queries
type Filter struct {
	shared.Filter
	SupplierID *uuid.UUID
	WorkID     *uuid.UUID
	Status     *Status
	Blocked    *bool
}

// Repository defines the interface for contract persistence.
// WithTx returns a repository bound to the caller's transaction so the
// ledger can participate in an already-open unit of work.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForUpdate finds a contract by ID holding a row lock, so the
	// read-modify-write of the executed amount serializes across callers.
	// Only meaningful inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindUnblockedBySupplierAndWork finds an unblocked contract matching
	// the (supplier, work) pair, or nil when none matches.
	FindUnblockedBySupplierAndWork(ctx context.Context, supplierID, workID uuid.UUID) (*Contract, error)

	// FindAll lists contracts with filtering
	FindAll(ctx context.Context, filter Filter) ([]Contract, error)

	// FindOverExecuted lists blocked contracts whose executed amount
	// exceeds their total
	FindOverExecuted(ctx context.Context) ([]Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, c *Contract) error

	// Count counts contracts with filtering
	Count(ctx context.Context, filter Filter) (int64, error)
}
