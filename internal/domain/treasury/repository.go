package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CashboxRepository defines the interface for cashbox persistence
type CashboxRepository interface {
	WithTx(tx *gorm.DB) CashboxRepository

	// FindByID finds a cashbox by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Cashbox, error)

	// FindOpenByUser returns the user's open cashbox, or nil when none
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*Cashbox, error)

	// FindAllByUser lists a user's cashboxes, newest first
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]Cashbox, error)

	// CountClosedWithUnapprovedDifference counts cashboxes closed inside
	// the given period carrying a non-zero unapproved difference
	CountClosedWithUnapprovedDifference(ctx context.Context, from, to time.Time) (int64, error)

	// Save creates or updates a cashbox
	Save(ctx context.Context, c *Cashbox) error
}

// MovementRepository defines the interface for cash movement persistence.
// Movements are append-only; there is no update or delete.
type MovementRepository interface {
	WithTx(tx *gorm.DB) MovementRepository

	// FindByCashbox lists every movement of a cashbox in insertion order
	FindByCashbox(ctx context.Context, cashboxID uuid.UUID) ([]CashMovement, error)

	// Create appends a movement row
	Create(ctx context.Context, m *CashMovement) error
}
