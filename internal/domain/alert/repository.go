package alert

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for alert persistence. Alerts are
// written post-commit and best-effort, so no WithTx variant exists.
type Repository interface {
	// FindByID finds an alert by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)

	// FindUnread lists unread alerts, newest first
	FindUnread(ctx context.Context, limit int) ([]Alert, error)

	// ExistsUnread reports whether an unread alert with the same type and
	// entity already exists (the de-duplication key)
	ExistsUnread(ctx context.Context, alertType Type, entityID uuid.UUID) (bool, error)

	// Save creates or updates an alert
	Save(ctx context.Context, a *Alert) error
}
