package worksite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
)

// Work represents a construction site. Master-data CRUD lives in another
// service; this read model only carries what expense gating needs.
type Work struct {
	shared.BaseEntity
	OrganizationID   uuid.UUID  `json:"organization_id"`
	Name             string     `json:"name"`
	Closed           bool       `json:"closed"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	AllowPostClosure bool       `json:"allow_post_closure"` // allow expenses after formal closure
}

// AcceptsExpenses reports whether new expenses may be created against the work
func (w *Work) AcceptsExpenses() bool {
	if !w.Closed {
		return true
	}
	return w.AllowPostClosure
}

// IsPostClosure reports whether an expense created now would be post-closure
func (w *Work) IsPostClosure() bool {
	return w.Closed
}

// WorkRepository provides read access to works
type WorkRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Work, error)
}
