package worksite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
)

// FiscalCondition represents a supplier's standing before the tax authority
type FiscalCondition string

const (
	FiscalConditionRegistered  FiscalCondition = "REGISTERED"  // responsable inscripto
	FiscalConditionMonotributo FiscalCondition = "MONOTRIBUTO" // simplified regime
	FiscalConditionExempt      FiscalCondition = "EXEMPT"
)

// IsValid checks if the condition is a known FiscalCondition
func (f FiscalCondition) IsValid() bool {
	switch f {
	case FiscalConditionRegistered, FiscalConditionMonotributo, FiscalConditionExempt:
		return true
	}
	return false
}

// String returns the string representation of FiscalCondition
func (f FiscalCondition) String() string {
	return string(f)
}

// Supplier is the read model for a supplier. Blocking and the ART
// liability-insurance document gate expense creation.
type Supplier struct {
	shared.BaseEntity
	Name            string          `json:"name"`
	TaxID           string          `json:"tax_id"`
	FiscalCondition FiscalCondition `json:"fiscal_condition"`
	Blocked         bool            `json:"blocked"`
	ARTValid        bool            `json:"art_valid"`
	ARTExpiresAt    *time.Time      `json:"art_expires_at,omitempty"`
}

// ARTExpired reports whether the supplier's ART document has lapsed at t
func (s *Supplier) ARTExpired(t time.Time) bool {
	if !s.ARTValid {
		return true
	}
	return s.ARTExpiresAt != nil && s.ARTExpiresAt.Before(t)
}

// ARTExpiringSoon reports whether the ART document lapses within the window
func (s *Supplier) ARTExpiringSoon(t time.Time, window time.Duration) bool {
	if s.ARTExpiresAt == nil || s.ARTExpired(t) {
		return false
	}
	return s.ARTExpiresAt.Before(t.Add(window))
}

// CanReceiveExpenses reports whether expenses may reference the supplier at t
func (s *Supplier) CanReceiveExpenses(t time.Time) bool {
	return !s.Blocked && !s.ARTExpired(t)
}

// SupplierRepository provides read access to suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
}
