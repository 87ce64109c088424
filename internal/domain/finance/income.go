package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// IncomeState represents the state of an income record
type IncomeState string

const (
	IncomeStatePending   IncomeState = "PENDING"
	IncomeStateValidated IncomeState = "VALIDATED"
	IncomeStateAnnulled  IncomeState = "ANNULLED"
)

// IsValid checks if the state is a valid IncomeState
func (s IncomeState) IsValid() bool {
	switch s {
	case IncomeStatePending, IncomeStateValidated, IncomeStateAnnulled:
		return true
	}
	return false
}

// String returns the string representation of IncomeState
func (s IncomeState) String() string {
	return string(s)
}

// Income represents money entering a work: advances, certifications, refunds.
type Income struct {
	shared.BaseAggregateRoot
	WorkID      uuid.UUID            `json:"work_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    valueobject.Currency `json:"currency"`
	Description string               `json:"description"`
	ReceivedAt  time.Time            `json:"received_at"`
	State       IncomeState          `json:"state"`
	ValidatedAt *time.Time           `json:"validated_at,omitempty"`
	ValidatedBy *uuid.UUID           `json:"validated_by,omitempty"`
}

// NewIncome creates a new income record in PENDING state
func NewIncome(workID uuid.UUID, amount valueobject.Money, description string, receivedAt time.Time) (*Income, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Income amount must be positive")
	}
	if receivedAt.IsZero() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Received date is required")
	}
	return &Income{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WorkID:            workID,
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		Description:       description,
		ReceivedAt:        receivedAt,
		State:             IncomeStatePending,
	}, nil
}

// Validate moves the income to VALIDATED
func (i *Income) Validate(actorID uuid.UUID) error {
	if i.State != IncomeStatePending {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot validate income in %s state", i.State)
	}
	now := time.Now()
	i.State = IncomeStateValidated
	i.ValidatedAt = &now
	i.ValidatedBy = &actorID
	i.UpdatedAt = now
	return nil
}

// Annul moves the income to the terminal ANNULLED state
func (i *Income) Annul() error {
	if i.State == IncomeStateAnnulled {
		return shared.NewDomainError(shared.CodeInvalidState, "Income is already annulled")
	}
	i.State = IncomeStateAnnulled
	i.Touch()
	return nil
}

// IsValidated returns true if the income is in VALIDATED state
func (i *Income) IsValidated() bool {
	return i.State == IncomeStateValidated
}
