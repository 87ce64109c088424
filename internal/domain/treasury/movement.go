package treasury

import (
	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MovementType classifies a cash movement
type MovementType string

const (
	MovementTypeIncome  MovementType = "INCOME"
	MovementTypeExpense MovementType = "EXPENSE"
	MovementTypeRefill  MovementType = "REFILL"
)

// IsValid checks if the type is a valid MovementType
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIncome, MovementTypeExpense, MovementTypeRefill:
		return true
	}
	return false
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// CashMovement is an append-only row in a cashbox's ledger. Movements are
// never modified or deleted; corrections create new entries.
type CashMovement struct {
	shared.BaseEntity
	CashboxID   uuid.UUID            `json:"cashbox_id"`
	Type        MovementType         `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    valueobject.Currency `json:"currency"`
	Description string               `json:"description"`
	ExpenseID   *uuid.UUID           `json:"expense_id,omitempty"`
	IncomeID    *uuid.UUID           `json:"income_id,omitempty"`
}

// NewCashMovement creates a movement row for a cashbox
func NewCashMovement(cashboxID uuid.UUID, movementType MovementType, amount decimal.Decimal, currency valueobject.Currency, description string) (*CashMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeBadRequest, "Unknown movement type %q", movementType)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Movement amount must be positive")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeBadRequest, "Unsupported currency %q", currency)
	}
	return &CashMovement{
		BaseEntity:  shared.NewBaseEntity(),
		CashboxID:   cashboxID,
		Type:        movementType,
		Amount:      amount,
		Currency:    currency,
		Description: description,
	}, nil
}

// LinkExpense records the expense that originated the movement
func (m *CashMovement) LinkExpense(expenseID uuid.UUID) {
	m.ExpenseID = &expenseID
}

// LinkIncome records the income that originated the movement
func (m *CashMovement) LinkIncome(incomeID uuid.UUID) {
	m.IncomeID = &incomeID
}

// AggregateMovements folds movement rows into per-type, per-currency totals.
// Refills are excluded: they are already reflected in the opening balance.
func AggregateMovements(movements []CashMovement) MovementTotals {
	var totals MovementTotals
	for _, m := range movements {
		switch m.Type {
		case MovementTypeIncome:
			totals.Income = totals.Income.Add(m.Currency, m.Amount)
		case MovementTypeExpense:
			totals.Expense = totals.Expense.Add(m.Currency, m.Amount)
		}
	}
	return totals
}
