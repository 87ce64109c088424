package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DocumentType represents the supporting document of an expense
type DocumentType string

const (
	DocumentTypeInvoiceA DocumentType = "INVOICE_A"
	DocumentTypeInvoiceB DocumentType = "INVOICE_B"
	DocumentTypeInvoiceC DocumentType = "INVOICE_C"
	DocumentTypeTicket   DocumentType = "TICKET"
	DocumentTypeVAL      DocumentType = "VAL" // internal cash voucher, auto-numbered
)

// IsValid checks if the document type is a valid DocumentType
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeInvoiceA, DocumentTypeInvoiceB, DocumentTypeInvoiceC,
		DocumentTypeTicket, DocumentTypeVAL:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (d DocumentType) String() string {
	return string(d)
}

// ExpenseState represents the state of an expense in its lifecycle
type ExpenseState string

const (
	ExpenseStatePending   ExpenseState = "PENDING"
	ExpenseStateValidated ExpenseState = "VALIDATED"
	ExpenseStateObserved  ExpenseState = "OBSERVED"
	ExpenseStateAnnulled  ExpenseState = "ANNULLED"
	ExpenseStateRejected  ExpenseState = "REJECTED"
)

// IsValid checks if the state is a valid ExpenseState
func (s ExpenseState) IsValid() bool {
	switch s {
	case ExpenseStatePending, ExpenseStateValidated, ExpenseStateObserved,
		ExpenseStateAnnulled, ExpenseStateRejected:
		return true
	}
	return false
}

// String returns the string representation of ExpenseState
func (s ExpenseState) String() string {
	return string(s)
}

// IsTerminal returns true for states that admit no further transitions
func (s ExpenseState) IsTerminal() bool {
	return s == ExpenseStateAnnulled || s == ExpenseStateRejected
}

// transitions lists the states reachable from each non-terminal state
var transitions = map[ExpenseState][]ExpenseState{
	ExpenseStatePending:   {ExpenseStateValidated, ExpenseStateObserved, ExpenseStateAnnulled},
	ExpenseStateValidated: {ExpenseStateObserved, ExpenseStateAnnulled},
	ExpenseStateObserved:  {ExpenseStateValidated, ExpenseStateAnnulled},
}

// CanTransitionTo reports whether target is reachable from s
func (s ExpenseState) CanTransitionTo(target ExpenseState) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Expense represents a project expense. State transitions happen only
// through the lifecycle service; the aggregate enforces the guards.
type Expense struct {
	shared.BaseAggregateRoot
	WorkID          uuid.UUID            `json:"work_id"`
	SupplierID      *uuid.UUID           `json:"supplier_id,omitempty"`
	ContractID      *uuid.UUID           `json:"contract_id,omitempty"`
	Amount          decimal.Decimal      `json:"amount"`
	Currency        valueobject.Currency `json:"currency"`
	DocumentType    DocumentType         `json:"document_type"`
	DocumentNumber  string               `json:"document_number"`
	PurchaseDate    time.Time            `json:"purchase_date"`
	Description     string               `json:"description"`
	State           ExpenseState         `json:"state"`
	PostClosure     bool                 `json:"post_closure"`
	Taxes           TaxBreakdown         `json:"taxes" gorm:"embedded"`
	ValidatedAt     *time.Time           `json:"validated_at,omitempty"`
	ValidatedBy     *uuid.UUID           `json:"validated_by,omitempty"`
	RejectedAt      *time.Time           `json:"rejected_at,omitempty"`
	RejectedBy      *uuid.UUID           `json:"rejected_by,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
}

// NewExpense creates a new expense in PENDING state
func NewExpense(
	workID uuid.UUID,
	supplierID *uuid.UUID,
	amount valueobject.Money,
	documentType DocumentType,
	documentNumber string,
	purchaseDate time.Time,
	description string,
) (*Expense, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Expense amount must be positive")
	}
	if !documentType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeBadRequest, "Unknown document type %q", documentType)
	}
	if documentType != DocumentTypeVAL && documentNumber == "" {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Document number is required")
	}
	if purchaseDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Purchase date is required")
	}

	return &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WorkID:            workID,
		SupplierID:        supplierID,
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		DocumentType:      documentType,
		DocumentNumber:    documentNumber,
		PurchaseDate:      purchaseDate,
		Description:       description,
		State:             ExpenseStatePending,
	}, nil
}

// SetTaxes stores the tax breakdown computed at creation
func (e *Expense) SetTaxes(t TaxBreakdown) {
	e.Taxes = t
	e.Touch()
}

// AttachContract links the expense to the contract consuming its amount
func (e *Expense) AttachContract(contractID uuid.UUID) {
	e.ContractID = &contractID
	e.Touch()
}

// MarkPostClosure flags the expense as created after the work's closure
func (e *Expense) MarkPostClosure() {
	e.PostClosure = true
	e.Touch()
}

// TransitionTo moves the expense to target, recording the actor. The guard
// rejects transitions out of terminal states and unknown edges.
func (e *Expense) TransitionTo(target ExpenseState, actorID uuid.UUID) error {
	if !target.IsValid() {
		return shared.NewDomainErrorf(shared.CodeBadRequest, "Unknown expense state %q", target)
	}
	if e.State.IsTerminal() {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Expense in %s state cannot be re-validated", e.State)
	}
	if !e.State.CanTransitionTo(target) {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Cannot transition expense from %s to %s", e.State, target)
	}

	now := time.Now()
	e.State = target
	if target == ExpenseStateValidated {
		e.ValidatedAt = &now
		e.ValidatedBy = &actorID
	}
	e.UpdatedAt = now
	return nil
}

// Reject moves the expense to the terminal REJECTED state. A reason is
// mandatory.
func (e *Expense) Reject(actorID uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewDomainError(shared.CodeBadRequest, "Rejection reason is required")
	}
	if e.State.IsTerminal() {
		return shared.NewDomainErrorf(shared.CodeInvalidState,
			"Expense in %s state cannot be rejected", e.State)
	}

	now := time.Now()
	e.State = ExpenseStateRejected
	e.RejectedAt = &now
	e.RejectedBy = &actorID
	e.RejectionReason = reason
	e.UpdatedAt = now
	return nil
}

// IsValidated returns true if the expense is in VALIDATED state
func (e *Expense) IsValidated() bool {
	return e.State == ExpenseStateValidated
}

// IsPending returns true if the expense is in PENDING state
func (e *Expense) IsPending() bool {
	return e.State == ExpenseStatePending
}

// Money returns the expense amount as Money
func (e *Expense) Money() valueobject.Money {
	m, _ := valueobject.NewMoney(e.Amount, e.Currency)
	return m
}
