package alert

import (
	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
)

// Severity grades how urgently an alert needs attention
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// Type names the condition that produced an alert. De-duplication keys on
// (type, entity id, unread).
type Type string

const (
	TypeContractZeroBalance        Type = "CONTRACT_ZERO_BALANCE"
	TypeContractInsufficientFunds  Type = "CONTRACT_INSUFFICIENT_FUNDS"
	TypeContractOverExecuted       Type = "CONTRACT_OVER_EXECUTED"
	TypeDuplicateInvoice           Type = "DUPLICATE_INVOICE"
	TypeExpenseObserved            Type = "EXPENSE_OBSERVED"
	TypeCashboxDifference          Type = "CASHBOX_DIFFERENCE"
	TypeCashboxDifferenceRejected  Type = "CASHBOX_DIFFERENCE_REJECTED"
	TypeSupplierARTExpiring        Type = "SUPPLIER_ART_EXPIRING"
)

// Alert is a persisted notification. Delivery is someone else's problem;
// this module only guarantees the row exists.
type Alert struct {
	shared.BaseEntity
	Type        Type       `json:"type"`
	Severity    Severity   `json:"severity"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	EntityType  string     `json:"entity_type,omitempty"`
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty"`
	Read        bool       `json:"read"`
}

// Draft is the creation contract exposed to every module: type, severity,
// human-readable title/message, and the correlated entity.
type Draft struct {
	Type        Type
	Severity    Severity
	Title       string
	Message     string
	EntityType  string
	EntityID    *uuid.UUID
	RecipientID *uuid.UUID
	// SkipDedup forces creation even when an unread alert of the same
	// type and entity exists. Used where every occurrence is distinct.
	SkipDedup bool
}

// New materializes a draft into an alert row
func New(d Draft) *Alert {
	return &Alert{
		BaseEntity:  shared.NewBaseEntity(),
		Type:        d.Type,
		Severity:    d.Severity,
		Title:       d.Title,
		Message:     d.Message,
		EntityType:  d.EntityType,
		EntityID:    d.EntityID,
		RecipientID: d.RecipientID,
	}
}

// MarkRead flags the alert as seen
func (a *Alert) MarkRead() {
	a.Read = true
	a.Touch()
}
