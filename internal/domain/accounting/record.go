package accounting

import (
	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RecordType classifies a ledger entry
type RecordType string

const (
	RecordTypeFiscal RecordType = "FISCAL" // backed by a formal supplier document
	RecordTypeCash   RecordType = "CASH"   // backed by an internal VAL voucher
)

// String returns the string representation of RecordType
func (t RecordType) String() string {
	return string(t)
}

// MonthStatus represents the closure status of a fiscal month
type MonthStatus string

const (
	MonthStatusOpen   MonthStatus = "OPEN"
	MonthStatusClosed MonthStatus = "CLOSED"
)

// String returns the string representation of MonthStatus
func (s MonthStatus) String() string {
	return string(s)
}

// Record is the immutable ledger projection of a validated expense or
// income. Exactly one record exists per source; the snapshot fields are
// frozen at projection time and never follow later edits to the source.
type Record struct {
	shared.BaseEntity
	ExpenseID   *uuid.UUID           `json:"expense_id,omitempty"`
	IncomeID    *uuid.UUID           `json:"income_id,omitempty"`
	WorkID      uuid.UUID            `json:"work_id"`
	Type        RecordType           `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    valueobject.Currency `json:"currency"`
	Taxes       finance.TaxBreakdown `json:"taxes" gorm:"embedded"`
	Month       int                  `json:"month"`
	Year        int                  `json:"year"`
	MonthStatus MonthStatus          `json:"month_status"`
}

// NewRecordFromExpense builds the ledger snapshot of a validated expense
func NewRecordFromExpense(e *finance.Expense) (*Record, error) {
	if !e.IsValidated() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			"Only validated expenses project into the accounting ledger")
	}

	recordType := RecordTypeFiscal
	if e.DocumentType == finance.DocumentTypeVAL {
		recordType = RecordTypeCash
	}

	expenseID := e.ID
	return &Record{
		BaseEntity:  shared.NewBaseEntity(),
		ExpenseID:   &expenseID,
		WorkID:      e.WorkID,
		Type:        recordType,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Taxes:       e.Taxes,
		Month:       int(e.PurchaseDate.Month()),
		Year:        e.PurchaseDate.Year(),
		MonthStatus: MonthStatusOpen,
	}, nil
}

// NewRecordFromIncome builds the ledger snapshot of a validated income
func NewRecordFromIncome(i *finance.Income) (*Record, error) {
	if !i.IsValidated() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			"Only validated incomes project into the accounting ledger")
	}

	incomeID := i.ID
	return &Record{
		BaseEntity:  shared.NewBaseEntity(),
		IncomeID:    &incomeID,
		WorkID:      i.WorkID,
		Type:        RecordTypeFiscal,
		Amount:      i.Amount,
		Currency:    i.Currency,
		Month:       int(i.ReceivedAt.Month()),
		Year:        i.ReceivedAt.Year(),
		MonthStatus: MonthStatusOpen,
	}, nil
}

// IsClosed reports whether the record's fiscal month is closed
func (r *Record) IsClosed() bool {
	return r.MonthStatus == MonthStatusClosed
}
