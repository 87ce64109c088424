package models

import (
	"github.com/obrafin/backend/internal/domain/accounting"
	"github.com/obrafin/backend/internal/domain/alert"
	"github.com/obrafin/backend/internal/domain/contract"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/treasury"
	"github.com/obrafin/backend/internal/domain/worksite"
)

// The domain aggregates carry their own gorm tags, so the models here only
// pin the table names. Field mapping follows gorm's default snake_case
// convention.

// ExpenseModel maps finance.Expense to the expenses table
type ExpenseModel struct {
	finance.Expense
}

// TableName returns the table name
func (ExpenseModel) TableName() string { return "expenses" }

// IncomeModel maps finance.Income to the incomes table
type IncomeModel struct {
	finance.Income
}

// TableName returns the table name
func (IncomeModel) TableName() string { return "incomes" }

// ContractModel maps contract.Contract to the contracts table
type ContractModel struct {
	contract.Contract
}

// TableName returns the table name
func (ContractModel) TableName() string { return "contracts" }

// CashboxModel maps treasury.Cashbox to the cashboxes table
type CashboxModel struct {
	treasury.Cashbox
}

// TableName returns the table name
func (CashboxModel) TableName() string { return "cashboxes" }

// CashMovementModel maps treasury.CashMovement to the cash_movements table
type CashMovementModel struct {
	treasury.CashMovement
}

// TableName returns the table name
func (CashMovementModel) TableName() string { return "cash_movements" }

// RecordModel maps accounting.Record to the accounting_records table
type RecordModel struct {
	accounting.Record
}

// TableName returns the table name
func (RecordModel) TableName() string { return "accounting_records" }

// AlertModel maps alert.Alert to the alerts table
type AlertModel struct {
	alert.Alert
}

// TableName returns the table name
func (AlertModel) TableName() string { return "alerts" }

// WorkModel maps worksite.Work to the works table
type WorkModel struct {
	worksite.Work
}

// TableName returns the table name
func (WorkModel) TableName() string { return "works" }

// SupplierModel maps worksite.Supplier to the suppliers table
type SupplierModel struct {
	worksite.Supplier
}

// TableName returns the table name
func (SupplierModel) TableName() string { return "suppliers" }
