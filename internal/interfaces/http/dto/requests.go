package dto

// CreateExpenseRequest represents the payload to create an expense
type CreateExpenseRequest struct {
	WorkID         string  `json:"work_id" binding:"required,uuid"`
	SupplierID     *string `json:"supplier_id" binding:"omitempty,uuid"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	Currency       string  `json:"currency" binding:"required,oneof=ARS USD"`
	DocumentType   string  `json:"document_type" binding:"required,oneof=INVOICE_A INVOICE_B INVOICE_C TICKET VAL"`
	DocumentNumber string  `json:"document_number"`
	PurchaseDate   string  `json:"purchase_date" binding:"required,datetime=2006-01-02"`
	Description    string  `json:"description" binding:"max=500"`
}

// TransitionExpenseRequest represents a state-machine transition request
type TransitionExpenseRequest struct {
	Target string `json:"target" binding:"required,oneof=VALIDATED OBSERVED ANNULLED"`
}

// RejectExpenseRequest represents an expense rejection
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CreateIncomeRequest represents the payload to register an income
type CreateIncomeRequest struct {
	WorkID      string  `json:"work_id" binding:"required,uuid"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"required,oneof=ARS USD"`
	ReceiptDate string  `json:"receipt_date" binding:"required,datetime=2006-01-02"`
	Description string  `json:"description" binding:"max=500"`
}

// CreateContractRequest represents the payload to create a contract
type CreateContractRequest struct {
	SupplierID  string  `json:"supplier_id" binding:"required,uuid"`
	WorkID      string  `json:"work_id" binding:"required,uuid"`
	Description string  `json:"description" binding:"max=500"`
	AmountTotal float64 `json:"amount_total" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"required,oneof=ARS USD"`
}

// UpdateExecutedRequest sets a contract's executed amount to an absolute value
type UpdateExecutedRequest struct {
	AmountExecuted float64 `json:"amount_executed" binding:"gte=0"`
}

// OpenCashboxRequest represents the payload to open a cashbox session
type OpenCashboxRequest struct {
	OpeningARS float64 `json:"opening_ars" binding:"gte=0"`
	OpeningUSD float64 `json:"opening_usd" binding:"gte=0"`
}

// CloseCashboxRequest carries the declared closing balances
type CloseCashboxRequest struct {
	ClosingARS float64 `json:"closing_ars" binding:"gte=0"`
	ClosingUSD float64 `json:"closing_usd" binding:"gte=0"`
}

// RegisterMovementRequest appends a movement to an open cashbox
type RegisterMovementRequest struct {
	Type        string  `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"required,oneof=ARS USD"`
	Description string  `json:"description" binding:"max=500"`
	ExpenseID   *string `json:"expense_id" binding:"omitempty,uuid"`
	IncomeID    *string `json:"income_id" binding:"omitempty,uuid"`
}

// RefillCashboxRequest adds funds to an open cashbox
type RefillCashboxRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"required,oneof=ARS USD"`
	Description string  `json:"description" binding:"max=500"`
}

// AdjustCashboxRequest shifts the closing balance of a closed cashbox by a
// signed amount, recorded as a correcting movement with the given reason
type AdjustCashboxRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency" binding:"required,oneof=ARS USD"`
	Reason   string  `json:"reason" binding:"required,max=500"`
}

// PeriodRequest identifies a fiscal month
type PeriodRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000,max=2200"`
}
