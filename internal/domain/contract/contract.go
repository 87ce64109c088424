package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the status of a supplier contract
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusActive     Status = "ACTIVE"
	StatusLowBalance Status = "LOW_BALANCE"
	StatusNoBalance  Status = "NO_BALANCE"
	StatusPaused     Status = "PAUSED"
	StatusFinished   Status = "FINISHED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusActive, StatusLowBalance,
		StatusNoBalance, StatusPaused, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsSticky returns true for statuses that balance recomputation must not touch
func (s Status) IsSticky() bool {
	return s == StatusCancelled || s == StatusFinished || s == StatusPaused
}

// lowBalanceRatio is the saldo/total threshold below which a contract is
// flagged LOW_BALANCE.
var lowBalanceRatio = decimal.NewFromFloat(0.10)

// Contract represents a supplier contract tied to a work. AmountExecuted is
// the committed-balance ledger: it only moves through ApplyExecuted.
type Contract struct {
	shared.BaseAggregateRoot
	SupplierID     uuid.UUID            `json:"supplier_id"`
	WorkID         uuid.UUID            `json:"work_id"`
	Description    string               `json:"description"`
	AmountTotal    decimal.Decimal      `json:"amount_total"`
	AmountExecuted decimal.Decimal      `json:"amount_executed"`
	Currency       valueobject.Currency `json:"currency"`
	IsBlocked      bool                 `json:"is_blocked"`
	Status         Status               `json:"status"`
}

// NewContract creates a new contract in PENDING status
func NewContract(supplierID, workID uuid.UUID, description string, amountTotal decimal.Decimal, currency valueobject.Currency) (*Contract, error) {
	if amountTotal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Contract total amount must be positive")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeBadRequest, "Unsupported currency %q", currency)
	}
	return &Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		WorkID:            workID,
		Description:       description,
		AmountTotal:       amountTotal,
		AmountExecuted:    decimal.Zero,
		Currency:          currency,
		Status:            StatusPending,
	}, nil
}

// Saldo returns the remaining balance: amount_total - amount_executed
func (c *Contract) Saldo() decimal.Decimal {
	return c.AmountTotal.Sub(c.AmountExecuted)
}

// Available is an alias kept for call sites that speak in balance terms
func (c *Contract) Available() decimal.Decimal {
	return c.Saldo()
}

// ApplyExecutedResult describes the state changes produced by ApplyExecuted
type ApplyExecutedResult struct {
	// BecameBlocked is true only on the unblocked -> blocked transition.
	// Callers use it to suppress duplicate zero-balance alerts.
	BecameBlocked  bool
	PreviousStatus Status
}

// ApplyExecuted sets the executed amount to an absolute new value and
// recomputes blocking and status. Values above AmountTotal are accepted:
// the block is applied at or after the overshoot rather than rejected at
// the boundary.
func (c *Contract) ApplyExecuted(newExecuted decimal.Decimal) (ApplyExecutedResult, error) {
	if newExecuted.IsNegative() {
		return ApplyExecutedResult{}, shared.NewDomainError(shared.CodeInvalidAmount, "Executed amount cannot be negative")
	}

	res := ApplyExecutedResult{PreviousStatus: c.Status}
	wasBlocked := c.IsBlocked

	c.AmountExecuted = newExecuted
	saldo := c.Saldo()

	if saldo.LessThanOrEqual(decimal.Zero) {
		c.IsBlocked = true
		res.BecameBlocked = !wasBlocked
	}
	// A restored positive saldo does not unblock: only an explicit
	// Direction override may clear the flag.

	c.recomputeStatus(saldo)
	c.UpdatedAt = time.Now()
	return res, nil
}

// recomputeStatus derives the status from the balance unless sticky
func (c *Contract) recomputeStatus(saldo decimal.Decimal) {
	if c.Status.IsSticky() {
		return
	}
	switch {
	case saldo.LessThanOrEqual(decimal.Zero):
		c.Status = StatusNoBalance
	case c.AmountTotal.IsPositive() && saldo.Div(c.AmountTotal).LessThan(lowBalanceRatio):
		c.Status = StatusLowBalance
	default:
		c.Status = StatusActive
	}
}

// Unblock clears the blocked flag and recomputes the status. This is the
// Direction-level override; privilege is enforced by the caller.
func (c *Contract) Unblock() error {
	if !c.IsBlocked {
		return shared.NewDomainError(shared.CodeInvalidState, "Contract is not blocked")
	}
	c.IsBlocked = false
	c.recomputeStatus(c.Saldo())
	c.UpdatedAt = time.Now()
	return nil
}

// IsOverExecuted reports whether the executed amount exceeds the total
func (c *Contract) IsOverExecuted() bool {
	return c.AmountExecuted.GreaterThan(c.AmountTotal)
}
