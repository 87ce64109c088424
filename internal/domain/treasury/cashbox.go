package treasury

import (
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CashboxStatus represents the status of a cashbox
type CashboxStatus string

const (
	CashboxStatusOpen   CashboxStatus = "OPEN"
	CashboxStatusClosed CashboxStatus = "CLOSED"
)

// String returns the string representation of CashboxStatus
func (s CashboxStatus) String() string {
	return string(s)
}

// Balances holds per-currency amounts for the two currencies the system books
type Balances struct {
	ARS decimal.Decimal `json:"ars"`
	USD decimal.Decimal `json:"usd"`
}

// Get returns the amount for a currency
func (b Balances) Get(c valueobject.Currency) decimal.Decimal {
	if c == valueobject.USD {
		return b.USD
	}
	return b.ARS
}

// Set returns a copy with the amount for a currency replaced
func (b Balances) Set(c valueobject.Currency, amount decimal.Decimal) Balances {
	if c == valueobject.USD {
		b.USD = amount
	} else {
		b.ARS = amount
	}
	return b
}

// Add returns a copy with the amount for a currency incremented
func (b Balances) Add(c valueobject.Currency, amount decimal.Decimal) Balances {
	return b.Set(c, b.Get(c).Add(amount))
}

// MovementTotals aggregates movement amounts by type and currency
type MovementTotals struct {
	Income  Balances
	Expense Balances
}

// Alert severity thresholds for closing differences.
var (
	criticalDiffARS = decimal.NewFromInt(1000)
	criticalDiffUSD = decimal.NewFromInt(100)
)

// DifferenceIsCritical reports whether a closing difference crosses the
// critical alert threshold for its currency
func DifferenceIsCritical(c valueobject.Currency, diff decimal.Decimal) bool {
	if c == valueobject.USD {
		return diff.Abs().GreaterThan(criticalDiffUSD)
	}
	return diff.Abs().GreaterThan(criticalDiffARS)
}

// Cashbox represents a user's cash register. At most one cashbox per user
// may be OPEN at any time; the movement rows are the append-only source of
// truth aggregated at close time.
type Cashbox struct {
	shared.BaseAggregateRoot
	UserID             uuid.UUID     `json:"user_id"`
	Status             CashboxStatus `json:"status"`
	OpenedAt           time.Time     `json:"opened_at"`
	ClosedAt           *time.Time    `json:"closed_at,omitempty"`
	OpeningBalances    Balances      `json:"opening_balances" gorm:"embedded;embeddedPrefix:opening_"`
	ClosingBalances    Balances      `json:"closing_balances" gorm:"embedded;embeddedPrefix:closing_"`
	Differences        Balances      `json:"differences" gorm:"embedded;embeddedPrefix:diff_"`
	DifferenceApproved bool          `json:"difference_approved"`
	ApprovedBy         *uuid.UUID    `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time    `json:"approved_at,omitempty"`
}

// NewCashbox opens a new cashbox for a user with the given opening balances
func NewCashbox(userID uuid.UUID, opening Balances) (*Cashbox, error) {
	if opening.ARS.IsNegative() || opening.USD.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Opening balances cannot be negative")
	}
	return &Cashbox{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            CashboxStatusOpen,
		OpenedAt:          time.Now(),
		OpeningBalances:   opening,
	}, nil
}

// IsOpen returns true if the cashbox is OPEN
func (c *Cashbox) IsOpen() bool {
	return c.Status == CashboxStatusOpen
}

// ComputeDifference returns closing - (opening + income - expense) for one
// currency over the given totals
func (c *Cashbox) ComputeDifference(currency valueobject.Currency, closing decimal.Decimal, totals MovementTotals) decimal.Decimal {
	expected := c.OpeningBalances.Get(currency).
		Add(totals.Income.Get(currency)).
		Sub(totals.Expense.Get(currency))
	return closing.Sub(expected)
}

// Close reconciles the cashbox against the aggregated movement totals and
// the declared closing balances
func (c *Cashbox) Close(closing Balances, totals MovementTotals) error {
	if !c.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cashbox is not open")
	}

	now := time.Now()
	c.ClosingBalances = closing
	c.Differences = Balances{
		ARS: c.ComputeDifference(valueobject.ARS, closing.ARS, totals),
		USD: c.ComputeDifference(valueobject.USD, closing.USD, totals),
	}
	c.Status = CashboxStatusClosed
	c.ClosedAt = &now
	c.UpdatedAt = now
	return nil
}

// Reopen puts a closed cashbox back in OPEN state. Balances are left
// untouched and recomputed on the next close.
func (c *Cashbox) Reopen() error {
	if c.Status != CashboxStatusClosed {
		return shared.NewDomainError(shared.CodeInvalidState, "Only a closed cashbox can be reopened")
	}
	c.Status = CashboxStatusOpen
	c.ClosedAt = nil
	c.Touch()
	return nil
}

// ApplyRefill increments the opening balance for the refilled currency
func (c *Cashbox) ApplyRefill(currency valueobject.Currency, amount decimal.Decimal) error {
	if !c.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cashbox must be open to refill")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Refill amount must be positive")
	}
	c.OpeningBalances = c.OpeningBalances.Add(currency, amount)
	c.Touch()
	return nil
}

// ApplyAdjustment shifts the closing balance of a closed cashbox, recomputes
// the difference for that currency from the given movement totals, and voids
// any prior difference approval. The totals must already include the
// correcting movement that records the adjustment.
func (c *Cashbox) ApplyAdjustment(currency valueobject.Currency, amount decimal.Decimal, totals MovementTotals) error {
	if c.Status != CashboxStatusClosed {
		return shared.NewDomainError(shared.CodeInvalidState, "Manual adjustments require a closed cashbox")
	}
	if amount.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Adjustment amount cannot be zero")
	}

	c.ClosingBalances = c.ClosingBalances.Add(currency, amount)
	c.Differences = c.Differences.Set(currency,
		c.ComputeDifference(currency, c.ClosingBalances.Get(currency), totals))
	c.DifferenceApproved = false
	c.ApprovedBy = nil
	c.ApprovedAt = nil
	c.Touch()
	return nil
}

// ApproveDifference marks the closing difference as reviewed and accepted
func (c *Cashbox) ApproveDifference(approverID uuid.UUID) error {
	if c.Status != CashboxStatusClosed {
		return shared.NewDomainError(shared.CodeInvalidState, "Only a closed cashbox has differences to approve")
	}
	now := time.Now()
	c.DifferenceApproved = true
	c.ApprovedBy = &approverID
	c.ApprovedAt = &now
	c.UpdatedAt = now
	return nil
}

// RejectDifference clears any prior approval
func (c *Cashbox) RejectDifference() error {
	if c.Status != CashboxStatusClosed {
		return shared.NewDomainError(shared.CodeInvalidState, "Only a closed cashbox has differences to reject")
	}
	c.DifferenceApproved = false
	c.ApprovedBy = nil
	c.ApprovedAt = nil
	c.Touch()
	return nil
}

// HasUnapprovedDifference reports a non-zero difference lacking approval
func (c *Cashbox) HasUnapprovedDifference() bool {
	if c.DifferenceApproved {
		return false
	}
	return !c.Differences.ARS.IsZero() || !c.Differences.USD.IsZero()
}
