package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	accountingapp "github.com/obrafin/backend/internal/application/accounting"
	alertapp "github.com/obrafin/backend/internal/application/alert"
	contractapp "github.com/obrafin/backend/internal/application/contract"
	"github.com/obrafin/backend/internal/domain/alert"
	"github.com/obrafin/backend/internal/domain/contract"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/domain/worksite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// artExpiryWarningWindow is how far ahead a supplier's lapsing ART document
// raises a warning at expense creation.
const artExpiryWarningWindow = 30 * 24 * time.Hour

// ExpenseService drives the expense lifecycle: creation gates, the
// validation state machine, contract-ledger orchestration and accounting
// projection. Each mutating operation runs in one transaction; alerts are
// flushed only after commit.
type ExpenseService struct {
	db        *gorm.DB
	expenses  finance.ExpenseRepository
	contracts contract.Repository
	works     worksite.WorkRepository
	suppliers worksite.SupplierRepository
	ledger    *contractapp.LedgerService
	projector *accountingapp.ProjectionService
	alerts    *alertapp.Emitter
	logger    *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	db *gorm.DB,
	expenses finance.ExpenseRepository,
	contracts contract.Repository,
	works worksite.WorkRepository,
	suppliers worksite.SupplierRepository,
	ledger *contractapp.LedgerService,
	projector *accountingapp.ProjectionService,
	alerts *alertapp.Emitter,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		db:        db,
		expenses:  expenses,
		contracts: contracts,
		works:     works,
		suppliers: suppliers,
		ledger:    ledger,
		projector: projector,
		alerts:    alerts,
		logger:    logger,
	}
}

// CreateExpenseRequest represents a request to create an expense
type CreateExpenseRequest struct {
	WorkID         uuid.UUID
	SupplierID     *uuid.UUID
	Amount         decimal.Decimal
	Currency       valueobject.Currency
	DocumentType   finance.DocumentType
	DocumentNumber string
	PurchaseDate   time.Time
	Description    string
	CreatedBy      uuid.UUID
}

// Create registers a new PENDING expense. Closed works refuse expenses
// unless post-closure loading is explicitly enabled; blocked suppliers and
// lapsed ART documents refuse them outright.
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*finance.Expense, error) {
	work, err := s.works.FindByID(ctx, req.WorkID)
	if err != nil {
		return nil, err
	}
	if !work.AcceptsExpenses() {
		return nil, shared.NewDomainErrorf(shared.CodeBadRequest,
			"Work %q is closed and does not accept post-closure expenses", work.Name)
	}

	amount, err := valueobject.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeBadRequest, err.Error())
	}

	expense, err := finance.NewExpense(
		req.WorkID, req.SupplierID, amount,
		req.DocumentType, req.DocumentNumber, req.PurchaseDate, req.Description,
	)
	if err != nil {
		return nil, err
	}
	expense.SetCreatedBy(req.CreatedBy)
	if work.IsPostClosure() {
		expense.MarkPostClosure()
	}

	batch := s.alerts.NewBatch()
	now := time.Now()
	if req.SupplierID != nil {
		supplier, err := s.suppliers.FindByID(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		if !supplier.CanReceiveExpenses(now) {
			return nil, shared.NewDomainErrorf(shared.CodeBadRequest,
				"Supplier %q is blocked or has an expired ART document", supplier.Name)
		}
		if supplier.ARTExpiringSoon(now, artExpiryWarningWindow) {
			id := supplier.ID
			batch.Add(alert.Draft{
				Type:     alert.TypeSupplierARTExpiring,
				Severity: alert.SeverityWarning,
				Title:    "Supplier ART document expiring",
				Message: fmt.Sprintf("The ART document of supplier %q expires on %s",
					supplier.Name, supplier.ARTExpiresAt.Format("2006-01-02")),
				EntityType: "supplier",
				EntityID:   &id,
			})
		}
		expense.SetTaxes(finance.CalculateTaxes(req.Amount, supplier.FiscalCondition, req.DocumentType))
	}

	if req.DocumentType == finance.DocumentTypeVAL {
		number, err := s.expenses.GenerateVoucherNumber(ctx)
		if err != nil {
			return nil, err
		}
		expense.DocumentNumber = number
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}
	batch.Flush(ctx)

	s.logger.Info("expense created",
		zap.String("expense_id", expense.ID.String()),
		zap.String("work_id", expense.WorkID.String()),
		zap.String("document", expense.DocumentNumber),
		zap.String("amount", expense.Amount.String()),
	)
	return expense, nil
}

// Validate drives the expense state machine towards target. Transitions to
// VALIDATED commit against the contract ledger and project an accounting
// record; transitions away from VALIDATED reverse the commitment. The whole
// operation is one transaction - a failure after any step persists nothing.
func (s *ExpenseService) Validate(ctx context.Context, expenseID uuid.UUID, target finance.ExpenseState, actor identity.Actor) (*finance.Expense, error) {
	if !identity.Can(actor.Role, identity.ActionValidateExpense) {
		return nil, shared.ErrForbidden
	}

	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if target == finance.ExpenseStateValidated {
		if err := s.checkDuplicateInvoice(ctx, expense, actor); err != nil {
			return nil, err
		}
	}

	previous := expense.State
	batch := s.alerts.NewBatch()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case target == finance.ExpenseStateValidated:
			if err := s.commitAgainstContract(ctx, tx, batch, expense); err != nil {
				return err
			}
		case previous == finance.ExpenseStateValidated:
			if err := s.reverseContractCommitment(ctx, tx, batch, expense); err != nil {
				return err
			}
		}

		if err := expense.TransitionTo(target, actor.ID); err != nil {
			return err
		}
		if err := s.expenses.WithTx(tx).SaveWithLock(ctx, expense); err != nil {
			return err
		}

		if target == finance.ExpenseStateValidated {
			if _, err := s.projector.ProjectExpenseInTx(ctx, tx, expense, actor.Role); err != nil {
				return err
			}
		}

		if target == finance.ExpenseStateObserved {
			id := expense.ID
			batch.Add(alert.Draft{
				Type:     alert.TypeExpenseObserved,
				Severity: alert.SeverityWarning,
				Title:    "Expense observed",
				Message: fmt.Sprintf("Expense %s (%s) was observed during review",
					expense.DocumentNumber, expense.Money()),
				EntityType:  "expense",
				EntityID:    &id,
				RecipientID: expense.CreatedBy,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	batch.Flush(ctx)

	s.logger.Info("expense transitioned",
		zap.String("expense_id", expense.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("actor", actor.ID.String()),
	)
	return expense, nil
}

// Reject moves an expense to the terminal REJECTED state with a mandatory
// reason, reversing any prior contract commitment.
func (s *ExpenseService) Reject(ctx context.Context, expenseID uuid.UUID, reason string, actor identity.Actor) (*finance.Expense, error) {
	if !identity.Can(actor.Role, identity.ActionValidateExpense) {
		return nil, shared.ErrForbidden
	}

	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	previous := expense.State
	batch := s.alerts.NewBatch()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if previous == finance.ExpenseStateValidated {
			if err := s.reverseContractCommitment(ctx, tx, batch, expense); err != nil {
				return err
			}
		}
		if err := expense.Reject(actor.ID, reason); err != nil {
			return err
		}
		return s.expenses.WithTx(tx).SaveWithLock(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	batch.Flush(ctx)

	s.logger.Info("expense rejected",
		zap.String("expense_id", expense.ID.String()),
		zap.String("reason", reason),
		zap.String("actor", actor.ID.String()),
	)
	return expense, nil
}

// checkDuplicateInvoice raises a warning alert whenever another pending or
// validated expense shares the supplier, document number and purchase date.
// The alert fires for every actor; only the top privilege tier may proceed
// past it.
func (s *ExpenseService) checkDuplicateInvoice(ctx context.Context, expense *finance.Expense, actor identity.Actor) error {
	if expense.SupplierID == nil || expense.DocumentNumber == "" {
		return nil
	}

	duplicates, err := s.expenses.FindDuplicates(ctx, expense)
	if err != nil {
		return err
	}
	if len(duplicates) == 0 {
		return nil
	}

	id := expense.ID
	msg := fmt.Sprintf("Document %s from supplier %s dated %s matches %d existing expense(s)",
		expense.DocumentNumber, expense.SupplierID, expense.PurchaseDate.Format("2006-01-02"), len(duplicates))

	// The warning is emitted immediately: validation may abort, and the
	// operator must still see the finding.
	s.alerts.Emit(ctx, alert.Draft{
		Type:       alert.TypeDuplicateInvoice,
		Severity:   alert.SeverityWarning,
		Title:      "Possible duplicate invoice",
		Message:    msg,
		EntityType: "expense",
		EntityID:   &id,
	})

	if !identity.Can(actor.Role, identity.ActionOverrideDuplicateInvoice) {
		return shared.NewDomainError(shared.CodeDuplicateInvoice, msg)
	}

	s.logger.Warn("duplicate invoice overridden",
		zap.String("expense_id", expense.ID.String()),
		zap.String("actor", actor.ID.String()),
	)
	return nil
}

// commitAgainstContract attaches the matching unblocked contract (if any)
// and books the expense amount against its ledger. Insufficient balance
// aborts the transaction and surfaces a critical alert after rollback.
func (s *ExpenseService) commitAgainstContract(ctx context.Context, tx *gorm.DB, batch *alertapp.Batch, expense *finance.Expense) error {
	if expense.ContractID == nil && expense.SupplierID != nil {
		c, err := s.contracts.WithTx(tx).FindUnblockedBySupplierAndWork(ctx, *expense.SupplierID, expense.WorkID)
		if err != nil {
			return err
		}
		if c != nil {
			expense.AttachContract(c.ID)
		}
	}
	if expense.ContractID == nil {
		return nil
	}

	c, err := s.contracts.WithTx(tx).FindByIDForUpdate(ctx, *expense.ContractID)
	if err != nil {
		return err
	}

	available := c.Available()
	if available.LessThan(expense.Amount) {
		id := c.ID
		// Bypass dedup: every refused validation is a distinct event.
		s.alerts.Emit(ctx, alert.Draft{
			Type:     alert.TypeContractInsufficientFunds,
			Severity: alert.SeverityCritical,
			Title:    "Insufficient contract balance",
			Message: fmt.Sprintf("Contract %s has %s available but expense %s needs %s",
				c.ID, available.StringFixed(2), expense.DocumentNumber, expense.Amount.StringFixed(2)),
			EntityType: "contract",
			EntityID:   &id,
			SkipDedup:  true,
		})
		return shared.NewDomainErrorf(shared.CodeInsufficientBalance,
			"Contract balance %s is insufficient for expense amount %s",
			available.StringFixed(2), expense.Amount.StringFixed(2))
	}

	_, err = s.ledger.ApplyExecutedInTx(ctx, tx, batch, c.ID, c.AmountExecuted.Add(expense.Amount))
	return err
}

// reverseContractCommitment returns a previously committed amount to the
// contract. The executed amount never drops below zero.
func (s *ExpenseService) reverseContractCommitment(ctx context.Context, tx *gorm.DB, batch *alertapp.Batch, expense *finance.Expense) error {
	if expense.ContractID == nil {
		return nil
	}

	c, err := s.contracts.WithTx(tx).FindByIDForUpdate(ctx, *expense.ContractID)
	if err != nil {
		return err
	}

	newExecuted := c.AmountExecuted.Sub(expense.Amount)
	if newExecuted.IsNegative() {
		newExecuted = decimal.Zero
	}

	_, err = s.ledger.ReverseExecutedInTx(ctx, tx, batch, c.ID, newExecuted)
	return err
}

// GetByID returns an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	return s.expenses.FindByID(ctx, id)
}

// List returns expenses matching the filter
func (s *ExpenseService) List(ctx context.Context, filter finance.ExpenseFilter) ([]finance.Expense, int64, error) {
	filter.Normalize()
	items, err := s.expenses.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenses.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
