package treasury

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	alertapp "github.com/obrafin/backend/internal/application/alert"
	"github.com/obrafin/backend/internal/domain/alert"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/domain/treasury"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CashboxService manages cashbox sessions: opening, movement registration,
// refills, closing reconciliation and difference approval.
type CashboxService struct {
	db        *gorm.DB
	cashboxes treasury.CashboxRepository
	movements treasury.MovementRepository
	alerts    *alertapp.Emitter
	logger    *zap.Logger
}

// NewCashboxService creates a new CashboxService
func NewCashboxService(
	db *gorm.DB,
	cashboxes treasury.CashboxRepository,
	movements treasury.MovementRepository,
	alerts *alertapp.Emitter,
	logger *zap.Logger,
) *CashboxService {
	return &CashboxService{
		db:        db,
		cashboxes: cashboxes,
		movements: movements,
		alerts:    alerts,
		logger:    logger,
	}
}

// Open starts a cashbox session for a user. A user holds at most one open
// cashbox at a time.
func (s *CashboxService) Open(ctx context.Context, userID uuid.UUID, opening treasury.Balances) (*treasury.Cashbox, error) {
	existing, err := s.cashboxes.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState,
			"User already has an open cashbox (%s)", existing.ID)
	}

	box, err := treasury.NewCashbox(userID, opening)
	if err != nil {
		return nil, err
	}
	box.SetCreatedBy(userID)

	if err := s.cashboxes.Save(ctx, box); err != nil {
		return nil, err
	}

	s.logger.Info("cashbox opened",
		zap.String("cashbox_id", box.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("opening_ars", opening.ARS.String()),
		zap.String("opening_usd", opening.USD.String()),
	)
	return box, nil
}

// RegisterMovementRequest represents a request to append a movement
type RegisterMovementRequest struct {
	CashboxID   uuid.UUID
	Type        treasury.MovementType
	Amount      decimal.Decimal
	Currency    valueobject.Currency
	Description string
	ExpenseID   *uuid.UUID
	IncomeID    *uuid.UUID
	CreatedBy   uuid.UUID
}

// RegisterMovement appends an income or expense movement to an open cashbox
func (s *CashboxService) RegisterMovement(ctx context.Context, req RegisterMovementRequest) (*treasury.CashMovement, error) {
	box, err := s.cashboxes.FindByID(ctx, req.CashboxID)
	if err != nil {
		return nil, err
	}
	if !box.IsOpen() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Cashbox is not open")
	}
	if req.Type == treasury.MovementTypeRefill {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Refills go through the refill operation")
	}

	movement, err := treasury.NewCashMovement(req.CashboxID, req.Type, req.Amount, req.Currency, req.Description)
	if err != nil {
		return nil, err
	}
	if req.ExpenseID != nil {
		movement.LinkExpense(*req.ExpenseID)
	}
	if req.IncomeID != nil {
		movement.LinkIncome(*req.IncomeID)
	}

	if err := s.movements.Create(ctx, movement); err != nil {
		return nil, err
	}

	s.logger.Debug("cash movement registered",
		zap.String("cashbox_id", req.CashboxID.String()),
		zap.String("type", string(req.Type)),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", string(req.Currency)),
	)
	return movement, nil
}

// Refill adds funds to an open cashbox. The movement row and the opening
// balance bump commit together.
func (s *CashboxService) Refill(ctx context.Context, cashboxID uuid.UUID, currency valueobject.Currency, amount decimal.Decimal, description string) (*treasury.Cashbox, error) {
	box, err := s.cashboxes.FindByID(ctx, cashboxID)
	if err != nil {
		return nil, err
	}

	if err := box.ApplyRefill(currency, amount); err != nil {
		return nil, err
	}

	movement, err := treasury.NewCashMovement(cashboxID, treasury.MovementTypeRefill, amount, currency, description)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.movements.WithTx(tx).Create(ctx, movement); err != nil {
			return err
		}
		return s.cashboxes.WithTx(tx).Save(ctx, box)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cashbox refilled",
		zap.String("cashbox_id", cashboxID.String()),
		zap.String("amount", amount.String()),
		zap.String("currency", string(currency)),
	)
	return box, nil
}

// Close reconciles an open cashbox against its movements and the declared
// closing balances. A non-zero difference raises an alert whose severity
// depends on the per-currency threshold.
func (s *CashboxService) Close(ctx context.Context, cashboxID uuid.UUID, closing treasury.Balances) (*treasury.Cashbox, error) {
	box, err := s.cashboxes.FindByID(ctx, cashboxID)
	if err != nil {
		return nil, err
	}

	movements, err := s.movements.FindByCashbox(ctx, cashboxID)
	if err != nil {
		return nil, err
	}
	totals := treasury.AggregateMovements(movements)

	if err := box.Close(closing, totals); err != nil {
		return nil, err
	}

	batch := s.alerts.NewBatch()
	s.queueDifferenceAlerts(batch, box)

	if err := s.cashboxes.Save(ctx, box); err != nil {
		return nil, err
	}
	batch.Flush(ctx)

	s.logger.Info("cashbox closed",
		zap.String("cashbox_id", box.ID.String()),
		zap.String("diff_ars", box.Differences.ARS.String()),
		zap.String("diff_usd", box.Differences.USD.String()),
	)
	return box, nil
}

// queueDifferenceAlerts queues one alert per currency with a non-zero
// closing difference
func (s *CashboxService) queueDifferenceAlerts(batch *alertapp.Batch, box *treasury.Cashbox) {
	for _, currency := range valueobject.Currencies {
		diff := box.Differences.Get(currency)
		if diff.IsZero() {
			continue
		}
		severity := alert.SeverityWarning
		if treasury.DifferenceIsCritical(currency, diff) {
			severity = alert.SeverityCritical
		}
		id := box.ID
		batch.Add(alert.Draft{
			Type:     alert.TypeCashboxDifference,
			Severity: severity,
			Title:    "Cashbox closing difference",
			Message: fmt.Sprintf("Cashbox %s closed with a difference of %s %s",
				box.ID, currency, diff.StringFixed(2)),
			EntityType: "cashbox",
			EntityID:   &id,
			SkipDedup:  true,
		})
	}
}

// Reopen puts a closed cashbox back in service. The one-open-box-per-user
// invariant holds here too: the owner must not have another open cashbox.
func (s *CashboxService) Reopen(ctx context.Context, cashboxID uuid.UUID, actor identity.Actor) (*treasury.Cashbox, error) {
	if !identity.Can(actor.Role, identity.ActionApproveCashDifference) {
		return nil, shared.ErrForbidden
	}

	box, err := s.cashboxes.FindByID(ctx, cashboxID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cashboxes.FindOpenByUser(ctx, box.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState,
			"User already has an open cashbox (%s)", existing.ID)
	}

	if err := box.Reopen(); err != nil {
		return nil, err
	}
	if err := s.cashboxes.Save(ctx, box); err != nil {
		return nil, err
	}

	s.logger.Info("cashbox reopened",
		zap.String("cashbox_id", box.ID.String()),
		zap.String("actor", actor.ID.String()),
	)
	return box, nil
}

// ManualAdjustment shifts the closing balance of a closed cashbox by a
// signed amount. The correction lands as a movement row (income for a
// positive amount, expense for a negative one) so the ledger stays
// append-only, and the difference is recomputed over the movement set
// including that row. Restricted to the top privilege tier; any prior
// difference approval is voided.
func (s *CashboxService) ManualAdjustment(ctx context.Context, cashboxID uuid.UUID, currency valueobject.Currency, amount decimal.Decimal, reason string, actor identity.Actor) (*treasury.Cashbox, error) {
	if !identity.Can(actor.Role, identity.ActionManualCashAdjustment) {
		return nil, shared.ErrForbidden
	}
	if reason == "" {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "An adjustment reason is required")
	}

	box, err := s.cashboxes.FindByID(ctx, cashboxID)
	if err != nil {
		return nil, err
	}

	movementType := treasury.MovementTypeIncome
	if amount.IsNegative() {
		movementType = treasury.MovementTypeExpense
	}
	movement, err := treasury.NewCashMovement(cashboxID, movementType, amount.Abs(), currency, reason)
	if err != nil {
		return nil, err
	}

	movements, err := s.movements.FindByCashbox(ctx, cashboxID)
	if err != nil {
		return nil, err
	}
	totals := treasury.AggregateMovements(append(movements, *movement))

	if err := box.ApplyAdjustment(currency, amount, totals); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.movements.WithTx(tx).Create(ctx, movement); err != nil {
			return err
		}
		return s.cashboxes.WithTx(tx).Save(ctx, box)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cashbox adjusted",
		zap.String("cashbox_id", box.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("currency", string(currency)),
		zap.String("actor", actor.ID.String()),
	)
	return box, nil
}

// ApproveDifference accepts a closed cashbox's difference
func (s *CashboxService) ApproveDifference(ctx context.Context, cashboxID uuid.UUID, actor identity.Actor) (*treasury.Cashbox, error) {
	if !identity.Can(actor.Role, identity.ActionApproveCashDifference) {
		return nil, shared.ErrForbidden
	}

	box, err := s.cashboxes.FindByID(ctx, cashboxID)
	if err != nil {
		return nil, err
	}
	if err := box.ApproveDifference(actor.ID); err != nil {
		return nil, err
	}
	if err := s.cashboxes.Save(ctx, box); err != nil {
		return nil, err
	}

	s.logger.Info("cashbox difference approved",
		zap.String("cashbox_id", box.ID.String()),
		zap.String("actor", actor.ID.String()),
	)
	return box, nil
}

// RejectDifference refuses a closed cashbox's difference and raises a
// critical alert so the discrepancy gets chased.
func (s *CashboxService) RejectDifference(ctx context.Context, cashboxID uuid.UUID, actor identity.Actor) (*treasury.Cashbox, error) {
	if !identity.Can(actor.Role, identity.ActionApproveCashDifference) {
		return nil, shared.ErrForbidden
	}

	box, err := s.cashboxes.FindByID(ctx, cashboxID)
	if err != nil {
		return nil, err
	}
	if err := box.RejectDifference(); err != nil {
		return nil, err
	}
	if err := s.cashboxes.Save(ctx, box); err != nil {
		return nil, err
	}

	id := box.ID
	s.alerts.Emit(ctx, alert.Draft{
		Type:     alert.TypeCashboxDifferenceRejected,
		Severity: alert.SeverityCritical,
		Title:    "Cashbox difference rejected",
		Message: fmt.Sprintf("The closing difference of cashbox %s was rejected (ARS %s, USD %s)",
			box.ID, box.Differences.ARS.StringFixed(2), box.Differences.USD.StringFixed(2)),
		EntityType: "cashbox",
		EntityID:   &id,
		SkipDedup:  true,
	})

	s.logger.Warn("cashbox difference rejected",
		zap.String("cashbox_id", box.ID.String()),
		zap.String("actor", actor.ID.String()),
	)
	return box, nil
}

// GetByID returns a cashbox by ID
func (s *CashboxService) GetByID(ctx context.Context, id uuid.UUID) (*treasury.Cashbox, error) {
	return s.cashboxes.FindByID(ctx, id)
}

// ListByUser returns a user's cashboxes, newest first
func (s *CashboxService) ListByUser(ctx context.Context, userID uuid.UUID) ([]treasury.Cashbox, error) {
	return s.cashboxes.FindAllByUser(ctx, userID)
}

// ListMovements returns every movement of a cashbox
func (s *CashboxService) ListMovements(ctx context.Context, cashboxID uuid.UUID) ([]treasury.CashMovement, error) {
	return s.movements.FindByCashbox(ctx, cashboxID)
}
