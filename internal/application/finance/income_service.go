package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	accountingapp "github.com/obrafin/backend/internal/application/accounting"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/obrafin/backend/internal/domain/worksite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IncomeService handles income registration and validation. Incomes have a
// much simpler lifecycle than expenses; validation only projects the
// accounting record.
type IncomeService struct {
	db        *gorm.DB
	incomes   finance.IncomeRepository
	works     worksite.WorkRepository
	projector *accountingapp.ProjectionService
	logger    *zap.Logger
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(
	db *gorm.DB,
	incomes finance.IncomeRepository,
	works worksite.WorkRepository,
	projector *accountingapp.ProjectionService,
	logger *zap.Logger,
) *IncomeService {
	return &IncomeService{
		db:        db,
		incomes:   incomes,
		works:     works,
		projector: projector,
		logger:    logger,
	}
}

// CreateIncomeRequest represents a request to register an income
type CreateIncomeRequest struct {
	WorkID      uuid.UUID
	Amount      decimal.Decimal
	Currency    valueobject.Currency
	ReceiptDate time.Time
	Description string
	CreatedBy   uuid.UUID
}

// Create registers a new PENDING income against an open work
func (s *IncomeService) Create(ctx context.Context, req CreateIncomeRequest) (*finance.Income, error) {
	work, err := s.works.FindByID(ctx, req.WorkID)
	if err != nil {
		return nil, err
	}
	if !work.AcceptsExpenses() {
		return nil, shared.NewDomainErrorf(shared.CodeBadRequest,
			"Work %q is closed", work.Name)
	}

	amount, err := valueobject.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeBadRequest, err.Error())
	}

	income, err := finance.NewIncome(req.WorkID, amount, req.Description, req.ReceiptDate)
	if err != nil {
		return nil, err
	}
	income.SetCreatedBy(req.CreatedBy)

	if err := s.incomes.Save(ctx, income); err != nil {
		return nil, err
	}

	s.logger.Info("income created",
		zap.String("income_id", income.ID.String()),
		zap.String("work_id", income.WorkID.String()),
		zap.String("amount", income.Amount.String()),
	)
	return income, nil
}

// Validate confirms an income and projects its accounting record in one
// transaction
func (s *IncomeService) Validate(ctx context.Context, incomeID uuid.UUID, actor identity.Actor) (*finance.Income, error) {
	if !identity.Can(actor.Role, identity.ActionValidateExpense) {
		return nil, shared.ErrForbidden
	}

	income, err := s.incomes.FindByID(ctx, incomeID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := income.Validate(actor.ID); err != nil {
			return err
		}
		if err := s.incomes.WithTx(tx).Save(ctx, income); err != nil {
			return err
		}
		_, err := s.projector.ProjectIncomeInTx(ctx, tx, income, actor.Role)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("income validated",
		zap.String("income_id", income.ID.String()),
		zap.String("actor", actor.ID.String()),
	)
	return income, nil
}

// Annul voids a pending income
func (s *IncomeService) Annul(ctx context.Context, incomeID uuid.UUID, actor identity.Actor) (*finance.Income, error) {
	if !identity.Can(actor.Role, identity.ActionValidateExpense) {
		return nil, shared.ErrForbidden
	}

	income, err := s.incomes.FindByID(ctx, incomeID)
	if err != nil {
		return nil, err
	}
	if err := income.Annul(); err != nil {
		return nil, err
	}
	if err := s.incomes.Save(ctx, income); err != nil {
		return nil, err
	}
	return income, nil
}

// GetByID returns an income by ID
func (s *IncomeService) GetByID(ctx context.Context, id uuid.UUID) (*finance.Income, error) {
	return s.incomes.FindByID(ctx, id)
}

// ListByWork returns every income of a work
func (s *IncomeService) ListByWork(ctx context.Context, workID uuid.UUID) ([]finance.Income, error) {
	return s.incomes.FindAll(ctx, workID)
}
