package accounting

import (
	"context"

	"github.com/obrafin/backend/internal/domain/accounting"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectionService derives immutable accounting records from validated
// expenses and incomes. Projection is idempotent: the second call for the
// same source returns the existing record untouched.
type ProjectionService struct {
	db      *gorm.DB
	records accounting.RecordRepository
	logger  *zap.Logger
}

// NewProjectionService creates a new ProjectionService
func NewProjectionService(db *gorm.DB, records accounting.RecordRepository, logger *zap.Logger) *ProjectionService {
	return &ProjectionService{
		db:      db,
		records: records,
		logger:  logger,
	}
}

// ProjectExpense projects a validated expense into the ledger in its own
// transaction
func (s *ProjectionService) ProjectExpense(ctx context.Context, e *finance.Expense, actorRole identity.Role) (*accounting.Record, error) {
	var record *accounting.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.ProjectExpenseInTx(ctx, tx, e, actorRole)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ProjectExpenseInTx projects a validated expense inside the caller's
// transaction. The month-closure gate applies: records cannot be created in
// a closed fiscal month unless the actor holds the top privilege tier.
func (s *ProjectionService) ProjectExpenseInTx(ctx context.Context, tx *gorm.DB, e *finance.Expense, actorRole identity.Role) (*accounting.Record, error) {
	repo := s.records.WithTx(tx)

	existing, err := repo.FindByExpenseID(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug("accounting record already projected",
			zap.String("expense_id", e.ID.String()),
			zap.String("record_id", existing.ID.String()),
		)
		return existing, nil
	}

	record, err := accounting.NewRecordFromExpense(e)
	if err != nil {
		return nil, err
	}

	if err := s.guardMonthOpen(ctx, repo, record.Month, record.Year, actorRole); err != nil {
		return nil, err
	}

	if err := repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("accounting record projected",
		zap.String("record_id", record.ID.String()),
		zap.String("expense_id", e.ID.String()),
		zap.String("type", string(record.Type)),
		zap.Int("month", record.Month),
		zap.Int("year", record.Year),
	)

	return record, nil
}

// ProjectIncome projects a validated income into the ledger
func (s *ProjectionService) ProjectIncome(ctx context.Context, i *finance.Income, actorRole identity.Role) (*accounting.Record, error) {
	var record *accounting.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.ProjectIncomeInTx(ctx, tx, i, actorRole)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ProjectIncomeInTx projects a validated income inside the caller's
// transaction
func (s *ProjectionService) ProjectIncomeInTx(ctx context.Context, tx *gorm.DB, i *finance.Income, actorRole identity.Role) (*accounting.Record, error) {
	repo := s.records.WithTx(tx)

	existing, err := repo.FindByIncomeID(ctx, i.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	record, err := accounting.NewRecordFromIncome(i)
	if err != nil {
		return nil, err
	}

	if err := s.guardMonthOpen(ctx, repo, record.Month, record.Year, actorRole); err != nil {
		return nil, err
	}

	if err := repo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// guardMonthOpen refuses ledger mutations in a closed fiscal month for
// everyone below the top privilege tier
func (s *ProjectionService) guardMonthOpen(ctx context.Context, repo accounting.RecordRepository, month, year int, actorRole identity.Role) error {
	status, err := repo.PeriodStatus(ctx, month, year)
	if err != nil {
		return err
	}
	if status == accounting.MonthStatusClosed && !identity.Can(actorRole, identity.ActionMutateClosedMonth) {
		return shared.NewDomainErrorf(shared.CodeMonthClosed,
			"Fiscal month %02d/%d is closed", month, year)
	}
	return nil
}

// ListPeriod returns every accounting record of a fiscal month
func (s *ProjectionService) ListPeriod(ctx context.Context, month, year int) ([]accounting.Record, error) {
	return s.records.FindByPeriod(ctx, month, year)
}
