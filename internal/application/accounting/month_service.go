package accounting

import (
	"context"
	"fmt"
	"time"

	alertapp "github.com/obrafin/backend/internal/application/alert"
	"github.com/obrafin/backend/internal/domain/accounting"
	"github.com/obrafin/backend/internal/domain/alert"
	"github.com/obrafin/backend/internal/domain/contract"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/treasury"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MonthService closes and reopens fiscal months. Closure is a bulk
// transition over every accounting record in the period, guarded by the
// consistency checks of the period's expenses and cashboxes.
type MonthService struct {
	db        *gorm.DB
	records   accounting.RecordRepository
	expenses  finance.ExpenseRepository
	cashboxes treasury.CashboxRepository
	contracts contract.Repository
	alerts    *alertapp.Emitter
	logger    *zap.Logger
}

// NewMonthService creates a new MonthService
func NewMonthService(
	db *gorm.DB,
	records accounting.RecordRepository,
	expenses finance.ExpenseRepository,
	cashboxes treasury.CashboxRepository,
	contracts contract.Repository,
	alerts *alertapp.Emitter,
	logger *zap.Logger,
) *MonthService {
	return &MonthService{
		db:        db,
		records:   records,
		expenses:  expenses,
		cashboxes: cashboxes,
		contracts: contracts,
		alerts:    alerts,
		logger:    logger,
	}
}

// PeriodBounds returns the first instant of the fiscal month and the first
// instant of the next one
func PeriodBounds(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func validPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return shared.NewDomainErrorf(shared.CodeBadRequest, "Invalid month %d", month)
	}
	if year < 2000 || year > 2200 {
		return shared.NewDomainErrorf(shared.CodeBadRequest, "Invalid year %d", year)
	}
	return nil
}

// CloseMonth closes a fiscal month. It fails when the period has no
// records, is already closed, still has pending expenses, or has closed
// cashboxes with unapproved differences. Over-executed blocked contracts
// only produce a warning.
func (s *MonthService) CloseMonth(ctx context.Context, month, year int, actorRole identity.Role) error {
	if !identity.Can(actorRole, identity.ActionCloseMonth) {
		return shared.ErrForbidden
	}
	if err := validPeriod(month, year); err != nil {
		return err
	}

	count, err := s.records.CountByPeriod(ctx, month, year)
	if err != nil {
		return err
	}
	if count == 0 {
		return shared.NewDomainErrorf(shared.CodeBadRequest,
			"No accounting records exist for %02d/%d", month, year)
	}

	status, err := s.records.PeriodStatus(ctx, month, year)
	if err != nil {
		return err
	}
	if status == accounting.MonthStatusClosed {
		return shared.NewDomainErrorf(shared.CodeMonthClosed,
			"Fiscal month %02d/%d is already closed", month, year)
	}

	pending, err := s.expenses.CountPendingInPeriod(ctx, month, year)
	if err != nil {
		return err
	}
	if pending > 0 {
		return shared.NewDomainErrorf(shared.CodeBadRequest,
			"Cannot close %02d/%d: %d pending expense(s) in the period", month, year, pending)
	}

	from, to := PeriodBounds(month, year)
	unapproved, err := s.cashboxes.CountClosedWithUnapprovedDifference(ctx, from, to)
	if err != nil {
		return err
	}
	if unapproved > 0 {
		return shared.NewDomainErrorf(shared.CodeBadRequest,
			"Cannot close %02d/%d: %d cashbox(es) with unapproved differences", month, year, unapproved)
	}

	// Over-executed contracts are surfaced but never block the closure.
	batch := s.alerts.NewBatch()
	overExecuted, err := s.contracts.FindOverExecuted(ctx)
	if err != nil {
		return err
	}
	for _, c := range overExecuted {
		id := c.ID
		batch.Add(alert.Draft{
			Type:     alert.TypeContractOverExecuted,
			Severity: alert.SeverityWarning,
			Title:    "Contract executed beyond its total",
			Message: fmt.Sprintf("Contract %s executed %s over a total of %s",
				c.ID, c.AmountExecuted.StringFixed(2), c.AmountTotal.StringFixed(2)),
			EntityType: "contract",
			EntityID:   &id,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.records.WithTx(tx).SetPeriodStatus(ctx, month, year, accounting.MonthStatusClosed)
	})
	if err != nil {
		return err
	}

	batch.Flush(ctx)

	s.logger.Info("fiscal month closed",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int64("records", count),
	)
	return nil
}

// ReopenMonth reverts a closed fiscal month to open. Restricted to the top
// privilege tier.
func (s *MonthService) ReopenMonth(ctx context.Context, month, year int, actorRole identity.Role) error {
	if !identity.Can(actorRole, identity.ActionReopenMonth) {
		return shared.ErrForbidden
	}
	if err := validPeriod(month, year); err != nil {
		return err
	}

	status, err := s.records.PeriodStatus(ctx, month, year)
	if err != nil {
		return err
	}
	if status != accounting.MonthStatusClosed {
		return shared.NewDomainErrorf(shared.CodeBadRequest,
			"Fiscal month %02d/%d is not closed", month, year)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.records.WithTx(tx).SetPeriodStatus(ctx, month, year, accounting.MonthStatusOpen)
	})
	if err != nil {
		return err
	}

	s.logger.Info("fiscal month reopened",
		zap.Int("month", month),
		zap.Int("year", year),
	)
	return nil
}

// PeriodStatus reports the closure status of a fiscal month
func (s *MonthService) PeriodStatus(ctx context.Context, month, year int) (accounting.MonthStatus, error) {
	if err := validPeriod(month, year); err != nil {
		return "", err
	}
	return s.records.PeriodStatus(ctx, month, year)
}
