package contract

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	alertapp "github.com/obrafin/backend/internal/application/alert"
	"github.com/obrafin/backend/internal/domain/alert"
	"github.com/obrafin/backend/internal/domain/contract"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService is the single authority over a contract's committed-balance
// ledger. Every mutation of amount_executed, the blocked flag and the
// derived status flows through here, from any call site.
type LedgerService struct {
	db        *gorm.DB
	contracts contract.Repository
	alerts    *alertapp.Emitter
	logger    *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(db *gorm.DB, contracts contract.Repository, alerts *alertapp.Emitter, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		db:        db,
		contracts: contracts,
		alerts:    alerts,
		logger:    logger,
	}
}

// Create registers a new contract in PENDING status
func (s *LedgerService) Create(ctx context.Context, supplierID, workID uuid.UUID, description string, amountTotal decimal.Decimal, currency valueobject.Currency, createdBy uuid.UUID) (*contract.Contract, error) {
	c, err := contract.NewContract(supplierID, workID, description, amountTotal, currency)
	if err != nil {
		return nil, err
	}
	c.SetCreatedBy(createdBy)

	if err := s.contracts.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		zap.String("contract_id", c.ID.String()),
		zap.String("supplier_id", supplierID.String()),
		zap.String("work_id", workID.String()),
		zap.String("amount_total", amountTotal.String()),
	)
	return c, nil
}

// UpdateAmountExecuted sets a contract's executed amount to an absolute new
// value. When tx is non-nil the update joins the caller's open transaction;
// the caller then owns commit, rollback and the post-commit alert flush.
// With a nil tx the service opens its own transaction and flushes alerts
// after commit.
func (s *LedgerService) UpdateAmountExecuted(ctx context.Context, contractID uuid.UUID, newExecuted decimal.Decimal, tx *gorm.DB) (*contract.Contract, error) {
	if tx != nil {
		batch := s.alerts.NewBatch()
		c, err := s.ApplyExecutedInTx(ctx, tx, batch, contractID, newExecuted)
		if err != nil {
			return nil, err
		}
		// Inside a caller-owned transaction the commit is not ours to
		// observe; the batch would be lost. Callers composing a larger
		// unit of work use ApplyExecutedInTx with their own batch.
		batch.Flush(ctx)
		return c, nil
	}

	var c *contract.Contract
	batch := s.alerts.NewBatch()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		c, txErr = s.ApplyExecutedInTx(ctx, tx, batch, contractID, newExecuted)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	batch.Flush(ctx)
	return c, nil
}

// ApplyExecutedInTx performs the ledger update inside an open transaction,
// queueing any zero-balance alert on the caller's batch. The contract row
// is read under a row lock so concurrent read-modify-writes serialize.
func (s *LedgerService) ApplyExecutedInTx(ctx context.Context, tx *gorm.DB, batch *alertapp.Batch, contractID uuid.UUID, newExecuted decimal.Decimal) (*contract.Contract, error) {
	repo := s.contracts.WithTx(tx)

	c, err := repo.FindByIDForUpdate(ctx, contractID)
	if err != nil {
		return nil, err
	}

	res, err := c.ApplyExecuted(newExecuted)
	if err != nil {
		return nil, err
	}

	if err := repo.Save(ctx, c); err != nil {
		return nil, err
	}

	// Alert only on the unblocked -> blocked transition; repeated calls
	// while already blocked stay silent.
	if res.BecameBlocked {
		id := c.ID
		batch.Add(alert.Draft{
			Type:     alert.TypeContractZeroBalance,
			Severity: alert.SeverityCritical,
			Title:    "Contract without balance",
			Message: fmt.Sprintf("Contract %s has no remaining balance (total %s, executed %s) and was blocked",
				c.ID, c.AmountTotal.StringFixed(2), c.AmountExecuted.StringFixed(2)),
			EntityType: "contract",
			EntityID:   &id,
		})
	}

	s.logger.Debug("contract ledger updated",
		zap.String("contract_id", c.ID.String()),
		zap.String("amount_executed", c.AmountExecuted.String()),
		zap.Bool("blocked", c.IsBlocked),
		zap.String("status", string(c.Status)),
	)

	return c, nil
}

// ReverseExecutedInTx lowers the executed amount when a validated expense is
// undone. Unlike the forward path, a restored positive balance unblocks the
// contract here: the commitment that caused the block no longer exists.
func (s *LedgerService) ReverseExecutedInTx(ctx context.Context, tx *gorm.DB, batch *alertapp.Batch, contractID uuid.UUID, newExecuted decimal.Decimal) (*contract.Contract, error) {
	c, err := s.ApplyExecutedInTx(ctx, tx, batch, contractID, newExecuted)
	if err != nil {
		return nil, err
	}

	if c.IsBlocked && c.Saldo().IsPositive() {
		if err := c.Unblock(); err != nil {
			return nil, err
		}
		if err := s.contracts.WithTx(tx).Save(ctx, c); err != nil {
			return nil, err
		}
		s.logger.Info("contract unblocked after reversal",
			zap.String("contract_id", c.ID.String()),
			zap.String("saldo", c.Saldo().String()),
		)
	}

	return c, nil
}

// Unblock clears a contract's blocked flag. This is the explicit
// Direction-level override; nothing else unblocks a contract whose balance
// stays non-positive.
func (s *LedgerService) Unblock(ctx context.Context, contractID uuid.UUID, actorRole identity.Role) (*contract.Contract, error) {
	if !identity.Can(actorRole, identity.ActionUnblockContract) {
		return nil, shared.ErrForbidden
	}

	c, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if err := c.Unblock(); err != nil {
		return nil, err
	}

	if err := s.contracts.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract manually unblocked",
		zap.String("contract_id", c.ID.String()),
		zap.String("status", string(c.Status)),
	)

	return c, nil
}

// GetByID returns a contract by ID
func (s *LedgerService) GetByID(ctx context.Context, contractID uuid.UUID) (*contract.Contract, error) {
	return s.contracts.FindByID(ctx, contractID)
}

// List returns contracts matching the filter
func (s *LedgerService) List(ctx context.Context, filter contract.Filter) ([]contract.Contract, int64, error) {
	filter.Normalize()
	items, err := s.contracts.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contracts.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
