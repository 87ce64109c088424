package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/domain/treasury"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCashboxRepository implements treasury.CashboxRepository using GORM
type GormCashboxRepository struct {
	db *gorm.DB
}

// NewGormCashboxRepository creates a new GormCashboxRepository
func NewGormCashboxRepository(db *gorm.DB) *GormCashboxRepository {
	return &GormCashboxRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormCashboxRepository) WithTx(tx *gorm.DB) treasury.CashboxRepository {
	return &GormCashboxRepository{db: tx}
}

// FindByID finds a cashbox by ID
func (r *GormCashboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Cashbox, error) {
	var model models.CashboxModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model.Cashbox, nil
}

// FindOpenByUser returns the user's open cashbox, or nil when none exists
func (r *GormCashboxRepository) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*treasury.Cashbox, error) {
	var model models.CashboxModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, treasury.CashboxStatusOpen).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.Cashbox, nil
}

// FindAllByUser lists a user's cashboxes, newest first
func (r *GormCashboxRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]treasury.Cashbox, error) {
	var cashboxModels []models.CashboxModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("opened_at DESC").
		Find(&cashboxModels).Error
	if err != nil {
		return nil, err
	}

	cashboxes := make([]treasury.Cashbox, len(cashboxModels))
	for i, model := range cashboxModels {
		cashboxes[i] = model.Cashbox
	}
	return cashboxes, nil
}

// CountClosedWithUnapprovedDifference counts cashboxes closed inside
// [from, to) holding a non-zero difference without approval
func (r *GormCashboxRepository) CountClosedWithUnapprovedDifference(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CashboxModel{}).
		Where("status = ? AND closed_at >= ? AND closed_at < ?", treasury.CashboxStatusClosed, from, to).
		Where("difference_approved = ?", false).
		Where("diff_ars <> 0 OR diff_usd <> 0").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a cashbox
func (r *GormCashboxRepository) Save(ctx context.Context, c *treasury.Cashbox) error {
	return r.db.WithContext(ctx).Save(&models.CashboxModel{Cashbox: *c}).Error
}

// Ensure GormCashboxRepository implements treasury.CashboxRepository
var _ treasury.CashboxRepository = (*GormCashboxRepository)(nil)
