package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormIncomeRepository implements finance.IncomeRepository using GORM
type GormIncomeRepository struct {
	db *gorm.DB
}

// NewGormIncomeRepository creates a new GormIncomeRepository
func NewGormIncomeRepository(db *gorm.DB) *GormIncomeRepository {
	return &GormIncomeRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormIncomeRepository) WithTx(tx *gorm.DB) finance.IncomeRepository {
	return &GormIncomeRepository{db: tx}
}

// FindByID finds an income record by ID
func (r *GormIncomeRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Income, error) {
	var model models.IncomeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model.Income, nil
}

// FindAll lists income records for a work, newest first
func (r *GormIncomeRepository) FindAll(ctx context.Context, workID uuid.UUID) ([]finance.Income, error) {
	var incomeModels []models.IncomeModel
	err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Order("received_at DESC").
		Find(&incomeModels).Error
	if err != nil {
		return nil, err
	}

	incomes := make([]finance.Income, len(incomeModels))
	for i, model := range incomeModels {
		incomes[i] = model.Income
	}
	return incomes, nil
}

// Save creates or updates an income record
func (r *GormIncomeRepository) Save(ctx context.Context, i *finance.Income) error {
	return r.db.WithContext(ctx).Save(&models.IncomeModel{Income: *i}).Error
}

// Ensure GormIncomeRepository implements finance.IncomeRepository
var _ finance.IncomeRepository = (*GormIncomeRepository)(nil)
