package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/contract"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements contract.Repository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormContractRepository) WithTx(tx *gorm.DB) contract.Repository {
	return &GormContractRepository{db: tx}
}

// FindByID finds a contract by ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model.Contract, nil
}

// FindByIDForUpdate finds a contract by ID holding a row lock. Meaningful
// only inside a transaction.
func (r *GormContractRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model.Contract, nil
}

// FindUnblockedBySupplierAndWork finds an unblocked contract for the
// (supplier, work) pair, or nil when none matches
func (r *GormContractRepository) FindUnblockedBySupplierAndWork(ctx context.Context, supplierID, workID uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND work_id = ? AND is_blocked = ?", supplierID, workID, false).
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.Contract, nil
}

// FindAll lists contracts matching the filter
func (r *GormContractRepository) FindAll(ctx context.Context, filter contract.Filter) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]contract.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = model.Contract
	}
	return contracts, nil
}

// FindOverExecuted lists blocked contracts whose executed amount exceeds
// their total
func (r *GormContractRepository) FindOverExecuted(ctx context.Context) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	err := r.db.WithContext(ctx).
		Where("is_blocked = ? AND amount_executed > amount_total", true).
		Find(&contractModels).Error
	if err != nil {
		return nil, err
	}

	contracts := make([]contract.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = model.Contract
	}
	return contracts, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	return r.db.WithContext(ctx).Save(&models.ContractModel{Contract: *c}).Error
}

// Count counts contracts matching the filter
func (r *GormContractRepository) Count(ctx context.Context, filter contract.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormContractRepository) applyFilter(query *gorm.DB, filter contract.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, ContractSortFields, "created_at")
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter contract.Filter) *gorm.DB {
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.WorkID != nil {
		query = query.Where("work_id = ?", *filter.WorkID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Blocked != nil {
		query = query.Where("is_blocked = ?", *filter.Blocked)
	}
	if filter.Search != "" {
		query = query.Where("description LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormContractRepository implements contract.Repository
var _ contract.Repository = (*GormContractRepository)(nil)
