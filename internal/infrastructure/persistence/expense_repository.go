package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/finance"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormExpenseRepository) WithTx(tx *gorm.DB) finance.ExpenseRepository {
	return &GormExpenseRepository{db: tx}
}

// FindByID finds an expense by ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model.Expense, nil
}

// FindAll lists expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}

	expenses := make([]finance.Expense, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = model.Expense
	}
	return expenses, nil
}

// FindDuplicates finds other pending or validated expenses sharing the
// supplier, document number and purchase date
func (r *GormExpenseRepository) FindDuplicates(ctx context.Context, e *finance.Expense) ([]finance.Expense, error) {
	if e.SupplierID == nil || e.DocumentNumber == "" {
		return nil, nil
	}

	var expenseModels []models.ExpenseModel
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND document_number = ? AND purchase_date = ? AND id <> ?",
			*e.SupplierID, e.DocumentNumber, e.PurchaseDate, e.ID).
		Where("state IN ?", []finance.ExpenseState{finance.ExpenseStatePending, finance.ExpenseStateValidated}).
		Find(&expenseModels).Error
	if err != nil {
		return nil, err
	}

	expenses := make([]finance.Expense, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = model.Expense
	}
	return expenses, nil
}

// CountPendingInPeriod counts PENDING expenses with a purchase date inside
// the fiscal month
func (r *GormExpenseRepository) CountPendingInPeriod(ctx context.Context, month, year int) (int64, error) {
	from, to := periodBounds(month, year)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("state = ? AND purchase_date >= ? AND purchase_date < ?",
			finance.ExpenseStatePending, from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *finance.Expense) error {
	return r.db.WithContext(ctx).Save(&models.ExpenseModel{Expense: *e}).Error
}

// SaveWithLock saves an expense with optimistic locking (version check).
// Returns a version conflict error if another transaction modified the row.
func (r *GormExpenseRepository) SaveWithLock(ctx context.Context, e *finance.Expense) error {
	currentVersion := e.Version
	e.Version++
	model := models.ExpenseModel{Expense: *e}

	result := r.db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND version = ?", e.ID, currentVersion).
		Select("*").
		Updates(model)
	if result.Error != nil {
		e.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		e.Version = currentVersion
		return shared.NewDomainError(shared.CodeVersionConflict,
			"The expense has been modified by another transaction")
	}
	return nil
}

// GenerateVoucherNumber returns the next sequential VAL code by scanning
// for the current maximum. The scan orders by the numeric suffix, not the
// raw string: once the sequence outgrows the six-digit padding,
// lexicographic order no longer matches numeric order.
func (r *GormExpenseRepository) GenerateVoucherNumber(ctx context.Context) (string, error) {
	var last string
	err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("document_type = ? AND document_number LIKE ?",
			finance.DocumentTypeVAL, finance.VoucherPrefix+"%").
		Order(fmt.Sprintf("CAST(SUBSTR(document_number, %d) AS BIGINT) DESC", len(finance.VoucherPrefix)+1)).
		Limit(1).
		Pluck("document_number", &last).Error
	if err != nil {
		return "", err
	}

	if last == "" {
		return finance.FormatVoucherNumber(1), nil
	}

	seq, ok := finance.VoucherSequence(last)
	if !ok {
		return "", fmt.Errorf("malformed voucher number %q", last)
	}
	return finance.FormatVoucherNumber(seq + 1), nil
}

// Count counts expenses matching the filter
func (r *GormExpenseRepository) Count(ctx context.Context, filter finance.ExpenseFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, ExpenseSortFields, "purchase_date")
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormExpenseRepository) applyFilterWithoutPagination(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	if filter.WorkID != nil {
		query = query.Where("work_id = ?", *filter.WorkID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.FromDate != nil {
		query = query.Where("purchase_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("purchase_date < ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("document_number LIKE ? OR description LIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormExpenseRepository implements finance.ExpenseRepository
var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
