package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/accounting"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRecordRepository implements accounting.RecordRepository using GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormRecordRepository) WithTx(tx *gorm.DB) accounting.RecordRepository {
	return &GormRecordRepository{db: tx}
}

// FindByID finds a record by ID
func (r *GormRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Record, error) {
	var model models.RecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model.Record, nil
}

// FindByExpenseID finds the record projected from an expense, or nil
func (r *GormRecordRepository) FindByExpenseID(ctx context.Context, expenseID uuid.UUID) (*accounting.Record, error) {
	var model models.RecordModel
	err := r.db.WithContext(ctx).First(&model, "expense_id = ?", expenseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.Record, nil
}

// FindByIncomeID finds the record projected from an income, or nil
func (r *GormRecordRepository) FindByIncomeID(ctx context.Context, incomeID uuid.UUID) (*accounting.Record, error) {
	var model models.RecordModel
	err := r.db.WithContext(ctx).First(&model, "income_id = ?", incomeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.Record, nil
}

// FindByPeriod lists every record of a fiscal month
func (r *GormRecordRepository) FindByPeriod(ctx context.Context, month, year int) ([]accounting.Record, error) {
	var recordModels []models.RecordModel
	err := r.db.WithContext(ctx).
		Where("month = ? AND year = ?", month, year).
		Order("created_at ASC").
		Find(&recordModels).Error
	if err != nil {
		return nil, err
	}

	records := make([]accounting.Record, len(recordModels))
	for i, model := range recordModels {
		records[i] = model.Record
	}
	return records, nil
}

// CountByPeriod counts records in a fiscal month
func (r *GormRecordRepository) CountByPeriod(ctx context.Context, month, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RecordModel{}).
		Where("month = ? AND year = ?", month, year).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// PeriodStatus derives the month status from the period's records. A period
// without records is open.
func (r *GormRecordRepository) PeriodStatus(ctx context.Context, month, year int) (accounting.MonthStatus, error) {
	var closed int64
	err := r.db.WithContext(ctx).
		Model(&models.RecordModel{}).
		Where("month = ? AND year = ? AND month_status = ?", month, year, accounting.MonthStatusClosed).
		Count(&closed).Error
	if err != nil {
		return "", err
	}
	if closed > 0 {
		return accounting.MonthStatusClosed, nil
	}
	return accounting.MonthStatusOpen, nil
}

// SetPeriodStatus bulk-updates the month status of every record in the period
func (r *GormRecordRepository) SetPeriodStatus(ctx context.Context, month, year int, status accounting.MonthStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.RecordModel{}).
		Where("month = ? AND year = ?", month, year).
		Update("month_status", status).Error
}

// Create persists a new record
func (r *GormRecordRepository) Create(ctx context.Context, record *accounting.Record) error {
	return r.db.WithContext(ctx).Create(&models.RecordModel{Record: *record}).Error
}

// Ensure GormRecordRepository implements accounting.RecordRepository
var _ accounting.RecordRepository = (*GormRecordRepository)(nil)
