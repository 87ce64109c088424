package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/alert"
	"github.com/obrafin/backend/internal/domain/shared"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAlertRepository implements alert.Repository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	var model models.AlertModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model.Alert, nil
}

// FindUnread lists unread alerts, newest first
func (r *GormAlertRepository) FindUnread(ctx context.Context, limit int) ([]alert.Alert, error) {
	var alertModels []models.AlertModel
	err := r.db.WithContext(ctx).
		Where("read = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&alertModels).Error
	if err != nil {
		return nil, err
	}

	alerts := make([]alert.Alert, len(alertModels))
	for i, model := range alertModels {
		alerts[i] = model.Alert
	}
	return alerts, nil
}

// ExistsUnread reports whether an unread alert with the same type and entity
// already exists
func (r *GormAlertRepository) ExistsUnread(ctx context.Context, alertType alert.Type, entityID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("type = ? AND entity_id = ? AND read = ?", alertType, entityID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an alert
func (r *GormAlertRepository) Save(ctx context.Context, a *alert.Alert) error {
	return r.db.WithContext(ctx).Save(&models.AlertModel{Alert: *a}).Error
}

// Ensure GormAlertRepository implements alert.Repository
var _ alert.Repository = (*GormAlertRepository)(nil)
