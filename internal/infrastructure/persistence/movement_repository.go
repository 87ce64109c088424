package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/treasury"
	"github.com/obrafin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMovementRepository implements treasury.MovementRepository using GORM.
// The table is append-only.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormMovementRepository) WithTx(tx *gorm.DB) treasury.MovementRepository {
	return &GormMovementRepository{db: tx}
}

// FindByCashbox lists every movement of a cashbox in insertion order
func (r *GormMovementRepository) FindByCashbox(ctx context.Context, cashboxID uuid.UUID) ([]treasury.CashMovement, error) {
	var movementModels []models.CashMovementModel
	err := r.db.WithContext(ctx).
		Where("cashbox_id = ?", cashboxID).
		Order("created_at ASC").
		Find(&movementModels).Error
	if err != nil {
		return nil, err
	}

	movements := make([]treasury.CashMovement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = model.CashMovement
	}
	return movements, nil
}

// Create appends a movement row
func (r *GormMovementRepository) Create(ctx context.Context, m *treasury.CashMovement) error {
	return r.db.WithContext(ctx).Create(&models.CashMovementModel{CashMovement: *m}).Error
}

// Ensure GormMovementRepository implements treasury.MovementRepository
var _ treasury.MovementRepository = (*GormMovementRepository)(nil)
