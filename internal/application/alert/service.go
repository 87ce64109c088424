package alert

import (
	"context"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/alert"
	"go.uber.org/zap"
)

const defaultUnreadLimit = 100

// Service exposes alert queries and acknowledgement to the interface layer
type Service struct {
	repo   alert.Repository
	logger *zap.Logger
}

// NewService creates a new Service
func NewService(repo alert.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListUnread returns unread alerts, newest first
func (s *Service) ListUnread(ctx context.Context, limit int) ([]alert.Alert, error) {
	if limit <= 0 {
		limit = defaultUnreadLimit
	}
	return s.repo.FindUnread(ctx, limit)
}

// MarkRead acknowledges an alert
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.MarkRead()
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Debug("alert acknowledged", zap.String("alert_id", a.ID.String()))
	return a, nil
}
