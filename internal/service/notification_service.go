package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	notifications ports.NotificationRepository
}

func NewNotificationService(notifications ports.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) ListUserNotifications(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	return s.notifications.ListByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, id, userID); err != nil {
		if isNotFound(err) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifications.MarkAllRead(ctx, userID)
}
