package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

type NotificationRepository interface {
	CreateMany(ctx context.Context, notifications []domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
