package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	Update(ctx context.Context, id uuid.UUID, rating *int, comment *string) (*domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByPlace(ctx context.Context, placeID uuid.UUID) ([]domain.Review, error)
	AggregateByPlace(ctx context.Context, placeID uuid.UUID) (*domain.ReviewAggregate, error)
}
