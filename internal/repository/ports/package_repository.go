package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.TravelPackage) (*domain.TravelPackage, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.PackageFields) (*domain.TravelPackage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TravelPackage, error)
	List(ctx context.Context) ([]domain.TravelPackage, error)
	IncrementBookings(ctx context.Context, id uuid.UUID, delta int) error
}
