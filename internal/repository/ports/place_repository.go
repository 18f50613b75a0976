package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

type PlaceRepository interface {
	Create(ctx context.Context, place *domain.Place) (*domain.Place, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.PlaceFields) (*domain.Place, error)
	// Delete removes the place and every review referencing it.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Place, error)
	List(ctx context.Context, travelStyle string) ([]domain.Place, error)
	Search(ctx context.Context, query string) ([]domain.Place, error)
	TopRated(ctx context.Context, limit int) ([]domain.Place, error)
	Nearby(ctx context.Context, lng, lat float64, maxDistanceMeters int) ([]domain.Place, error)
	Recommended(ctx context.Context, excludeID uuid.UUID, travelStyles []string, limit int) ([]domain.Place, error)
	UpdateRating(ctx context.Context, id uuid.UUID, averageRating float64, reviewCount int) error
}
