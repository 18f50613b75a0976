package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

type BlogRepository interface {
	Create(ctx context.Context, blog *domain.Blog) (*domain.Blog, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.BlogFields, status *domain.BlogStatus) (*domain.Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Blog, error)
	List(ctx context.Context) ([]domain.Blog, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.BlogStatus) (*domain.Blog, error)
}
