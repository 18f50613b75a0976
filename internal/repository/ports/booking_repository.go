package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// GetByExternalID resolves the client-supplied booking reference used by
	// the payment gateway callback.
	GetByExternalID(ctx context.Context, externalID string) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	MarkPaid(ctx context.Context, externalID string, transactionID, method string) (*domain.Booking, error)
}
