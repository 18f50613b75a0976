package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

const bookingColumns = `
	b.id, b.user_id, b.package_id, b.number_of_travellers, b.travel_date,
	b.booking_date, b.external_id, b.total_price, b.status,
	b.transaction_id, b.payment_method, b.paid_at, b.created_at, b.updated_at,
	u.name AS booker_name,
	u.email AS booker_email,
	u.role AS booker_role,
	u.image_url AS booker_image,
	p.title AS package_title,
	p.price AS package_price,
	p.duration AS package_duration,
	p.created_by AS package_created_by
`

const bookingJoins = `
	FROM bookings b
	JOIN users u ON u.id = b.user_id
	JOIN travel_packages p ON p.id = b.package_id
`

type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepo(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	const query = `
		INSERT INTO bookings (
			user_id, package_id, number_of_travellers, travel_date,
			booking_date, external_id, total_price, status
		) VALUES (
			:user_id, :package_id, :number_of_travellers, :travel_date,
			:booking_date, :external_id, :total_price, :status
		)
		RETURNING id
	`

	args := map[string]any{
		"user_id":              booking.UserID,
		"package_id":           booking.PackageID,
		"number_of_travellers": booking.NumberOfTravellers,
		"travel_date":          booking.TravelDate,
		"booking_date":         booking.BookingDate,
		"external_id":          booking.ExternalID,
		"total_price":          booking.TotalPrice,
		"status":               booking.Status,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	var id uuid.UUID
	if err = rows.Scan(&id); err != nil {
		return nil, err
	}
	rows.Close()

	return r.GetByID(ctx, id)
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + bookingJoins + ` WHERE b.id = $1`

	var booking domain.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + bookingJoins + ` WHERE b.external_id = $1`

	var booking domain.Booking
	if err := r.db.GetContext(ctx, &booking, query, externalID); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + bookingJoins + ` ORDER BY b.created_at DESC`

	bookings := make([]domain.Booking, 0)
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + bookingJoins + `
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`

	bookings := make([]domain.Booking, 0)
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByAgency returns bookings placed against packages owned by the agency.
func (r *BookingRepository) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + bookingJoins + `
		WHERE p.created_by = $1
		ORDER BY b.created_at DESC`

	bookings := make([]domain.Booking, 0)
	if err := r.db.SelectContext(ctx, &bookings, query, agencyID); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *BookingRepository) MarkPaid(ctx context.Context, externalID string, transactionID, method string) (*domain.Booking, error) {
	const query = `
		UPDATE bookings
		SET status = $2,
		    transaction_id = $3,
		    payment_method = $4,
		    paid_at = NOW(),
		    updated_at = NOW()
		WHERE external_id = $1
		RETURNING id
	`

	var id uuid.UUID
	if err := r.db.GetContext(ctx, &id, query, externalID, domain.BookingStatusPaid, transactionID, method); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

var _ ports.BookingRepository = (*BookingRepository)(nil)
