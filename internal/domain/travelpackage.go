package domain

import (
	"time"

	"github.com/google/uuid"
)

// TravelPackage is an agency-owned offer a booking is placed against.
// BookingsCount is denormalized: incremented on booking creation and
// decremented (floored at zero) on cancellation.
type TravelPackage struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Price         float64   `db:"price" json:"price"`
	Duration      string    `db:"duration" json:"duration"`
	Image         *string   `db:"image" json:"image,omitempty"`
	CreatedBy     uuid.UUID `db:"created_by" json:"createdBy"`
	BookingsCount int       `db:"bookings_count" json:"bookingsCount"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type PackageFields struct {
	Title       *string
	Description *string
	Price       *float64
	Duration    *string
	Image       *string
}
