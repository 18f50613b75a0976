package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusPaid      BookingStatus = "Paid"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusRefunded  BookingStatus = "Refunded"
)

// Cancellable reports whether the status still permits cancellation.
// Paid, Refunded and Cancelled are terminal.
func (s BookingStatus) Cancellable() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type Booking struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	UserID             uuid.UUID     `db:"user_id" json:"userId"`
	PackageID          uuid.UUID     `db:"package_id" json:"packageId"`
	NumberOfTravellers int           `db:"number_of_travellers" json:"numberOfTravellers"`
	TravelDate         time.Time     `db:"travel_date" json:"travelDate"`
	BookingDate        time.Time     `db:"booking_date" json:"bookingDate"`
	ExternalID         string        `db:"external_id" json:"bookingId"`
	TotalPrice         float64       `db:"total_price" json:"totalPrice"`
	Status             BookingStatus `db:"status" json:"status"`
	TransactionID      *string       `db:"transaction_id" json:"transactionId,omitempty"`
	PaymentMethod      *string       `db:"payment_method" json:"paymentMethod,omitempty"`
	PaidAt             *time.Time    `db:"paid_at" json:"paidAt,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updatedAt"`

	// Joined summaries, filled on list/detail queries.
	BookerName       *string   `db:"booker_name" json:"-"`
	BookerEmail      *string   `db:"booker_email" json:"-"`
	BookerRole       *string   `db:"booker_role" json:"-"`
	BookerImage      *string   `db:"booker_image" json:"-"`
	PackageTitle     *string   `db:"package_title" json:"-"`
	PackagePrice     *float64  `db:"package_price" json:"-"`
	PackageDuration  *string   `db:"package_duration" json:"-"`
	PackageCreatedBy uuid.UUID `db:"package_created_by" json:"-"`
}
