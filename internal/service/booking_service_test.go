package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

func newBookingFixture() (*BookingService, *memoryBookingRepository, *memoryPackageRepository, *domain.TravelPackage) {
	packages := newMemoryPackageRepository()
	bookings := newMemoryBookingRepository(packages)
	svc := NewBookingService(bookings, packages, nil)

	pkg, _ := packages.Create(context.Background(), &domain.TravelPackage{
		Title:     "Annapurna Base Camp Trek",
		Price:     450,
		Duration:  "10 days",
		CreatedBy: uuid.New(),
	})
	return svc, bookings, packages, pkg
}

func TestBookingService_CreateBooking_PriceAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _, packages, pkg := newBookingFixture()
	userID := uuid.New()

	booking, err := svc.CreateBooking(ctx, userID, BookingCreateInput{
		BookingID:          "BK-2026-0001",
		PackageID:          pkg.ID,
		TravelDate:         time.Now().AddDate(0, 1, 0),
		NumberOfTravellers: 3,
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if booking.TotalPrice != 1350 {
		t.Fatalf("expected total price 1350, got %v", booking.TotalPrice)
	}
	if booking.Status != domain.BookingStatusPending {
		t.Fatalf("expected status Pending, got %s", booking.Status)
	}
	if booking.ExternalID != "BK-2026-0001" {
		t.Fatalf("expected the supplied booking reference, got %q", booking.ExternalID)
	}

	// Travellers default to one.
	single, err := svc.CreateBooking(ctx, userID, BookingCreateInput{
		BookingID:  "BK-2026-0002",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if single.NumberOfTravellers != 1 {
		t.Fatalf("expected 1 traveller, got %d", single.NumberOfTravellers)
	}
	if single.TotalPrice != 450 {
		t.Fatalf("expected total price 450, got %v", single.TotalPrice)
	}

	stored, _ := packages.FindByID(ctx, pkg.ID)
	if stored.BookingsCount != 2 {
		t.Fatalf("expected bookings count 2, got %d", stored.BookingsCount)
	}
}

func TestBookingService_CreateBooking_PastDate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pkg := newBookingFixture()

	_, err := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		BookingID:  "BK-PAST-0001",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, -1),
	})
	if !errors.Is(err, ErrBookingDateInPast) {
		t.Fatalf("expected ErrBookingDateInPast, got %v", err)
	}
	if err.Error() != "Travel date cannot be in the past." {
		t.Fatalf("unexpected error message %q", err.Error())
	}

	// A booking for later today is still allowed.
	if _, err := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		BookingID:  "BK-PAST-0002",
		PackageID:  pkg.ID,
		TravelDate: time.Now(),
	}); err != nil {
		t.Fatalf("same-day booking should be accepted, got %v", err)
	}
}

func TestBookingService_CreateBooking_MissingPackage(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.CreateBooking(context.Background(), uuid.New(), BookingCreateInput{
		BookingID:  "BK-MISSING-0001",
		PackageID:  uuid.New(),
		TravelDate: time.Now().AddDate(0, 0, 3),
	})
	if !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestBookingService_CreateBooking_BookingID(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pkg := newBookingFixture()

	if _, err := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 10),
	}); !errors.Is(err, ErrBookingValidation) {
		t.Fatalf("expected ErrBookingValidation without a bookingId, got %v", err)
	}

	booking, err := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		BookingID:  "  BK-REF-0042  ",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 10),
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if booking.ExternalID != "BK-REF-0042" {
		t.Fatalf("expected trimmed booking reference BK-REF-0042, got %q", booking.ExternalID)
	}

	// The reference is the payment correlation key, so reusing it is rejected.
	if _, err := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		BookingID:  "BK-REF-0042",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 12),
	}); !errors.Is(err, ErrBookingIDTaken) {
		t.Fatalf("expected ErrBookingIDTaken for duplicate reference, got %v", err)
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()
	svc, _, packages, pkg := newBookingFixture()
	owner := uuid.New()

	booking, err := svc.CreateBooking(ctx, owner, BookingCreateInput{
		BookingID:  "BK-CANCEL-0001",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 14),
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	if _, err := svc.CancelBooking(ctx, booking.ID, uuid.New(), false); !errors.Is(err, ErrBookingForbidden) {
		t.Fatalf("expected ErrBookingForbidden for stranger, got %v", err)
	}

	cancelled, err := svc.CancelBooking(ctx, booking.ID, owner, false)
	if err != nil {
		t.Fatalf("CancelBooking returned error: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Fatalf("expected status Cancelled, got %s", cancelled.Status)
	}

	stored, _ := packages.FindByID(ctx, pkg.ID)
	if stored.BookingsCount != 0 {
		t.Fatalf("expected bookings count back to 0, got %d", stored.BookingsCount)
	}

	// Cancelling again must fail and must not drive the counter negative.
	if _, err := svc.CancelBooking(ctx, booking.ID, owner, false); !errors.Is(err, ErrBookingNotCancellable) {
		t.Fatalf("expected ErrBookingNotCancellable, got %v", err)
	}
	stored, _ = packages.FindByID(ctx, pkg.ID)
	if stored.BookingsCount != 0 {
		t.Fatalf("counter went negative: %d", stored.BookingsCount)
	}
}

func TestBookingService_AgencyUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pkg := newBookingFixture()

	booking, err := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		BookingID:  "BK-AGENCY-0001",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 21),
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	if _, err := svc.AgencyUpdateStatus(ctx, booking.ID, uuid.New(), "confirm"); !errors.Is(err, ErrBookingForbidden) {
		t.Fatalf("expected ErrBookingForbidden for other agency, got %v", err)
	}
	if _, err := svc.AgencyUpdateStatus(ctx, booking.ID, pkg.CreatedBy, "approve"); !errors.Is(err, ErrBookingValidation) {
		t.Fatalf("expected ErrBookingValidation for unknown action, got %v", err)
	}

	confirmed, err := svc.AgencyUpdateStatus(ctx, booking.ID, pkg.CreatedBy, "confirm")
	if err != nil {
		t.Fatalf("AgencyUpdateStatus returned error: %v", err)
	}
	if confirmed.Status != domain.BookingStatusConfirmed {
		t.Fatalf("expected status Confirmed, got %s", confirmed.Status)
	}

	// A confirmed booking can still be cancelled by the agency.
	cancelled, err := svc.AgencyUpdateStatus(ctx, booking.ID, pkg.CreatedBy, "cancel")
	if err != nil {
		t.Fatalf("AgencyUpdateStatus cancel returned error: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Fatalf("expected status Cancelled, got %s", cancelled.Status)
	}
}

func TestBookingService_MarkPaid(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pkg := newBookingFixture()

	booking, err := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		BookingID:  "BK-PAID-0001",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 5),
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	paid, err := svc.MarkPaid(ctx, booking.ExternalID, "txn-001", "esewa")
	if err != nil {
		t.Fatalf("MarkPaid returned error: %v", err)
	}
	if paid.Status != domain.BookingStatusPaid {
		t.Fatalf("expected status Paid, got %s", paid.Status)
	}
	if paid.TransactionID == nil || *paid.TransactionID != "txn-001" {
		t.Fatalf("expected transaction id recorded")
	}

	// Replayed callback is a no-op.
	again, err := svc.MarkPaid(ctx, booking.ExternalID, "txn-002", "esewa")
	if err != nil {
		t.Fatalf("replayed MarkPaid returned error: %v", err)
	}
	if again.TransactionID == nil || *again.TransactionID != "txn-001" {
		t.Fatalf("replay should not overwrite the transaction id")
	}

	if _, err := svc.MarkPaid(ctx, "unknown-ref", "txn-003", "esewa"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	// Paying a cancelled booking is rejected.
	other, _ := svc.CreateBooking(ctx, uuid.New(), BookingCreateInput{
		BookingID:  "BK-PAID-0002",
		PackageID:  pkg.ID,
		TravelDate: time.Now().AddDate(0, 0, 9),
	})
	if _, err := svc.CancelBooking(ctx, other.ID, other.UserID, false); err != nil {
		t.Fatalf("CancelBooking returned error: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, other.ExternalID, "txn-004", "esewa"); !errors.Is(err, ErrBookingValidation) {
		t.Fatalf("expected ErrBookingValidation for cancelled booking, got %v", err)
	}
}
