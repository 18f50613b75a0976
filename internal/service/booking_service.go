package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

var (
	ErrBookingValidation     = errors.New("booking validation failed")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingForbidden      = errors.New("not allowed to manage this booking")
	ErrBookingDateInPast     = errors.New("Travel date cannot be in the past.")
	ErrBookingNotCancellable = errors.New("booking can no longer be cancelled")
	ErrBookingIDTaken        = errors.New("booking id already in use")
)

// BookingCreateInput carries the client request. BookingID is the external
// reference the client mints up front; eSewa later echoes it back as
// transaction_uuid, so it must arrive with the booking.
type BookingCreateInput struct {
	BookingID          string
	PackageID          uuid.UUID
	TravelDate         time.Time
	NumberOfTravellers int
}

type BookingService struct {
	bookings ports.BookingRepository
	packages ports.PackageRepository
	logger   *log.Logger
	now      func() time.Time
}

func NewBookingService(bookings ports.BookingRepository, packages ports.PackageRepository, logger *log.Logger) *BookingService {
	if logger == nil {
		logger = log.Default()
	}
	return &BookingService{
		bookings: bookings,
		packages: packages,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, input BookingCreateInput) (*domain.Booking, error) {
	bookingID := strings.TrimSpace(input.BookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrBookingValidation)
	}
	if input.TravelDate.IsZero() {
		return nil, fmt.Errorf("%w: travel date is required", ErrBookingValidation)
	}
	if beforeToday(input.TravelDate, s.now()) {
		return nil, ErrBookingDateInPast
	}

	travellers := input.NumberOfTravellers
	if travellers == 0 {
		travellers = 1
	}
	if travellers < 1 {
		return nil, fmt.Errorf("%w: number of travellers must be positive", ErrBookingValidation)
	}

	pkg, err := s.packages.FindByID(ctx, input.PackageID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	booking := &domain.Booking{
		UserID:             userID,
		PackageID:          pkg.ID,
		NumberOfTravellers: travellers,
		TravelDate:         input.TravelDate,
		BookingDate:        s.now(),
		ExternalID:         bookingID,
		TotalPrice:         pkg.Price * float64(travellers),
		Status:             domain.BookingStatusPending,
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrBookingIDTaken
		}
		return nil, err
	}

	if err := s.packages.IncrementBookings(ctx, pkg.ID, 1); err != nil {
		s.logger.Printf("increment bookings for package %s: %v", pkg.ID, err)
	}
	return created, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID, requester *domain.User) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !canViewBooking(booking, requester) {
		return nil, ErrBookingForbidden
	}
	return booking, nil
}

func (s *BookingService) ListAllBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) ListAgencyBookings(ctx context.Context, agencyID uuid.UUID) ([]domain.Booking, error) {
	return s.bookings.ListByAgency(ctx, agencyID)
}

// CancelBooking flips a pending or confirmed booking to cancelled and
// releases its slot on the package counter.
func (s *BookingService) CancelBooking(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != requesterID && !isAdmin {
		return nil, ErrBookingForbidden
	}
	return s.cancel(ctx, booking)
}

// AgencyUpdateStatus lets the package owner confirm or cancel a booking
// placed against one of its packages.
func (s *BookingService) AgencyUpdateStatus(ctx context.Context, id, agencyID uuid.UUID, action string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.PackageCreatedBy != agencyID {
		return nil, ErrBookingForbidden
	}

	switch action {
	case "confirm":
		if booking.Status != domain.BookingStatusPending {
			return nil, fmt.Errorf("%w: only pending bookings can be confirmed", ErrBookingValidation)
		}
		return s.updateStatus(ctx, booking.ID, domain.BookingStatusConfirmed)
	case "cancel":
		return s.cancel(ctx, booking)
	default:
		return nil, fmt.Errorf("%w: action must be confirm or cancel", ErrBookingValidation)
	}
}

// MarkPaid records a successful payment against the external booking
// reference. Replayed callbacks for an already paid booking are a no-op.
func (s *BookingService) MarkPaid(ctx context.Context, externalID, transactionID, method string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByExternalID(ctx, externalID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.Status == domain.BookingStatusPaid {
		return booking, nil
	}
	if booking.Status == domain.BookingStatusCancelled || booking.Status == domain.BookingStatusRefunded {
		return nil, fmt.Errorf("%w: booking is %s", ErrBookingValidation, booking.Status)
	}

	paid, err := s.bookings.MarkPaid(ctx, externalID, transactionID, method)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return paid, nil
}

func (s *BookingService) cancel(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if !booking.Status.Cancellable() {
		return nil, ErrBookingNotCancellable
	}
	cancelled, err := s.updateStatus(ctx, booking.ID, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.packages.IncrementBookings(ctx, booking.PackageID, -1); err != nil {
		s.logger.Printf("decrement bookings for package %s: %v", booking.PackageID, err)
	}
	return cancelled, nil
}

func (s *BookingService) updateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	updated, err := s.bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return updated, nil
}

func canViewBooking(booking *domain.Booking, requester *domain.User) bool {
	if requester == nil {
		return false
	}
	if requester.IsAdmin() || booking.UserID == requester.ID {
		return true
	}
	return requester.IsAgency() && booking.PackageCreatedBy == requester.ID
}

// beforeToday compares calendar days only, so a booking for later today is
// still accepted.
func beforeToday(travelDate, now time.Time) bool {
	y1, m1, d1 := travelDate.Date()
	y2, m2, d2 := now.Date()
	travel := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return travel.Before(today)
}
