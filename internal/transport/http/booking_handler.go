package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

type BookingHandler struct {
	bookings *service.BookingService
}

func RegisterBookings(e *echo.Echo, auth *service.AuthService, bookings *service.BookingService) {
	handler := &BookingHandler{bookings: bookings}

	protected := e.Group("/api/v1/bookings", RequireAuth(auth))
	protected.POST("", handler.createBooking)
	protected.GET("", handler.listOwnBookings)
	protected.GET("/all", handler.listAllBookings, RequireAdmin())
	protected.GET("/agency", handler.listAgencyBookings, RequireAgency())
	protected.GET("/:id", handler.getBooking)
	protected.PUT("/:id/cancel", handler.cancelBooking)
	protected.PATCH("/:id/status", handler.updateStatus, RequireAgency())
}

func (h *BookingHandler) createBooking(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		BookingID          string `json:"bookingId"`
		PackageID          string `json:"packageId"`
		TravelDate         string `json:"travelDate"`
		NumberOfTravellers int    `json:"numberOfTravellers"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	packageID, err := uuid.Parse(strings.TrimSpace(req.PackageID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("packageId must be a valid UUID"))
	}
	travelDate, err := parseTravelDate(req.TravelDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	booking, err := h.bookings.CreateBooking(c.Request().Context(), user.ID, service.BookingCreateInput{
		BookingID:          req.BookingID,
		PackageID:          packageID,
		TravelDate:         travelDate,
		NumberOfTravellers: req.NumberOfTravellers,
	})
	if err != nil {
		return h.writeBookingError(c, err, "unable to create booking")
	}
	return c.JSON(http.StatusCreated, util.Envelope{"booking": buildBookingResponse(booking)})
}

func (h *BookingHandler) getBooking(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid booking id"))
	}
	booking, err := h.bookings.GetBooking(c.Request().Context(), bookingID, user)
	if err != nil {
		return h.writeBookingError(c, err, "unable to load booking")
	}
	return c.JSON(http.StatusOK, util.Envelope{"booking": buildBookingResponse(booking)})
}

func (h *BookingHandler) listOwnBookings(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	bookings, err := h.bookings.ListUserBookings(c.Request().Context(), user.ID)
	if err != nil {
		return h.writeBookingError(c, err, "unable to list bookings")
	}
	return c.JSON(http.StatusOK, bookingListResponse(bookings))
}

func (h *BookingHandler) listAllBookings(c echo.Context) error {
	bookings, err := h.bookings.ListAllBookings(c.Request().Context())
	if err != nil {
		return h.writeBookingError(c, err, "unable to list bookings")
	}
	return c.JSON(http.StatusOK, bookingListResponse(bookings))
}

func (h *BookingHandler) listAgencyBookings(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	bookings, err := h.bookings.ListAgencyBookings(c.Request().Context(), user.ID)
	if err != nil {
		return h.writeBookingError(c, err, "unable to list bookings")
	}
	return c.JSON(http.StatusOK, bookingListResponse(bookings))
}

func (h *BookingHandler) cancelBooking(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid booking id"))
	}
	booking, err := h.bookings.CancelBooking(c.Request().Context(), bookingID, user.ID, user.IsAdmin())
	if err != nil {
		return h.writeBookingError(c, err, "unable to cancel booking")
	}
	return c.JSON(http.StatusOK, util.Envelope{"booking": buildBookingResponse(booking)})
}

// updateStatus handles the agency confirm/cancel actions.
func (h *BookingHandler) updateStatus(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid booking id"))
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	booking, err := h.bookings.AgencyUpdateStatus(c.Request().Context(), bookingID, user.ID, req.Action)
	if err != nil {
		return h.writeBookingError(c, err, "unable to update booking")
	}
	return c.JSON(http.StatusOK, util.Envelope{"booking": buildBookingResponse(booking)})
}

func (h *BookingHandler) writeBookingError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrPackageNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrBookingForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrBookingNotCancellable):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrBookingIDTaken):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrBookingDateInPast):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrBookingValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}

// parseTravelDate accepts a bare date or a full RFC3339 timestamp.
func parseTravelDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("travelDate is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("travelDate must be YYYY-MM-DD or RFC3339")
}

func bookingListResponse(bookings []domain.Booking) util.Envelope {
	payload := make([]util.Envelope, 0, len(bookings))
	for i := range bookings {
		payload = append(payload, buildBookingResponse(&bookings[i]))
	}
	return util.Envelope{"bookings": payload, "count": len(payload)}
}

func buildBookingResponse(booking *domain.Booking) util.Envelope {
	if booking == nil {
		return util.Envelope{}
	}
	resp := util.Envelope{
		"id":                 booking.ID,
		"bookingId":          booking.ExternalID,
		"userId":             booking.UserID,
		"packageId":          booking.PackageID,
		"numberOfTravellers": booking.NumberOfTravellers,
		"travelDate":         booking.TravelDate.Format("2006-01-02"),
		"bookingDate":        booking.BookingDate,
		"totalPrice":         booking.TotalPrice,
		"status":             booking.Status,
		"createdAt":          booking.CreatedAt,
		"updatedAt":          booking.UpdatedAt,
	}
	if booking.TransactionID != nil {
		resp["transactionId"] = *booking.TransactionID
	}
	if booking.PaymentMethod != nil {
		resp["paymentMethod"] = *booking.PaymentMethod
	}
	if booking.PaidAt != nil {
		resp["paidAt"] = *booking.PaidAt
	}
	if booking.BookerName != nil {
		resp["bookerName"] = *booking.BookerName
	}
	if booking.BookerEmail != nil {
		resp["bookerEmail"] = *booking.BookerEmail
	}
	if booking.BookerRole != nil {
		resp["bookerRole"] = *booking.BookerRole
	}
	if booking.BookerImage != nil {
		resp["bookerImage"] = *booking.BookerImage
	}
	if booking.PackageTitle != nil {
		resp["packageTitle"] = *booking.PackageTitle
	}
	if booking.PackagePrice != nil {
		resp["packagePrice"] = *booking.PackagePrice
	}
	if booking.PackageDuration != nil {
		resp["packageDuration"] = *booking.PackageDuration
	}
	return resp
}
