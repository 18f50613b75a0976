package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

const paymentMethodESewa = "esewa"

type PaymentHandler struct {
	bookings *service.BookingService
}

func RegisterPayments(e *echo.Echo, bookings *service.BookingService) {
	handler := &PaymentHandler{bookings: bookings}

	group := e.Group("/api/v1/payments")
	group.GET("/success", handler.paymentSuccess)
	group.GET("/failure", handler.paymentFailure)
}

// esewaCallback is the payload eSewa base64-encodes into the `data` query
// parameter of its redirect. transaction_uuid carries our booking reference.
type esewaCallback struct {
	TransactionCode string `json:"transaction_code"`
	Status          string `json:"status"`
	TotalAmount     string `json:"total_amount"`
	TransactionUUID string `json:"transaction_uuid"`
	ProductCode     string `json:"product_code"`
}

func (h *PaymentHandler) paymentSuccess(c echo.Context) error {
	callback, err := decodeESewaCallback(c.QueryParam("data"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	if !strings.EqualFold(callback.Status, "COMPLETE") {
		return c.JSON(http.StatusBadRequest, util.Error("payment not complete"))
	}

	booking, err := h.bookings.MarkPaid(c.Request().Context(), callback.TransactionUUID, callback.TransactionCode, paymentMethodESewa)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrBookingValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to record payment"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"booking": buildBookingResponse(booking),
		"message": "Payment recorded",
	})
}

func (h *PaymentHandler) paymentFailure(c echo.Context) error {
	callback, err := decodeESewaCallback(c.QueryParam("data"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"bookingId": callback.TransactionUUID,
		"status":    callback.Status,
		"message":   "Payment was not completed",
	})
}

func decodeESewaCallback(data string) (*esewaCallback, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, errors.New("data query parameter required")
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(data)
	}
	if err != nil {
		return nil, errors.New("data must be base64 encoded")
	}

	var callback esewaCallback
	if err := json.Unmarshal(decoded, &callback); err != nil {
		return nil, errors.New("data must decode to a JSON payload")
	}
	if strings.TrimSpace(callback.TransactionUUID) == "" {
		return nil, errors.New("transaction_uuid missing from payload")
	}
	return &callback, nil
}
