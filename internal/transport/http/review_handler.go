package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func RegisterReviews(e *echo.Echo, auth *service.AuthService, reviews *service.ReviewService) {
	handler := &ReviewHandler{reviews: reviews}

	public := e.Group("/api/v1/places/:place_id/reviews")
	public.GET("", handler.listReviews)

	protected := e.Group("/api/v1/places/:place_id/reviews", RequireAuth(auth))
	protected.POST("", handler.createReview)

	owner := e.Group("/api/v1/reviews", RequireAuth(auth))
	owner.PATCH("/:id", handler.updateReview)
	owner.DELETE("/:id", handler.deleteReview)
}

func (h *ReviewHandler) createReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	placeID, err := uuid.Parse(c.Param("place_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	review, err := h.reviews.AddReview(c.Request().Context(), user.ID, placeID, req.Rating, req.Comment)
	if err != nil {
		return h.writeReviewError(c, err, "unable to create review")
	}
	return c.JSON(http.StatusCreated, util.Envelope{"review": review})
}

func (h *ReviewHandler) listReviews(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("place_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}
	reviews, err := h.reviews.ListPlaceReviews(c.Request().Context(), placeID)
	if err != nil {
		return h.writeReviewError(c, err, "unable to list reviews")
	}
	return c.JSON(http.StatusOK, util.Envelope{"reviews": reviews, "count": len(reviews)})
}

func (h *ReviewHandler) updateReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}

	var req struct {
		Rating  *int    `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	review, err := h.reviews.UpdateReview(c.Request().Context(), reviewID, user.ID, req.Rating, req.Comment)
	if err != nil {
		return h.writeReviewError(c, err, "unable to update review")
	}
	return c.JSON(http.StatusOK, util.Envelope{"review": review})
}

func (h *ReviewHandler) deleteReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}

	if err := h.reviews.DeleteReview(c.Request().Context(), reviewID, user.ID); err != nil {
		return h.writeReviewError(c, err, "unable to delete review")
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *ReviewHandler) writeReviewError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrPlaceNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrReviewForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrReviewValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}
