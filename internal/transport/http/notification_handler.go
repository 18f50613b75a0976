package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func RegisterNotifications(e *echo.Echo, auth *service.AuthService, notifications *service.NotificationService) {
	handler := &NotificationHandler{notifications: notifications}

	group := e.Group("/api/v1/notifications", RequireAuth(auth))
	group.GET("", handler.listNotifications)
	group.PATCH("/read-all", handler.markAllRead)
	group.PATCH("/:id/read", handler.markRead)
}

func (h *NotificationHandler) listNotifications(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	notifications, err := h.notifications.ListUserNotifications(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list notifications"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"notifications": notifications, "count": len(notifications)})
}

func (h *NotificationHandler) markRead(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid notification id"))
	}
	if err := h.notifications.MarkRead(c.Request().Context(), notificationID, user.ID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to update notification"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *NotificationHandler) markAllRead(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if err := h.notifications.MarkAllRead(c.Request().Context(), user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to update notifications"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}
