package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/v1/auth")
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	group.POST("/google", handler.google)
	group.GET("/me", handler.me, RequireAuth(auth))
}

func (h *AuthHandler) register(c echo.Context) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("email and password are required"))
	}

	session, err := h.auth.RegisterWithEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthEmailTaken):
			return c.JSON(http.StatusConflict, util.Error(err.Error()))
		case errors.Is(err, service.ErrAuthValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to register"))
		}
	}
	return c.JSON(http.StatusCreated, sessionResponse(session))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("email and password are required"))
	}

	session, err := h.auth.LoginWithEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		case errors.Is(err, service.ErrAuthValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to login"))
		}
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *AuthHandler) google(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id_token is required"))
	}

	session, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthInvalidToken):
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		case errors.Is(err, service.ErrAuthValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to login with google"))
		}
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": user})
}

func sessionResponse(session *service.Session) util.Envelope {
	return util.Envelope{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	}
}
