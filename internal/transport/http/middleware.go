package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

const (
	contextUserKey  = "auth.user"
	contextTokenKey = "auth.token"
)

func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			token := strings.TrimSpace(parts[1])
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
			}
			c.Set(contextUserKey, user)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return requireRole("admin privileges required", func(user *domain.User) bool {
		return user.IsAdmin()
	})
}

// RequireAgency also admits admins so support staff can act on agency routes.
func RequireAgency() echo.MiddlewareFunc {
	return requireRole("agency privileges required", func(user *domain.User) bool {
		return user.IsAgency() || user.IsAdmin()
	})
}

func requireRole(message string, allowed func(*domain.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok || user == nil {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			if !allowed(user) {
				return c.JSON(http.StatusForbidden, util.Error(message))
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok
}
