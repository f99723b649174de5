package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin lets only admins through.  It must run after Authenticate.
// Non-admins get 401, not 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p, ok := PrincipalFrom(c); !ok || !p.IsAdmin() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized as an admin"})
			}
			return next(c)
		}
	}
}
