package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/handler"
)

// RegisterAuth registers /api/auth.  Only /me needs a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate Gate) {
	g := e.Group("/api/auth")
	if gate.Register != nil {
		g.POST("/register", a.Register, gate.Register)
	} else {
		g.POST("/register", a.Register)
	}
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, gate.Auth)
}
