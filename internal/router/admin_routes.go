package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/handler"
)

// RegisterAdmin registers the back office under /api/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, gate Gate) {
	g := e.Group("/api/admin", gate.Auth, gate.Admin)
	g.GET("/stats", h.Stats)
	g.GET("/users", h.Users)
	g.GET("/users/:id", h.UserDetails)
	g.GET("/policies", h.Policies)
	g.PUT("/policies/:id/verify", h.VerifyPolicy)
}
