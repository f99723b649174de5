package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/handler"
)

// RegisterPolicies registers the customer endpoints under /api/policies.
func RegisterPolicies(e *echo.Echo, h *handler.PolicyHandler, gate Gate) {
	g := e.Group("/api/policies", gate.Auth)
	g.GET("/mine", h.Mine)
	g.POST("", h.Create)
	g.POST("/claim", h.Claim)
	g.POST("/upload", h.Upload)
}
