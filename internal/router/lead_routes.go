package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/handler"
)

// RegisterLeads registers /api/leads.  Capture is public and rate limited;
// everything else is admin only.
func RegisterLeads(e *echo.Echo, h *handler.LeadHandler, gate Gate) {
	g := e.Group("/api/leads")
	g.POST("", h.Create, gate.RateLimit)

	admin := g.Group("", gate.Auth, gate.Admin)
	admin.GET("", h.List)
	admin.GET("/:id", h.Get)
	admin.PATCH("/:id", h.Update)
	admin.GET("/:id/timeline", h.Timeline)
	admin.POST("/:id/timeline", h.AddTimelineEntry)
}

// RegisterContact registers /api/contact.
func RegisterContact(e *echo.Echo, h *handler.ContactHandler, gate Gate) {
	e.POST("/api/contact", h.Create, gate.RateLimit)
	e.GET("/api/contact", h.List, gate.Auth, gate.Admin)
}
