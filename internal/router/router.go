// Package router registers the HTTP routes of the API on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/insurance-lead-desk/internal/handler"
)

// Gate bundles the middleware that protects routes.
type Gate struct {
	Auth      echo.MiddlewareFunc // verified caller required
	Admin     echo.MiddlewareFunc // runs after Auth
	RateLimit echo.MiddlewareFunc // public submission endpoints
	// Register, when set, guards POST /api/auth/register.  It is used when
	// an external provider owns the identities.
	Register echo.MiddlewareFunc
}

// RegisterRoutes registers the unauthenticated infrastructure routes.
// Uploaded files are served from uploadDir unless it is empty.
func RegisterRoutes(e *echo.Echo, uploadDir string) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if uploadDir != "" {
		e.Static("/uploads", uploadDir)
	}
}
