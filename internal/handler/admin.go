package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/repository"
	"github.com/iliyamo/insurance-lead-desk/internal/service"
)

// AdminHandler serves the back office under /api/admin.
type AdminHandler struct {
	Responder
	Admin *service.AdminService
	Now   func() time.Time
}

func NewAdminHandler(r Responder, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{Responder: r, Admin: admin, Now: time.Now}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	st, err := h.Admin.Stats(ctx, h.Now())
	if err != nil {
		return h.respondError(c, err, "Server Error")
	}
	return c.JSON(http.StatusOK, st)
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	users, err := h.Admin.RecentUsers(ctx)
	if err != nil {
		return h.respondError(c, err, "Server Error")
	}
	return c.JSON(http.StatusOK, users)
}

// UserDetails handles GET /api/admin/users/:id.
func (h *AdminHandler) UserDetails(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	d, err := h.Admin.UserDetails(ctx, c.Param("id"))
	if err != nil {
		return h.respondError(c, err, "Server Error")
	}
	return c.JSON(http.StatusOK, d)
}

// Policies handles GET /api/admin/policies.
func (h *AdminHandler) Policies(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	policies, err := h.Admin.RecentPolicies(ctx)
	if err != nil {
		return h.respondError(c, err, "Server Error")
	}
	return c.JSON(http.StatusOK, policies)
}

// VerifyPolicy handles PUT /api/admin/policies/:id/verify.
func (h *AdminHandler) VerifyPolicy(c echo.Context) error {
	var in repository.VerifyInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	policy, err := h.Admin.Policies.Verify(ctx, c.Param("id"), in)
	if err != nil {
		return h.respondError(c, err, "Server Error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Policy verified successfully", "policy": policy})
}
