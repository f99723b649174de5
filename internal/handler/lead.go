package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/middleware"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
	"github.com/iliyamo/insurance-lead-desk/internal/service"
)

// LeadEvents is notified after a lead has been stored.
type LeadEvents interface {
	LeadCreated(lead model.CreatedLead)
}

// LeadHandler serves lead capture and the admin lead desk.
type LeadHandler struct {
	Responder
	Leads  *repository.LeadRepo
	Events LeadEvents // optional
}

func NewLeadHandler(r Responder, leads *repository.LeadRepo, events LeadEvents) *LeadHandler {
	return &LeadHandler{Responder: r, Leads: leads, Events: events}
}

// Create handles POST /api/leads.
func (h *LeadHandler) Create(c echo.Context) error {
	var in repository.NewLead
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	lead, err := h.Leads.Create(ctx, in)
	if err != nil {
		return h.respondError(c, err, "Failed to create lead")
	}
	service.ObserveLeadCreated(lead.IsDuplicate)
	if h.Events != nil {
		h.Events.LeadCreated(*lead)
	}
	return c.JSON(http.StatusCreated, lead)
}

// List handles GET /api/leads.  Unparsable page and limit fall back to the
// defaults.
func (h *LeadHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	f := repository.LeadFilter{
		Search:      c.QueryParam("search"),
		Status:      c.QueryParam("status"),
		ProductType: c.QueryParam("productType"),
		City:        c.QueryParam("city"),
		StartDate:   c.QueryParam("startDate"),
		EndDate:     c.QueryParam("endDate"),
		Page:        page,
		Limit:       limit,
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Leads.List(ctx, f)
	if err != nil {
		return h.respondError(c, err, "Failed to fetch leads")
	}
	return c.JSON(http.StatusOK, res)
}

// Get handles GET /api/leads/:id.
func (h *LeadHandler) Get(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	lead, err := h.Leads.Get(ctx, c.Param("id"))
	if err != nil {
		return h.respondError(c, err, "Error fetching lead")
	}
	return c.JSON(http.StatusOK, lead)
}

// Update handles PATCH /api/leads/:id.  The body is a partial lead.
func (h *LeadHandler) Update(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	lead, err := h.Leads.Update(ctx, c.Param("id"), patch, p.DisplayName())
	if err != nil {
		return h.respondError(c, err, "Error updating lead")
	}
	return c.JSON(http.StatusOK, lead)
}

// Timeline handles GET /api/leads/:id/timeline.
func (h *LeadHandler) Timeline(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	entries, err := h.Leads.ListTimeline(ctx, c.Param("id"))
	if err != nil {
		return h.respondError(c, err, "Failed to fetch timeline")
	}
	return c.JSON(http.StatusOK, entries)
}

type timelineReq struct {
	Action      string `json:"action"`
	Description string `json:"description"`
}

// AddTimelineEntry handles POST /api/leads/:id/timeline.
func (h *LeadHandler) AddTimelineEntry(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req timelineReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	entry, err := h.Leads.AddTimelineEntry(ctx, c.Param("id"), req.Action, req.Description, p.DisplayName())
	if err != nil {
		return h.respondError(c, err, "Failed to add entry")
	}
	return c.JSON(http.StatusCreated, entry)
}
