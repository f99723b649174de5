package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

// ContactHandler serves the contact form and its admin listing.
type ContactHandler struct {
	Responder
	Contacts *repository.ContactRepo
}

func NewContactHandler(r Responder, contacts *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{Responder: r, Contacts: contacts}
}

// Create handles POST /api/contact.
func (h *ContactHandler) Create(c echo.Context) error {
	var in repository.NewContact
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	msg, err := h.Contacts.Create(ctx, in)
	if err != nil {
		return h.respondError(c, err, "Failed to send message")
	}
	return c.JSON(http.StatusCreated, msg)
}

// List handles GET /api/contact.
func (h *ContactHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	msgs, err := h.Contacts.List(ctx)
	if err != nil {
		return h.respondError(c, err, "Failed to fetch messages")
	}
	return c.JSON(http.StatusOK, msgs)
}
