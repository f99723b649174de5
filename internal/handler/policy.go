package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/middleware"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
	"github.com/iliyamo/insurance-lead-desk/internal/service"
	"github.com/iliyamo/insurance-lead-desk/internal/storage"
)

// PolicyHandler serves the customer policy endpoints.
type PolicyHandler struct {
	Responder
	Policies *repository.PolicyRepo
	Files    storage.FileStore
}

func NewPolicyHandler(r Responder, policies *repository.PolicyRepo, files storage.FileStore) *PolicyHandler {
	return &PolicyHandler{Responder: r, Policies: policies, Files: files}
}

// Mine handles GET /api/policies/mine.
func (h *PolicyHandler) Mine(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	policies, err := h.Policies.ListByUser(ctx, p.ID)
	if err != nil {
		return h.respondError(c, err, "Failed to fetch policies")
	}
	return c.JSON(http.StatusOK, policies)
}

// Create handles POST /api/policies.
func (h *PolicyHandler) Create(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in repository.NewPolicy
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	policy, err := h.Policies.Create(ctx, p.ID, in)
	if err != nil {
		return h.respondError(c, err, "Failed to create policy")
	}
	return c.JSON(http.StatusCreated, policy)
}

type claimReq struct {
	PolicyNumber string `json:"policyNumber"`
}

// Claim handles POST /api/policies/claim.
func (h *PolicyHandler) Claim(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req claimReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	policy, err := h.Policies.Claim(ctx, p.ID, req.PolicyNumber)
	if err != nil {
		return h.respondError(c, err, "Failed to claim policy")
	}
	service.ObservePolicyClaimed()
	return c.JSON(http.StatusOK, echo.Map{"message": "Policy successfully linked", "policy": policy})
}

// Upload handles POST /api/policies/upload, a multipart form with the
// fields "type" and "file".
func (h *PolicyHandler) Upload(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	policyType := strings.TrimSpace(c.FormValue("type"))
	fh, err := c.FormFile("file")
	if policyType == "" || err != nil {
		return h.respondError(c, repository.ErrUploadFields, "Type and File are required")
	}
	src, err := fh.Open()
	if err != nil {
		return h.respondError(c, err, "Failed to upload policy")
	}
	defer src.Close()

	ctx, cancel := reqContext(c)
	defer cancel()

	stored, err := h.Files.Save(ctx, fh.Filename, fh.Header.Get(echo.HeaderContentType), src, fh.Size)
	if err != nil {
		return h.respondError(c, err, "Failed to upload policy")
	}
	policy, err := h.Policies.Upload(ctx, p.ID, policyType, stored)
	if err != nil {
		return h.respondError(c, err, "Failed to upload policy")
	}
	service.ObservePolicyUploaded()
	return c.JSON(http.StatusCreated, policy)
}
