package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/identity"
	"github.com/iliyamo/insurance-lead-desk/internal/middleware"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints.  Local is nil when
// identities are managed by an external provider; registration then only
// creates the profile of the already verified caller.
type AuthHandler struct {
	Responder
	Local *identity.LocalProvider
	Users *repository.UserRepo
}

func NewAuthHandler(r Responder, local *identity.LocalProvider, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Responder: r, Local: local, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResp struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt string     `json:"createdAt,omitempty"`
	Token     string     `json:"token,omitempty"`
	Expires   *time.Time `json:"expires,omitempty"`
}

func profileResp(u *model.User) userResp {
	role := u.Role
	if role == "" {
		role = model.RoleUser
	}
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, Role: role, CreatedAt: u.CreatedAt}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid user data")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if h.Local == nil {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}
		name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
		if name == "" {
			name = p.Name
		}
		if email == "" {
			email = p.Email
		}
		u, err := h.Users.Register(ctx, p.ID, name, email)
		if err != nil {
			return h.respondError(c, err, "Invalid user data")
		}
		return c.JSON(http.StatusCreated, profileResp(u))
	}

	claims, err := h.Local.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return h.respondError(c, err, "Invalid user data")
	}
	u, err := h.Users.Register(ctx, claims.Subject, req.Name, claims.Email)
	if err != nil {
		if ferr := h.Local.Forget(ctx, claims.Subject); ferr != nil {
			h.Log.Error("register: credential rollback failed",
				slog.String("subject", claims.Subject), slog.String("error", ferr.Error()))
		}
		return h.respondError(c, err, "Invalid user data")
	}
	tok, err := h.Local.IssueToken(claims)
	if err != nil {
		return h.respondError(c, err, "Invalid user data")
	}
	resp := profileResp(u)
	resp.Token, resp.Expires = tok.Token, &tok.Exp
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	if h.Local == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "Please login using your identity provider"})
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	claims, err := h.Local.SignIn(ctx, req.Email, req.Password)
	if errors.Is(err, identity.ErrUnauthorized) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}
	if err != nil {
		return h.respondError(c, err, "Login failed")
	}

	resp := userResp{ID: claims.Subject, Name: claims.Email, Email: claims.Email, Role: model.RoleUser}
	u, err := h.Users.Get(ctx, claims.Subject)
	switch {
	case err == nil:
		resp = profileResp(u)
		claims.Name = u.Name
	case !errors.Is(err, repository.ErrNotFound):
		return h.respondError(c, err, "Login failed")
	}
	tok, err := h.Local.IssueToken(claims)
	if err != nil {
		return h.respondError(c, err, "Login failed")
	}
	resp.Token, resp.Expires = tok.Token, &tok.Exp
	return c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout.  Tokens are stateless; the client
// drops its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me.  Callers without a stored profile get one
// synthesized from the token.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.Get(ctx, p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, userResp{ID: p.ID, Name: p.Email, Email: p.Email, Role: model.RoleUser})
	}
	if err != nil {
		return h.respondError(c, err, "Error fetching user profile")
	}
	return c.JSON(http.StatusOK, profileResp(u))
}
