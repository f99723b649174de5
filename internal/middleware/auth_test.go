package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/identity"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

type stubVerifier map[string]identity.Claims

func (s stubVerifier) Verify(_ context.Context, raw string) (identity.Claims, error) {
	c, ok := s[raw]
	if !ok {
		return identity.Claims{}, identity.ErrUnauthorized
	}
	return c, nil
}

type stubProfiles struct {
	users map[string]*model.User
	err   error
}

func (s stubProfiles) Get(_ context.Context, id string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.NotFound("User not found")
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newGate(profiles stubProfiles) *echo.Echo {
	v := stubVerifier{
		"admin-token":   {Subject: "a1", Email: "admin@example.com"},
		"user-token":    {Subject: "u1", Email: "user@example.com", Name: "Token Name"},
		"newbie-token":  {Subject: "n1", Email: "newbie@example.com"},
		"rolless-token": {Subject: "r1", Email: "r@example.com"},
	}
	e := echo.New()
	whoami := func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		return c.String(http.StatusOK, p.ID+"|"+p.Role+"|"+p.Name)
	}
	auth := Authenticate(v, profiles, discard())
	e.GET("/me", whoami, auth)
	e.GET("/admin", whoami, auth, RequireAdmin())
	return e
}

var profiles = stubProfiles{users: map[string]*model.User{
	"a1": {ID: "a1", Name: "Admin", Role: model.RoleAdmin},
	"u1": {ID: "u1", Name: "Asha", Role: model.RoleUser},
	"r1": {ID: "r1", Name: "No Role"},
}}

func TestAuthenticate(t *testing.T) {
	cases := []struct {
		name, path, header string
		wantStatus         int
		wantBody           string
	}{
		{"no header", "/me", "", http.StatusUnauthorized, "Not authorized, no token"},
		{"not bearer", "/me", "Basic abc", http.StatusUnauthorized, "Not authorized, no token"},
		{"empty bearer", "/me", "Bearer ", http.StatusUnauthorized, "Not authorized, no token"},
		{"bearer without space", "/me", "Beareruser-token", http.StatusUnauthorized, "Not authorized, no token"},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized, "Not authorized, token failed"},
		{"user", "/me", "Bearer user-token", http.StatusOK, "u1|user|Asha"},
		{"no profile defaults to user", "/me", "Bearer newbie-token", http.StatusOK, "n1|user|"},
		{"profile without role", "/me", "Bearer rolless-token", http.StatusOK, "r1|user|No Role"},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusOK, "a1|admin|Admin"},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusUnauthorized, "Not authorized as an admin"},
		{"anonymous on admin route", "/admin", "", http.StatusUnauthorized, "Not authorized, no token"},
	}
	e := newGate(profiles)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body = %q, want %q", rec.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestAuthenticateProfileError(t *testing.T) {
	e := newGate(stubProfiles{err: errors.New("store down")})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer user-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}
