package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/identity"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

const principalKey = "principal"

// ProfileLookup loads the stored profile of a verified subject.
type ProfileLookup interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// Authenticate verifies the bearer token and stores the caller's principal
// on the context.  The role comes from the stored profile; subjects without
// a profile (or without a role) are plain users.
func Authenticate(v identity.Verifier, profiles ProfileLookup, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, no token"})
			}
			ctx := c.Request().Context()
			claims, err := v.Verify(ctx, raw)
			if err != nil {
				logger.Debug("token rejected", slog.String("error", err.Error()), slog.String("remote_ip", c.RealIP()))
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, token failed"})
			}

			p := model.Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name, Role: model.RoleUser}
			profile, err := profiles.Get(ctx, claims.Subject)
			switch {
			case err == nil:
				if profile.Role != "" {
					p.Role = profile.Role
				}
				if profile.Name != "" {
					p.Name = profile.Name
				}
				if p.Email == "" {
					p.Email = profile.Email
				}
			case errors.Is(err, repository.ErrNotFound):
			default:
				logger.Error("profile lookup failed", slog.String("user_id", claims.Subject), slog.String("error", err.Error()))
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, token failed"})
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// PrincipalFrom returns the caller set by Authenticate.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}
