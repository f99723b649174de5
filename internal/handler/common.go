package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/identity"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

// requestTimeout bounds the store calls of a single request.
const requestTimeout = 10 * time.Second

// ErrorReporter receives unexpected (500) errors.
type ErrorReporter interface {
	CaptureException(err error)
}

// Responder turns errors into JSON answers.  Every handler embeds one.
type Responder struct {
	Log      *slog.Logger
	Reporter ErrorReporter
}

// respondError writes {"message": ...} with the status of err's kind.
// Unexpected errors are logged, reported and answered with fallback.
func (r Responder) respondError(c echo.Context, err error, fallback string) error {
	var re *repository.Error
	switch {
	case errors.As(err, &re):
		return c.JSON(statusOf(re.Kind), echo.Map{"message": re.Message})
	case errors.Is(err, repository.ErrValidation), errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": fallback})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": fallback})
	case errors.Is(err, identity.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	if r.Log != nil {
		r.Log.Error(fallback,
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	if r.Reporter != nil {
		r.Reporter.CaptureException(err)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": fallback})
}

func statusOf(kind error) int {
	switch kind {
	case repository.ErrNotFound:
		return http.StatusNotFound
	case repository.ErrValidation, repository.ErrConflict:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

// unauthorized answers a protected route reached without a principal.
func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, no token"})
}

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
