package service

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter forwards unexpected errors to Sentry.  A zero Reporter, or one
// built without a DSN, drops everything.
type Reporter struct {
	initialized bool
}

// NewReporter initializes the Sentry client when dsn is set.
func NewReporter(dsn, environment string, log *slog.Logger) *Reporter {
	if dsn == "" {
		log.Info("SENTRY_DSN not set, error reporting disabled")
		return &Reporter{}
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		TracesSampleRate: 0.2,
	}); err != nil {
		log.Warn("sentry initialization failed", slog.String("error", err.Error()))
		return &Reporter{}
	}
	return &Reporter{initialized: true}
}

// CaptureException sends err to Sentry.
func (r *Reporter) CaptureException(err error) {
	if r == nil || !r.initialized {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits for buffered events to be delivered.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r == nil || !r.initialized {
		return true
	}
	return sentry.Flush(timeout)
}
