package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// ErrorReporter forwards unexpected errors to Sentry when a DSN is configured.
// The zero value is a disabled reporter.
type ErrorReporter struct {
	enabled bool
}

// NewErrorReporter initializes Sentry. An empty dsn disables reporting.
func NewErrorReporter(dsn, environment string, logger *slog.Logger) *ErrorReporter {
	if dsn == "" {
		logger.Info("SENTRY_DSN not set, error reporting disabled")
		return &ErrorReporter{}
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		logger.Error("sentry initialization failed", "error", err)
		return &ErrorReporter{}
	}
	return &ErrorReporter{enabled: true}
}

// CaptureException reports err, tagged with the request id from ctx.
func (r *ErrorReporter) CaptureException(ctx context.Context, err error) {
	if r == nil || !r.enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if id := RequestID(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be sent.
func (r *ErrorReporter) Flush(timeout time.Duration) {
	if r == nil || !r.enabled {
		return
	}
	sentry.Flush(timeout)
}
