package infrastructure

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"account-service/internal/config"
)

// ErrorReporter forwards unexpected server errors to Sentry. The zero value
// and a reporter built without a DSN are no-ops.
type ErrorReporter struct {
	enabled bool
}

func NewErrorReporter(cfg config.SentryConfig) (*ErrorReporter, error) {
	if cfg.DSN == "" {
		return &ErrorReporter{}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
	}); err != nil {
		return nil, err
	}

	slog.Info("sentry error reporting enabled", "environment", cfg.Environment)
	return &ErrorReporter{enabled: true}, nil
}

func (r *ErrorReporter) Capture(err error, tags map[string]string) {
	if r == nil || !r.enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events.
func (r *ErrorReporter) Flush(timeout time.Duration) {
	if r == nil || !r.enabled {
		return
	}
	sentry.Flush(timeout)
}
