// Package sentryx wraps the Sentry client behind helpers that turn into
// no-ops when no DSN is configured.
package sentryx

import (
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled bool

// Init starts the Sentry client. An empty DSN disables reporting and every
// helper in this package becomes a no-op.
func Init(dsn, environment, release string) error {
	if dsn == "" {
		enabled = false
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		enabled = false
		return err
	}
	enabled = true
	return nil
}

// CaptureException reports err with optional extra fields.
func CaptureException(err error, extra map[string]any) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Recover captures a panic and re-panics.
func Recover() {
	if r := recover(); r != nil {
		if enabled {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
		panic(r)
	}
}

// Flush drains buffered events; call before shutdown.
func Flush(timeout time.Duration) {
	if !enabled {
		return
	}
	sentry.Flush(timeout)
}
