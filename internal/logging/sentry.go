// Package logging reports fatal errors to Sentry when crash reporting is configured.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// DSNEnv overrides the DSN from the settings file.
const DSNEnv = "CARD_ID_SENTRY_DSN"

var sentryEnabled bool

// SentryOptions carries the [sentry] section of the settings file.
type SentryOptions struct {
	DSN         string
	Environment string
	Version     string
}

// InitSentry initializes Sentry for error reporting.
// Reporting is opt-in: without a DSN, from settings or DSNEnv, nothing is sent.
// Returns true if Sentry was successfully initialized.
func InitSentry(opts SentryOptions) bool {
	dsn := opts.DSN
	if env := os.Getenv(DSNEnv); env != "" {
		dsn = env
	}
	if dsn == "" {
		return false
	}

	environment := opts.Environment
	if environment == "" {
		environment = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          "card-id@" + opts.Version,
		Environment:      environment,
		AttachStacktrace: true,
		TracesSampleRate: 0.0,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize Sentry: %v\n", err)
		return false
	}

	sentryEnabled = true
	return true
}

// SentryEnabled returns whether Sentry is currently enabled.
func SentryEnabled() bool {
	return sentryEnabled
}

// FlushSentry flushes any buffered events to Sentry. Call this before exit.
func FlushSentry(timeout time.Duration) {
	if sentryEnabled {
		sentry.Flush(timeout)
	}
}

// CaptureError sends an error to Sentry, tagged with where it happened.
func CaptureError(err error, context string, data map[string]interface{}) {
	if !sentryEnabled || err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_context", context)
		for k, v := range data {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}
