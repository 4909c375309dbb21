// Package telemetry wires Sentry error reporting for abbc3-migrate.
// Reporting is opt-in; when disabled nothing is sent and the errors
// package keeps its nil reporter.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/vse/abbc3-migrate/internal/buildinfo"
	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// Init configures the Sentry SDK from settings and installs the
// SentryReporter. It returns false when telemetry is disabled.
func Init(settings *conf.TelemetrySettings, info *buildinfo.Context, log logger.Logger) (bool, error) {
	if settings == nil || !settings.Enabled {
		return false, nil
	}
	return InitWithOptions(clientOptions(settings, info), log)
}

// InitWithOptions initialises Sentry with explicit client options. Tests use
// it to inject a transport.
func InitWithOptions(opts sentry.ClientOptions, log logger.Logger) (bool, error) {
	if err := sentry.Init(opts); err != nil {
		return false, errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true, sentry.CurrentHub()))
	if log != nil {
		log.Debug("sentry telemetry enabled", logger.String("release", opts.Release))
	}
	return true, nil
}

// Flush waits up to timeout for queued events and detaches the reporter.
func Flush(timeout time.Duration) bool {
	if errors.GetTelemetryReporter() == nil {
		return true
	}
	ok := sentry.Flush(timeout)
	errors.SetTelemetryReporter(nil)
	return ok
}

// clientOptions returns privacy-compliant Sentry options
func clientOptions(settings *conf.TelemetrySettings, info *buildinfo.Context) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              settings.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      settings.Environment,
		ServerName:       "", // Explicitly clear server name to prevent hostname leakage
		Release:          info.Release(),
		BeforeSend:       applyPrivacyFilters,
	}
}

// applyPrivacyFilters strips host and user data from an event
func applyPrivacyFilters(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}
	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}
	return event
}
