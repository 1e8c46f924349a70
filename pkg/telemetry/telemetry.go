// Package telemetry reports per-post failures to Sentry when a DSN is
// configured. Without a DSN every call is a no-op.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"igsaved/pkg/config"
)

const flushTimeout = 2 * time.Second

// Reporter receives failures worth reporting
type Reporter interface {
	Report(err error, tags map[string]string)
	Flush()
}

// Nop discards every report
type Nop struct{}

func (Nop) Report(error, map[string]string) {}
func (Nop) Flush()                          {}

// SentryReporter sends reports through a sentry hub
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter wraps hub
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	return &SentryReporter{hub: hub}
}

// Init sets up the global sentry client from cfg. It returns Nop when no DSN
// is configured.
func Init(cfg config.TelemetryConfig, release string) (Reporter, error) {
	if cfg.SentryDSN == "" {
		return Nop{}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     release,
	})
	if err != nil {
		return Nop{}, err
	}
	return NewSentryReporter(sentry.CurrentHub()), nil
}

// Report captures err with tags attached to its scope
func (r *SentryReporter) Report(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

// Flush waits for queued events to be sent
func (r *SentryReporter) Flush() {
	r.hub.Flush(flushTimeout)
}
