package telemetry

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igsaved/pkg/config"
)

func TestInitWithoutDSN(t *testing.T) {
	r, err := Init(config.TelemetryConfig{}, "test")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, r)

	r.Report(errors.New("ignored"), nil)
	r.Flush()
}

func TestInitRejectsBadDSN(t *testing.T) {
	_, err := Init(config.TelemetryConfig{SentryDSN: "not a dsn"}, "test")
	assert.Error(t, err)
}

func TestSentryReporterTagsEvents(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)

	r := NewSentryReporter(sentry.NewHub(client, sentry.NewScope()))
	r.Report(errors.New("fetch failed"), map[string]string{"post_id": "42"})
	r.Report(nil, nil)
	r.Flush()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "42", events[0].Tags["post_id"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "fetch failed", events[0].Exception[0].Value)
}
