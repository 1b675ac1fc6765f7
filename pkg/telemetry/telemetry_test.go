package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func sampleEvents() []odata.Event {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []odata.Event{
		{Operation: "events.add", Method: http.MethodPost, URL: "https://graph.example.com/v1.0/me/events", Start: start, Duration: 120 * time.Millisecond},
		{Operation: "events.add", Method: http.MethodPost, URL: "https://graph.example.com/v1.0/me/events", Start: start, Duration: 80 * time.Millisecond},
		{Operation: "count", Method: http.MethodGet, URL: "https://graph.example.com/v1.0/users", Start: start, Duration: time.Second, Err: errors.New("throttled")},
	}
}

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	for _, e := range sampleEvents() {
		m.Observe(context.Background(), e)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("events.add", http.MethodPost, odata.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("count", http.MethodGet, odata.OutcomeError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestTracingObserve(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tr := NewTracing(tp.Tracer(TracerName))

	events := sampleEvents()
	for _, e := range events {
		tr.Observe(context.Background(), e)
	}

	spans := sr.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "events.add", spans[0].Name())
	assert.True(t, events[0].Start.Equal(spans[0].StartTime()))
	assert.True(t, events[0].Start.Add(events[0].Duration).Equal(spans[0].EndTime()))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "count", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
	assert.Equal(t, "throttled", spans[2].Status().Description)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.lines = append(l.lines, fmt.Sprint("DEBUG ", msg, args))
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.lines = append(l.lines, fmt.Sprint("WARN ", msg, args))
}

func TestLoggingObserve(t *testing.T) {
	l := &recordingLogger{}
	obs := Logging(l)
	for _, e := range sampleEvents() {
		obs.Observe(context.Background(), e)
	}

	require.Len(t, l.lines, 3)
	assert.Contains(t, l.lines[0], "DEBUG request completed")
	assert.Contains(t, l.lines[0], "120ms")
	assert.Contains(t, l.lines[2], "WARN request failed")
	assert.Contains(t, l.lines[2], "throttled")
}
