package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ odata.Logger     = (*SlogLogger)(nil)
	_ transport.Logger = (*SlogLogger)(nil)
	_ transport.Logger = NoopLogger{}
)

func TestNoopLogger(t *testing.T) {
	l := NoopLogger{}
	l.Debug("test")
	l.Info("test")
	l.Warn("test")
	l.Error("test")
	l.Debugf("test %s", "debug")
	l.Infof("test %s", "info")
	l.Warnf("test %s", "warn")
	l.Errorf("test %s", "error")
}

func TestSlogLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelDebug, Writer: &buf})

	tests := []struct {
		name    string
		logFunc func()
		want    string
		level   string
	}{
		{"Debug", func() { l.Debug("debug message", "operation", "get") }, "debug message", "DEBUG"},
		{"Info", func() { l.Info("info message") }, "info message", "INFO"},
		{"Warn", func() { l.Warn("warn message") }, "warn message", "WARN"},
		{"Error", func() { l.Error("error message") }, "error message", "ERROR"},
		{"Debugf", func() { l.Debugf("page %d of %s", 2, "events") }, "page 2 of events", "DEBUG"},
		{"Warnf escaped percent", func() { l.Warnf("100%% done") }, "100% done", "WARN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()
			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "level="+tt.level)
			assert.NotContains(t, out, "%%")
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelWarn, Writer: &buf})

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelInfo, Format: "JSON", Writer: &buf})

	l.Info("request completed", "operation", "events.add", "status", 201)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec))
	assert.Equal(t, "request completed", rec["msg"])
	assert.Equal(t, "events.add", rec["operation"])
	assert.EqualValues(t, 201, rec["status"])
}

func TestNewDefaultLogger(t *testing.T) {
	debug, ok := NewDefaultLogger(true, FormatText).(*SlogLogger)
	require.True(t, ok)
	assert.True(t, debug.Slog().Enabled(context.Background(), slog.LevelDebug))

	quiet, ok := NewDefaultLogger(false, FormatText).(*SlogLogger)
	require.True(t, ok)
	assert.False(t, quiet.Slog().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, quiet.Slog().Enabled(context.Background(), slog.LevelWarn))
}
