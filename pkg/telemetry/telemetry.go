// Package telemetry provides odata.Observer implementations that turn request
// events into log lines, Prometheus metrics and OpenTelemetry spans.
package telemetry

import (
	"context"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// Logger is the subset of internal/logger.Logger used here.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type logging struct {
	logger Logger
}

// Logging reports successful requests at debug level and failures as warnings.
func Logging(l Logger) odata.Observer {
	return logging{logger: l}
}

func (o logging) Observe(_ context.Context, e odata.Event) {
	args := []any{
		"operation", e.Operation,
		"method", e.Method,
		"duration", e.Duration.Round(time.Millisecond).String(),
		"outcome", e.Outcome(),
	}
	if e.Err != nil {
		o.logger.Warn("request failed", append(args, "error", e.Err)...)
		return
	}
	o.logger.Debug("request completed", args...)
}
