package telemetry

import (
	"context"

	"github.com/dheniges/pnp-client/pkg/odata"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by this module.
const TracerName = "github.com/dheniges/pnp-client"

// Tracing records one client span per request, back-dated to the request's start.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing uses tracer, or the global provider's tracer when nil.
func NewTracing(tracer trace.Tracer) *Tracing {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &Tracing{tracer: tracer}
}

// Observe implements odata.Observer.
func (t *Tracing) Observe(ctx context.Context, e odata.Event) {
	_, span := t.tracer.Start(ctx, e.Operation,
		trace.WithTimestamp(e.Start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", e.Method),
			attribute.String("url.full", e.URL),
			attribute.String("pnp.outcome", e.Outcome()),
		),
	)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End(trace.WithTimestamp(e.Start.Add(e.Duration)))
}
