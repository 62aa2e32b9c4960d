package tracing

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/isopodio/isopod"

// Init installs a TracerProvider that writes spans to w
// Returns a shutdown function that flushes pending spans
func Init(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// Tracer returns the library tracer from the installed provider
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span for a coordinator operation
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// WorkerID is the span attribute carrying a worker identity
func WorkerID(id string) attribute.KeyValue {
	return attribute.String("isopod.worker.id", id)
}

// CorrelationID is the span attribute carrying a request correlation id
func CorrelationID(id uint64) attribute.KeyValue {
	return attribute.Int64("isopod.correlation.id", int64(id))
}
