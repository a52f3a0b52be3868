// Package tracing defines the public interface for accessing the
// runtime's OpenTelemetry tracer provider.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TracerProvider lets a host integrate the runtime's tracing with its own
// OpenTelemetry setup, or supply a custom implementation.
type TracerProvider interface {
	// GetTracer returns a Tracer instance with the given name and options.
	GetTracer(name string, opts ...trace.TracerOption) trace.Tracer

	// Shutdown flushes any buffered spans and releases resources. It must
	// tolerate being called on a NoOp provider.
	Shutdown(ctx context.Context) error
}
