// Package telemetry wires allocator.Allocator's Allocate/Deallocate calls
// into OpenTelemetry spans exported to Jaeger.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/fklr/atomalloc/internal/allocator"
)

const (
	serviceName    = "atomalloc"
	serviceVersion = "0.1.0"
)

var provider *tracesdk.TracerProvider

// Init configures a Jaeger-backed TracerProvider and registers it globally.
// An empty jaegerEndpoint defaults to the collector's well-known local port.
func Init(jaegerEndpoint string) error {
	if jaegerEndpoint == "" {
		jaegerEndpoint = "http://localhost:14268/api/traces"
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		return fmt.Errorf("telemetry: create jaeger exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return fmt.Errorf("telemetry: build resource: %w", err)
	}

	provider = tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return nil
}

// Shutdown flushes and stops the tracer provider, if Init was called.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

func tracer() trace.Tracer {
	return otel.Tracer(serviceName)
}

// TracedAllocator wraps an *allocator.Allocator so each Allocate/Deallocate
// call becomes a span, tagged with the requested size and, on success, the
// resulting block's byte length.
type TracedAllocator struct {
	*allocator.Allocator
}

// Wrap returns a TracedAllocator over alloc.
func Wrap(alloc *allocator.Allocator) *TracedAllocator {
	return &TracedAllocator{Allocator: alloc}
}

// Allocate traces the underlying Allocate call.
func (t *TracedAllocator) Allocate(ctx context.Context, size int) (*allocator.Block, error) {
	_, span := tracer().Start(ctx, "allocator.Allocate", trace.WithAttributes(
		attribute.Int("atomalloc.requested_size", size),
	))
	defer span.End()

	b, err := t.Allocator.Allocate(size)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("atomalloc.block_size", b.Size()))
	return b, nil
}

// Deallocate traces the underlying Deallocate call.
func (t *TracedAllocator) Deallocate(ctx context.Context, b *allocator.Block) error {
	_, span := tracer().Start(ctx, "allocator.Deallocate", trace.WithAttributes(
		attribute.Int("atomalloc.block_size", b.Size()),
	))
	defer span.End()

	if err := t.Allocator.Deallocate(b); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
