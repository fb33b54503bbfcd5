package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys for store operations.
const (
	AttrDiagramName = "diagram.name"
	AttrDiagramID   = "diagram.id"
	AttrFormat      = "diagram.format"
	AttrRevision    = "diagram.revision"
	AttrBytes       = "diagram.bytes"
	AttrCacheHit    = "cache.hit"
	AttrResultCount = "result.count"
)

// Span names
const (
	SpanStoreSave   = "store.save"
	SpanStoreLoad   = "store.load"
	SpanStoreList   = "store.list"
	SpanStoreDelete = "store.delete"
	SpanStoreFetch  = "store.fetch"
)

// Run wraps fn in a span named name. A non-nil error is recorded on the
// span and returned unchanged.
func Run(ctx context.Context, tracer trace.Tracer, name string, fn func(ctx context.Context, span trace.Span) error, attrs ...attribute.KeyValue) error {
	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(attrs...))
	defer span.End()

	if err := fn(ctx, span); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
