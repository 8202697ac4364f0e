package cache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/goliatone/go-statestore/pkg/cache"

// Attribute keys recorded on cache spans.
const (
	AttrKey = attribute.Key("statestore.cache.key")
	AttrHit = attribute.Key("statestore.cache.hit")
)

type tracedBackend struct {
	next   Backend
	tracer trace.Tracer
}

// Traced wraps next so every call records a span on provider. A nil provider
// uses the global one.
func Traced(next Backend, provider trace.TracerProvider) Backend {
	if next == nil {
		return nil
	}
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &tracedBackend{next: next, tracer: provider.Tracer(tracerName)}
}

func (b *tracedBackend) Has(ctx context.Context, key string) (bool, error) {
	ctx, span := b.start(ctx, "cache.has", key)
	defer span.End()
	ok, err := b.next.Has(ctx, key)
	span.SetAttributes(AttrHit.Bool(ok))
	return ok, record(span, err)
}

func (b *tracedBackend) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := b.start(ctx, "cache.get", key)
	defer span.End()
	value, ok, err := b.next.Get(ctx, key)
	span.SetAttributes(AttrHit.Bool(ok))
	return value, ok, record(span, err)
}

func (b *tracedBackend) Set(ctx context.Context, key, value string) error {
	ctx, span := b.start(ctx, "cache.set", key)
	defer span.End()
	span.SetAttributes(attribute.Int("statestore.cache.bytes", len(value)))
	return record(span, b.next.Set(ctx, key, value))
}

func (b *tracedBackend) Delete(ctx context.Context, key string) error {
	ctx, span := b.start(ctx, "cache.delete", key)
	defer span.End()
	return record(span, Delete(ctx, b.next, key))
}

func (b *tracedBackend) Keys(ctx context.Context) ([]string, error) {
	ctx, span := b.tracer.Start(ctx, "cache.keys", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	keys, err := Keys(ctx, b.next)
	return keys, record(span, err)
}

func (b *tracedBackend) start(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrKey.String(key)),
	)
}

func record(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
