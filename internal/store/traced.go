package store

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bugTracker/store"

// Traced decorates a Gateway with one span per call.
// With no tracer provider installed the global no-op provider makes this free.
type Traced struct {
	inner  Gateway
	tracer trace.Tracer
}

var _ Gateway = (*Traced)(nil)

// WithTracing wraps g using the global tracer provider.
func WithTracing(g Gateway) *Traced {
	return &Traced{inner: g, tracer: otel.Tracer(tracerName)}
}

func (t *Traced) start(ctx context.Context, op, query string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("db.operation", op)}
	if query != "" {
		attrs = append(attrs, attribute.String("db.statement", strings.Join(strings.Fields(query), " ")))
	}
	return t.tracer.Start(ctx, "store."+op,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *Traced) Get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	ctx, span := t.start(ctx, "get", query)
	found, err := t.inner.Get(ctx, dest, query, args...)
	span.SetAttributes(attribute.Bool("db.found", found))
	end(span, err)
	return found, err
}

func (t *Traced) Select(ctx context.Context, dest any, query string, args ...any) error {
	ctx, span := t.start(ctx, "select", query)
	err := t.inner.Select(ctx, dest, query, args...)
	end(span, err)
	return err
}

func (t *Traced) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, span := t.start(ctx, "exec", query)
	n, err := t.inner.Exec(ctx, query, args...)
	span.SetAttributes(attribute.Int64("db.rows_affected", n))
	end(span, err)
	return n, err
}

func (t *Traced) InsertID(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, span := t.start(ctx, "insert", query)
	id, err := t.inner.InsertID(ctx, query, args...)
	end(span, err)
	return id, err
}

func (t *Traced) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := t.start(ctx, "tx", "")
	err := t.inner.InTx(ctx, fn)
	end(span, err)
	return err
}

func (t *Traced) Ping(ctx context.Context) error {
	ctx, span := t.start(ctx, "ping", "")
	err := t.inner.Ping(ctx)
	end(span, err)
	return err
}
