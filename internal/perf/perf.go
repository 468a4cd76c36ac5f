// Package perf records OpenTelemetry spans in memory so a run can be exported
// as a JSON timeline with --perf.
package perf

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/meza/modrinth-pack-builder"

type Config struct {
	Enabled bool
}

var ErrNotEnabled = errors.New("performance tracing is not enabled")

var (
	stateMu  sync.Mutex
	enabled  bool
	provider *sdktrace.TracerProvider
	exporter *spanExporter
	tracer   trace.Tracer = noop.NewTracerProvider().Tracer(tracerName)
)

// Init installs a recording tracer provider when cfg.Enabled is set. It also
// becomes the global provider so instrumented HTTP transports report into it.
func Init(cfg Config) error {
	stateMu.Lock()
	defer stateMu.Unlock()

	if !cfg.Enabled {
		enabled = false
		tracer = noop.NewTracerProvider().Tracer(tracerName)
		return nil
	}

	if provider == nil {
		exporter = newSpanExporter()
		provider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	}
	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(tracerName)
	enabled = true
	return nil
}

// Reset drops every recorded span and returns to the disabled state.
func Reset() {
	stateMu.Lock()
	defer stateMu.Unlock()

	if provider != nil {
		_ = provider.Shutdown(context.Background())
	}
	provider = nil
	exporter = nil
	enabled = false
	tracer = noop.NewTracerProvider().Tracer(tracerName)
	otel.SetTracerProvider(noop.NewTracerProvider())
}

func Enabled() bool {
	stateMu.Lock()
	defer stateMu.Unlock()
	return enabled
}

func WithAttributes(attrs ...attribute.KeyValue) trace.SpanStartEventOption {
	return trace.WithAttributes(attrs...)
}

type Span struct {
	span trace.Span
}

func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	stateMu.Lock()
	current := tracer
	stateMu.Unlock()

	ctx, span := current.Start(ctx, name, opts...)
	return ctx, &Span{span: span}
}

func (span *Span) End() {
	if span == nil || span.span == nil {
		return
	}
	span.span.End()
}

func (span *Span) SetAttributes(attrs ...attribute.KeyValue) {
	if span == nil || span.span == nil {
		return
	}
	span.span.SetAttributes(attrs...)
}

func (span *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	if span == nil || span.span == nil {
		return
	}
	span.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed. A nil error is ignored.
func (span *Span) RecordError(err error) {
	if span == nil || span.span == nil || err == nil {
		return
	}
	span.span.RecordError(err)
	span.span.SetStatus(codes.Error, err.Error())
}

// SnapshotSpans returns the finished spans recorded since Init.
func SnapshotSpans() ([]sdktrace.ReadOnlySpan, error) {
	stateMu.Lock()
	defer stateMu.Unlock()

	if !enabled || exporter == nil {
		return nil, ErrNotEnabled
	}
	return exporter.Snapshot(), nil
}

func attributesToMap(attrs []attribute.KeyValue) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for _, attr := range attrs {
		out[string(attr.Key)] = attr.Value.AsInterface()
	}
	return out
}
