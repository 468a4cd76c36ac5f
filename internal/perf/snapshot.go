package perf

import (
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type SpanSnapshot struct {
	Name         string
	TraceID      string
	SpanID       string
	ParentSpanID string
	StartTime    time.Time
	EndTime      time.Time
	Failed       bool
	Attributes   map[string]interface{}
	Events       []EventSnapshot
}

type EventSnapshot struct {
	Name       string
	Timestamp  time.Time
	Attributes map[string]interface{}
}

func (snapshot SpanSnapshot) Duration() time.Duration {
	if snapshot.StartTime.IsZero() || snapshot.EndTime.Before(snapshot.StartTime) {
		return 0
	}
	return snapshot.EndTime.Sub(snapshot.StartTime)
}

func GetSpans() ([]SpanSnapshot, error) {
	spans, err := SnapshotSpans()
	if err != nil {
		return nil, err
	}

	out := make([]SpanSnapshot, 0, len(spans))
	for _, span := range spans {
		out = append(out, snapshotSpan(span))
	}
	return out, nil
}

func FindSpanByName(spans []SpanSnapshot, name string) (SpanSnapshot, bool) {
	for _, span := range spans {
		if span.Name == name {
			return span, true
		}
	}
	return SpanSnapshot{}, false
}

func FilterSpansByName(spans []SpanSnapshot, name string) []SpanSnapshot {
	var out []SpanSnapshot
	for _, span := range spans {
		if span.Name == name {
			out = append(out, span)
		}
	}
	return out
}

func snapshotSpan(span sdktrace.ReadOnlySpan) SpanSnapshot {
	sc := span.SpanContext()

	out := SpanSnapshot{
		Name:       span.Name(),
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		StartTime:  span.StartTime(),
		EndTime:    span.EndTime(),
		Failed:     span.Status().Code == codes.Error,
		Attributes: attributesToMap(span.Attributes()),
	}
	if parent := span.Parent(); parent.IsValid() {
		out.ParentSpanID = parent.SpanID().String()
	}

	for _, event := range span.Events() {
		out.Events = append(out.Events, EventSnapshot{
			Name:       event.Name,
			Timestamp:  event.Time,
			Attributes: attributesToMap(event.Attributes),
		})
	}

	return out
}
