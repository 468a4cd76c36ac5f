package perf

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/meza/modrinth-pack-builder/internal/fileutils"
)

const defaultExportFilename = "mrpb-perf.json"

type exportSpan struct {
	Name         string                 `json:"name"`
	TraceID      string                 `json:"trace_id"`
	SpanID       string                 `json:"span_id"`
	ParentSpanID string                 `json:"parent_span_id,omitempty"`
	Start        time.Time              `json:"start"`
	DurationNS   int64                  `json:"duration_ns"`
	Failed       bool                   `json:"failed,omitempty"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Events       []exportEvent          `json:"events,omitempty"`
}

type exportEvent struct {
	Name       string                 `json:"name"`
	Timestamp  time.Time              `json:"timestamp"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type exportDocument struct {
	Summary exportSummary `json:"summary"`
	Spans   []exportSpan  `json:"spans"`
}

type exportSummary struct {
	TotalNS   int64 `json:"total_ns"`
	NetworkNS int64 `json:"network_ns"`
	LocalNS   int64 `json:"local_ns"`
}

// ExportToFile writes spans as JSON to <outDir>/mrpb-perf.json. Absolute
// paths in path-like attributes are rewritten relative to baseDir.
// Callers treat a returned error as non-fatal.
func ExportToFile(outDir string, baseDir string, spans []SpanSnapshot, filesystem ...afero.Fs) (string, error) {
	fs := fileutils.InitFilesystem(filesystem...)
	if outDir == "" {
		outDir = "."
	}

	doc := exportDocument{Spans: make([]exportSpan, 0, len(spans))}
	if durations, err := sessionDurationsFromSpans(spans); err == nil {
		doc.Summary = exportSummary{
			TotalNS:   durations.Total.Nanoseconds(),
			NetworkNS: durations.Network.Nanoseconds(),
			LocalNS:   durations.Local.Nanoseconds(),
		}
	}
	for _, span := range spans {
		doc.Spans = append(doc.Spans, toExportSpan(span, baseDir))
	}

	if err := fs.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, defaultExportFilename)
	return path, afero.WriteFile(fs, path, data, 0644)
}

func toExportSpan(span SpanSnapshot, baseDir string) exportSpan {
	out := exportSpan{
		Name:         span.Name,
		TraceID:      span.TraceID,
		SpanID:       span.SpanID,
		ParentSpanID: span.ParentSpanID,
		Start:        span.StartTime,
		DurationNS:   span.Duration().Nanoseconds(),
		Failed:       span.Failed,
		Attributes:   normalizeAttributes(span.Attributes, baseDir),
	}
	for _, event := range span.Events {
		out.Events = append(out.Events, exportEvent{
			Name:       event.Name,
			Timestamp:  event.Timestamp,
			Attributes: normalizeAttributes(event.Attributes, baseDir),
		})
	}
	return out
}

func normalizeAttributes(attrs map[string]interface{}, baseDir string) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for key, value := range attrs {
		out[key] = normalizeValue(key, value, baseDir)
	}
	return out
}

func normalizeValue(key string, value interface{}, baseDir string) interface{} {
	stringValue, ok := value.(string)
	if !ok || !looksLikePathKey(key) {
		return value
	}

	if baseDir != "" && filepath.IsAbs(stringValue) {
		if rel, err := filepath.Rel(baseDir, stringValue); err == nil {
			return exportPath(rel)
		}
	}
	return exportPath(stringValue)
}

func looksLikePathKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key == "path" || strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir")
}

func exportPath(value string) string {
	cleaned := filepath.Clean(value)
	if cleaned == "." {
		return cleaned
	}
	return filepath.ToSlash(strings.TrimPrefix(cleaned, "./"))
}
