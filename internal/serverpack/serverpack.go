// Package serverpack copies the mods a dedicated server needs into their own
// directory.
package serverpack

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/external"
	"github.com/meza/modrinth-pack-builder/internal/fileutils"
	"github.com/meza/modrinth-pack-builder/internal/logger"
	"github.com/meza/modrinth-pack-builder/internal/models"
	"github.com/meza/modrinth-pack-builder/internal/perf"
	"github.com/meza/modrinth-pack-builder/internal/report"
	"github.com/meza/modrinth-pack-builder/internal/tui"
)

type Options struct {
	ModsDir        string
	ReportPath     string
	ExternalPath   string
	OutputDir      string
	IncludeUnknown bool
	Clean          bool
}

// Candidate is one mod considered for the server directory.
type Candidate struct {
	Name    string
	File    string
	Support models.ServerSupport
}

type Result struct {
	Copied  []Candidate
	Skipped []Candidate
	Unknown []Candidate
}

// Classify lists downloaded report entries followed by external entries that
// name a file.
func Classify(entries models.Report, mods []models.ExternalMod) []Candidate {
	candidates := make([]Candidate, 0, len(entries)+len(mods))
	for _, entry := range entries.Downloaded() {
		if strings.TrimSpace(entry.File) == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:    entry.DisplayName(),
			File:    entry.File,
			Support: entry.Sides().ServerSupport(),
		})
	}
	for _, mod := range mods {
		if strings.TrimSpace(mod.File) == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:    mod.DisplayName(),
			File:    strings.TrimSpace(mod.File),
			Support: mod.Sides().ServerSupport(),
		})
	}
	return candidates
}

// ShouldCopy never admits unsupported mods; unknown ones need includeUnknown.
func (candidate Candidate) ShouldCopy(includeUnknown bool) bool {
	switch candidate.Support {
	case models.SupportSupported:
		return true
	case models.SupportUnknown:
		return includeUnknown
	default:
		return false
	}
}

type Extractor struct {
	fs      afero.Fs
	log     *logger.Logger
	painter *tui.Painter
}

func NewExtractor(fs afero.Fs, log *logger.Logger, painter *tui.Painter) *Extractor {
	return &Extractor{fs: fs, log: log, painter: painter}
}

func (extractor *Extractor) Extract(ctx context.Context, opts Options) (result Result, err error) {
	_, span := perf.StartSpan(ctx, "server.extract", perf.WithAttributes(attribute.String("output_dir", opts.OutputDir)))
	defer func() {
		span.SetAttributes(attribute.Int("copied", len(result.Copied)))
		span.RecordError(err)
		span.End()
	}()

	entries, err := report.ReadOptional(extractor.fs, opts.ReportPath)
	if err != nil {
		return result, err
	}
	mods, err := external.Load(extractor.fs, opts.ExternalPath)
	if err != nil {
		return result, err
	}

	if opts.Clean {
		if err := extractor.fs.RemoveAll(opts.OutputDir); err != nil {
			return result, fmt.Errorf("clean %s: %w", opts.OutputDir, err)
		}
	}
	if err := extractor.fs.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("create %s: %w", opts.OutputDir, err)
	}

	for _, candidate := range Classify(entries, mods) {
		if candidate.Support == models.SupportUnknown {
			result.Unknown = append(result.Unknown, candidate)
		}
		if !candidate.ShouldCopy(opts.IncludeUnknown) {
			result.Skipped = append(result.Skipped, candidate)
			continue
		}

		source := fileutils.ResolveIn(opts.ModsDir, candidate.File)
		destination := filepath.Join(opts.OutputDir, filepath.Base(candidate.File))
		if err := fileutils.CopyFile(extractor.fs, source, destination); err != nil {
			return result, fmt.Errorf("copy %s: %w", candidate.Name, err)
		}
		result.Copied = append(result.Copied, candidate)
	}

	extractor.log.Log(fmt.Sprintf("Server mods copied to %s", opts.OutputDir), false)
	if len(result.Unknown) > 0 {
		extractor.log.Log(extractor.painter.Heading("Mods with unknown side metadata:"), true)
		for _, candidate := range result.Unknown {
			extractor.log.Log(fmt.Sprintf("- %s (%s)", candidate.Name, candidate.File), true)
		}
	}
	return result, nil
}
