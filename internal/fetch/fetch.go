// Package fetch resolves mod identifiers against Modrinth and downloads the
// newest matching build of each into the mods directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/globalerrors"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/logger"
	"github.com/meza/modrinth-pack-builder/internal/modfilename"
	"github.com/meza/modrinth-pack-builder/internal/models"
	"github.com/meza/modrinth-pack-builder/internal/modrinth"
	"github.com/meza/modrinth-pack-builder/internal/perf"
	"github.com/meza/modrinth-pack-builder/internal/report"
	"github.com/meza/modrinth-pack-builder/internal/tui"
)

type Downloader func(context.Context, string, string, httpclient.Doer, ...afero.Fs) error

// PartialError is returned after a run in which some identifiers were not
// downloaded. The report has been written by then.
type PartialError struct {
	Failed int
	Total  int
}

func (partial *PartialError) Error() string {
	return fmt.Sprintf("%d of %d mods were not downloaded", partial.Failed, partial.Total)
}

func (partial *PartialError) ExitCode() int {
	return exitcode.Usage
}

type Options struct {
	Loader      models.Loader
	GameVersion string
	ModsDir     string
	ReportPath  string
	// RecordSides copies the project's client/server requirements into the report.
	RecordSides bool
}

type Fetcher struct {
	fs         afero.Fs
	api        httpclient.Doer
	downloads  httpclient.Doer
	downloader Downloader
	log        *logger.Logger
	painter    *tui.Painter
}

// NewFetcher uses api for registry calls and downloads for file transfers.
func NewFetcher(fs afero.Fs, api httpclient.Doer, downloads httpclient.Doer, log *logger.Logger, painter *tui.Painter) *Fetcher {
	return &Fetcher{
		fs:         fs,
		api:        api,
		downloads:  downloads,
		downloader: httpclient.DownloadFile,
		log:        log,
		painter:    painter,
	}
}

// WithDownloader replaces the file downloader.
func (fetcher *Fetcher) WithDownloader(downloader Downloader) *Fetcher {
	fetcher.downloader = downloader
	return fetcher
}

// Run processes identifiers in order and always writes the report unless a
// registry error aborts the batch.
func (fetcher *Fetcher) Run(ctx context.Context, opts Options, identifiers []string) (models.Report, error) {
	if len(identifiers) == 0 {
		return nil, exitcode.UsageError(ErrNoIdentifiers)
	}
	if err := fetcher.fs.MkdirAll(opts.ModsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create mods directory: %w", err)
	}

	entries := make(models.Report, 0, len(identifiers))
	for _, identifier := range identifiers {
		entry, err := fetcher.fetchOne(ctx, opts, identifier)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := report.Write(fetcher.fs, opts.ReportPath, entries); err != nil {
		return entries, fmt.Errorf("write report: %w", err)
	}
	fetcher.log.Log(fmt.Sprintf("Report written to %s", opts.ReportPath), false)

	if entries.HasFailures() {
		fetcher.log.Error("Some mods were not downloaded. Check the report for details.")
		return entries, &PartialError{Failed: len(entries.Failures()), Total: len(entries)}
	}
	return entries, nil
}

func (fetcher *Fetcher) fetchOne(ctx context.Context, opts Options, query string) (entry models.ReportEntry, err error) {
	ctx, span := perf.StartSpan(ctx, "fetch.mod", perf.WithAttributes(attribute.String("query", query)))
	defer func() {
		span.SetAttributes(attribute.String("status", string(entry.Status)))
		span.RecordError(err)
		span.End()
	}()

	entry = models.ReportEntry{Query: query}

	project, resolvedBy, err := fetcher.resolve(ctx, query)
	if err != nil {
		return entry, err
	}
	if project == nil {
		entry.Status = models.StatusNotFound
		fetcher.log.Log(fmt.Sprintf("%s %s: not found on Modrinth", fetcher.painter.Miss(), query), true)
		return entry, nil
	}

	entry.ID = project.ID
	entry.Slug = project.Slug
	entry.Title = project.Title
	entry.ResolvedBy = resolvedBy
	if opts.RecordSides {
		sides := project.Sides()
		entry.ClientSide = sides.Client
		entry.ServerSide = sides.Server
	}

	versions, err := modrinth.GetVersionsForProject(ctx, &modrinth.VersionLookup{
		ProjectID:    project.ID,
		Loaders:      []models.Loader{opts.Loader},
		GameVersions: []string{opts.GameVersion},
	}, fetcher.api)
	if err != nil {
		return entry, err
	}

	latest, ok := versions.Latest()
	if !ok {
		entry.Status = models.StatusNoVersion
		fetcher.log.Log(fmt.Sprintf("%s %s: no %s build for %s on Modrinth", fetcher.painter.Miss(), query, opts.Loader, opts.GameVersion), true)
		return entry, nil
	}
	file, ok := latest.PreferredFile()
	if !ok {
		entry.Status = models.StatusNoFiles
		fetcher.log.Log(fmt.Sprintf("%s %s: no downloadable files in latest version", fetcher.painter.Miss(), query), true)
		return entry, nil
	}

	fileName, err := modfilename.Validate(file.FileName)
	if err == nil {
		err = fetcher.downloader(ctx, file.URL, filepath.Join(opts.ModsDir, fileName), fetcher.downloads, fetcher.fs)
	}
	if err != nil {
		entry.Status = models.StatusDownloadFailed
		entry.Error = err.Error()
		fetcher.log.Log(fmt.Sprintf("%s %s: download failed (%s)", fetcher.painter.Fail(), query, err), true)
		fetcher.log.Debug("download failed", "project", project.ID, "url", file.URL)
		return entry, nil
	}

	entry.Status = models.StatusDownloaded
	entry.Version = latest.VersionNumber
	entry.File = fileName
	if resolvedBy == models.ResolvedBySearch {
		fetcher.log.Log(fmt.Sprintf("%s %s -> %s (%s)", fetcher.painter.OK(), query, project.Title, fileName), false)
	} else {
		fetcher.log.Log(fmt.Sprintf("%s %s (%s)", fetcher.painter.OK(), query, fileName), false)
	}
	return entry, nil
}

// resolve looks the identifier up as a slug or id first, then falls back to
// the first search hit. A nil project means neither matched.
func (fetcher *Fetcher) resolve(ctx context.Context, query string) (*modrinth.Project, models.ResolvedBy, error) {
	project, err := modrinth.GetProject(ctx, query, fetcher.api)
	if err == nil {
		return project, models.ResolvedBySlug, nil
	}
	var notFound *globalerrors.ProjectNotFoundError
	if !errors.As(err, &notFound) {
		return nil, "", err
	}

	result, err := modrinth.SearchProjects(ctx, modrinth.ModSearch(query), fetcher.api)
	if err != nil {
		return nil, "", err
	}
	if len(result.Hits) == 0 {
		return nil, "", nil
	}

	hit := result.Hits[0]
	return &modrinth.Project{
		ID:         hit.ProjectID,
		Slug:       hit.Slug,
		Title:      hit.Title,
		ClientSide: hit.ClientSide,
		ServerSide: hit.ServerSide,
		Type:       hit.ProjectType,
	}, models.ResolvedBySearch, nil
}
