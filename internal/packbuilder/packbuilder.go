// Package packbuilder assembles downloaded and external mods into a
// Modrinth .mrpack archive.
package packbuilder

import (
	"context"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/external"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/logger"
	"github.com/meza/modrinth-pack-builder/internal/models"
	"github.com/meza/modrinth-pack-builder/internal/modrinth"
	"github.com/meza/modrinth-pack-builder/internal/perf"
	"github.com/meza/modrinth-pack-builder/internal/report"
)

const modsFolder = "mods"

type Options struct {
	Loader        models.Loader
	GameVersion   string
	LoaderVersion string
	ModsDir       string
	ReportPath    string
	ExternalPath  string
	OutputPath    string
	Name          string
	Summary       string
	VersionID     string
}

type Builder struct {
	fs     afero.Fs
	client httpclient.Doer
	log    *logger.Logger
}

func NewBuilder(fs afero.Fs, client httpclient.Doer, log *logger.Logger) *Builder {
	return &Builder{fs: fs, client: client, log: log}
}

// Build writes the pack archive to opts.OutputPath and returns its index.
// Every input is checked before the archive is created.
func (builder *Builder) Build(ctx context.Context, opts Options) (index *models.PackIndex, err error) {
	ctx, span := perf.StartSpan(ctx, "pack.build", perf.WithAttributes(attribute.String("output_path", opts.OutputPath)))
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	downloaded, err := builder.readDownloaded(opts.ReportPath)
	if err != nil {
		return nil, err
	}
	externalMods, err := external.Load(builder.fs, opts.ExternalPath)
	if err != nil {
		return nil, err
	}
	if err := external.Validate(externalMods); err != nil {
		return nil, err
	}

	collector := newFileCollector()
	for _, entry := range downloaded {
		file, err := builder.registryFile(ctx, opts, entry)
		if err != nil {
			return nil, err
		}
		if err := collector.add(file, entry.DisplayName()); err != nil {
			return nil, err
		}
	}
	for _, mod := range externalMods {
		file, err := builder.externalFile(opts.ModsDir, mod)
		if err != nil {
			return nil, err
		}
		if err := collector.add(file, mod.DisplayName()); err != nil {
			return nil, err
		}
	}

	index = &models.PackIndex{
		FormatVersion: models.PackFormatVersion,
		Game:          models.PackGame,
		VersionID:     opts.VersionID,
		Name:          opts.Name,
		Summary:       opts.Summary,
		Files:         collector.files,
		Dependencies:  models.PackDependencies(opts.GameVersion, opts.Loader, opts.LoaderVersion),
	}
	span.SetAttributes(attribute.Int("files", len(index.Files)))

	if err := builder.writeArchive(ctx, index, opts.OutputPath); err != nil {
		return nil, err
	}
	builder.log.Log(fmt.Sprintf("Pack written to %s", opts.OutputPath), false)
	return index, nil
}

func (builder *Builder) readDownloaded(reportPath string) (models.Report, error) {
	entries, err := report.Read(builder.fs, reportPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, exitcode.UsageError(fmt.Errorf("%w: %s", ErrReportMissing, reportPath))
	}
	if err != nil {
		return nil, err
	}

	downloaded := entries.Downloaded()
	if len(downloaded) == 0 {
		return nil, exitcode.UsageError(ErrNoDownloads)
	}

	usable := make(models.Report, 0, len(downloaded))
	for _, entry := range downloaded {
		if strings.TrimSpace(entry.ID) == "" || strings.TrimSpace(entry.File) == "" {
			builder.log.Debug("skipping incomplete report entry", "query", entry.Query)
			continue
		}
		usable = append(usable, entry)
	}
	return usable, nil
}

func (builder *Builder) registryFile(ctx context.Context, opts Options, entry models.ReportEntry) (models.PackFile, error) {
	versions, err := modrinth.GetVersionsForProject(ctx, &modrinth.VersionLookup{
		ProjectID:    entry.ID,
		Loaders:      []models.Loader{opts.Loader},
		GameVersions: []string{opts.GameVersion},
	}, builder.client)
	if err != nil {
		return models.PackFile{}, err
	}

	remote, ok := versions.FindFile(entry.File)
	if !ok {
		return models.PackFile{}, &FileMetadataNotFoundError{ProjectID: entry.ID, FileName: entry.File}
	}

	info, err := builder.fs.Stat(filepath.Join(opts.ModsDir, entry.File))
	if err != nil {
		return models.PackFile{}, fmt.Errorf("stat %s: %w", entry.File, err)
	}

	return models.PackFile{
		Path:      packPath(entry.File),
		Hashes:    models.FileHashes{Sha1: remote.Hashes.Sha1, Sha512: remote.Hashes.Sha512},
		Env:       entry.Sides().Env(),
		Downloads: []string{remote.URL},
		FileSize:  info.Size(),
	}, nil
}

func (builder *Builder) externalFile(modsDir string, mod models.ExternalMod) (models.PackFile, error) {
	localPath := external.LocalPath(modsDir, mod)
	hashes, size, err := hashFile(builder.fs, localPath)
	if err != nil {
		return models.PackFile{}, err
	}

	return models.PackFile{
		Path:      packPath(mod.File),
		Hashes:    hashes,
		Env:       mod.Sides().Env(),
		Downloads: []string{strings.TrimSpace(mod.URL)},
		FileSize:  size,
	}, nil
}

// hashFile computes both digests in a single read.
func hashFile(fs afero.Fs, filePath string) (models.FileHashes, int64, error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return models.FileHashes{}, 0, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	sha1Hash := sha1.New()
	sha512Hash := sha512.New()
	size, err := io.Copy(io.MultiWriter(sha1Hash, sha512Hash), file)
	if err != nil {
		return models.FileHashes{}, 0, fmt.Errorf("hash %s: %w", filePath, err)
	}

	return models.FileHashes{
		Sha1:   hex.EncodeToString(sha1Hash.Sum(nil)),
		Sha512: hex.EncodeToString(sha512Hash.Sum(nil)),
	}, size, nil
}

func packPath(file string) string {
	return path.Join(modsFolder, filepath.Base(strings.TrimSpace(file)))
}

type fileCollector struct {
	files   []models.PackFile
	sources map[string]string
}

func newFileCollector() *fileCollector {
	return &fileCollector{files: make([]models.PackFile, 0), sources: map[string]string{}}
}

func (collector *fileCollector) add(file models.PackFile, source string) error {
	if first, exists := collector.sources[file.Path]; exists {
		return &DuplicatePathError{Path: file.Path, First: first, Second: source}
	}
	collector.sources[file.Path] = source
	collector.files = append(collector.files, file)
	return nil
}

func marshalIndex(index *models.PackIndex) ([]byte, error) {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
