package packbuilder

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
	"github.com/spf13/afero"

	"github.com/meza/modrinth-pack-builder/internal/constants"
	"github.com/meza/modrinth-pack-builder/internal/lifecycle"
	"github.com/meza/modrinth-pack-builder/internal/models"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

// writeArchive stages the index in a temporary directory and zips it into
// outputPath. A failed archive is removed.
func (builder *Builder) writeArchive(ctx context.Context, index *models.PackIndex, outputPath string) (err error) {
	ctx, span := perf.StartSpan(ctx, "pack.archive")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	data, err := marshalIndex(index)
	if err != nil {
		return err
	}

	stagingDir, err := afero.TempDir(builder.fs, "", "mrpack-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	release := removeOnSignal(builder.fs, stagingDir)
	defer release()
	defer func() {
		if removeErr := builder.fs.RemoveAll(stagingDir); removeErr != nil {
			builder.log.Debug("failed to remove staging directory", "path", stagingDir, "error", removeErr)
		}
	}()

	indexPath := filepath.Join(stagingDir, constants.PackIndexName)
	if err := afero.WriteFile(builder.fs, indexPath, data, 0o644); err != nil {
		return fmt.Errorf("stage pack index: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := builder.fs.MkdirAll(dir, 0o755); err != nil {
			return &ArchiveError{Path: outputPath, Err: err}
		}
	}
	if err := builder.zipStaged(ctx, indexPath, outputPath); err != nil {
		return &ArchiveError{Path: outputPath, Err: err}
	}
	return nil
}

func (builder *Builder) zipStaged(ctx context.Context, indexPath string, outputPath string) (err error) {
	info, err := builder.fs.Stat(indexPath)
	if err != nil {
		return err
	}

	// An existing pack at outputPath is only at risk once it is truncated.
	out, err := builder.fs.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	release := removeOnSignal(builder.fs, outputPath)
	defer release()
	defer func() {
		err = errors.Join(err, out.Close())
		if err == nil {
			return
		}
		if removeErr := builder.fs.Remove(outputPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, removeErr)
		}
	}()

	files := []archives.FileInfo{{
		FileInfo:      info,
		NameInArchive: constants.PackIndexName,
		Open: func() (iofs.File, error) {
			return builder.fs.Open(indexPath)
		},
	}}
	return archiver.Archive(ctx, out, files)
}

type archiveWriter interface {
	Archive(ctx context.Context, output io.Writer, files []archives.FileInfo) error
}

var (
	archiver       archiveWriter = archives.Zip{Compression: zip.Deflate}
	removeOnSignal               = lifecycle.RemoveOnSignal
)
