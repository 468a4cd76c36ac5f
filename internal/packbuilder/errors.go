package packbuilder

import (
	"errors"
	"fmt"
)

var (
	ErrReportMissing = errors.New("download report not found; run the downloader first")
	ErrNoDownloads   = errors.New("download report has no downloaded mods")
)

// DuplicatePathError is raised when two files would land on the same pack path.
type DuplicatePathError struct {
	Path   string
	First  string
	Second string
}

func (duplicate *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate pack path %s (from %s and %s)", duplicate.Path, duplicate.First, duplicate.Second)
}

// FileMetadataNotFoundError means the registry no longer lists a file that
// was downloaded earlier.
type FileMetadataNotFoundError struct {
	ProjectID string
	FileName  string
}

func (notFound *FileMetadataNotFoundError) Error() string {
	return fmt.Sprintf("no Modrinth metadata for %s in project %s", notFound.FileName, notFound.ProjectID)
}

type ArchiveError struct {
	Path string
	Err  error
}

func (archiveErr *ArchiveError) Error() string {
	return fmt.Sprintf("failed to write pack archive %s: %v", archiveErr.Path, archiveErr.Err)
}

func (archiveErr *ArchiveError) Unwrap() error {
	return archiveErr.Err
}
