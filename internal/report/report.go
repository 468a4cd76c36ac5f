// Package report reads and writes the download report.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/meza/modrinth-pack-builder/internal/fileutils"
	"github.com/meza/modrinth-pack-builder/internal/models"
)

type InvalidError struct {
	Path string
	Err  error
}

func (invalid *InvalidError) Error() string {
	return fmt.Sprintf("report %s is invalid: %v", invalid.Path, invalid.Err)
}

func (invalid *InvalidError) Unwrap() error {
	return invalid.Err
}

// Read loads the report at path. The file must exist.
func Read(fs afero.Fs, path string) (models.Report, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var entries models.Report
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &InvalidError{Path: path, Err: err}
	}
	if entries == nil {
		entries = models.Report{}
	}
	return entries, nil
}

// ReadOptional is Read with an absent file treated as an empty report.
func ReadOptional(fs afero.Fs, path string) (models.Report, error) {
	entries, err := Read(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Report{}, nil
	}
	return entries, err
}

// Write replaces the report at path.
func Write(fs afero.Fs, path string, entries models.Report) error {
	if entries == nil {
		entries = models.Report{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	return fileutils.WriteFileAtomic(fs, path, data)
}
