// Package external loads the hand-authored list of mods that are not
// fetched through the registry.
package external

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/meza/modrinth-pack-builder/internal/models"
)

type InvalidError struct {
	Path string
	Err  error
}

func (invalid *InvalidError) Error() string {
	return fmt.Sprintf("external mod list %s is invalid: %v", invalid.Path, invalid.Err)
}

func (invalid *InvalidError) Unwrap() error {
	return invalid.Err
}

// IncompleteEntryError reports an entry lacking a required field.
type IncompleteEntryError struct {
	Index int
	Field string
}

func (incomplete *IncompleteEntryError) Error() string {
	return fmt.Sprintf("external mod #%d is missing %q", incomplete.Index+1, incomplete.Field)
}

// Load reads the external list at path. An absent file is an empty list.
func Load(fs afero.Fs, path string) ([]models.ExternalMod, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.ExternalMod{}, nil
		}
		return nil, fmt.Errorf("read external mod list %s: %w", path, err)
	}

	var mods []models.ExternalMod
	if err := json.Unmarshal(data, &mods); err != nil {
		return nil, &InvalidError{Path: path, Err: err}
	}
	if mods == nil {
		mods = []models.ExternalMod{}
	}
	return mods, nil
}

// Validate requires a file and a url on every entry.
func Validate(mods []models.ExternalMod) error {
	for index, mod := range mods {
		if strings.TrimSpace(mod.File) == "" {
			return &IncompleteEntryError{Index: index, Field: "file"}
		}
		if strings.TrimSpace(mod.URL) == "" {
			return &IncompleteEntryError{Index: index, Field: "url"}
		}
	}
	return nil
}

// LocalPath resolves an entry's file against the mods directory unless it is
// already absolute.
func LocalPath(modsDir string, mod models.ExternalMod) string {
	file := strings.TrimSpace(mod.File)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(modsDir, file)
}
