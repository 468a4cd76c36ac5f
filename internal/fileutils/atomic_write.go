package fileutils

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

const defaultFileMode os.FileMode = 0o644

// WriteFileAtomic replaces targetPath with data through a sibling temp file so
// readers never observe a half-written mod list or report.
func WriteFileAtomic(fs afero.Fs, targetPath string, data []byte) error {
	tempPath, err := nextSiblingPath(fs, targetPath, ".tmp")
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, tempPath, data, defaultFileMode); err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}

	exists, err := afero.Exists(fs, targetPath)
	if err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	if !exists {
		return renameTempIntoPlace(fs, tempPath, targetPath)
	}

	return replaceExistingFile(fs, tempPath, targetPath)
}

func nextSiblingPath(fs afero.Fs, targetPath string, suffix string) (string, error) {
	base := targetPath + ".mrpb" + suffix

	candidate := base
	for i := 0; i < 100; i++ {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.%d", base, i+1)
	}

	return "", errors.New("cannot allocate sibling path")
}

func removePathIfExists(fs afero.Fs, path string) error {
	removeErr := fs.Remove(path)
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return removeErr
	}
	return nil
}

func cleanupTempOnError(fs afero.Fs, tempPath string, originalErr error) error {
	if cleanupErr := removePathIfExists(fs, tempPath); cleanupErr != nil {
		return errors.Join(originalErr, fmt.Errorf("failed to remove temp file %s: %w", tempPath, cleanupErr))
	}
	return originalErr
}

func renameTempIntoPlace(fs afero.Fs, tempPath string, targetPath string) error {
	if err := fs.Rename(tempPath, targetPath); err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	return nil
}

// replaceExistingFile tries an overwriting rename first and falls back to
// moving the old file aside for filesystems that refuse to overwrite.
func replaceExistingFile(fs afero.Fs, tempPath string, targetPath string) error {
	if err := fs.Rename(tempPath, targetPath); err == nil {
		return nil
	}

	backupPath, err := nextSiblingPath(fs, targetPath, ".bak")
	if err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}

	if err := fs.Rename(targetPath, backupPath); err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}

	if err := fs.Rename(tempPath, targetPath); err != nil {
		rollbackErr := fs.Rename(backupPath, targetPath)
		err = cleanupTempOnError(fs, tempPath, err)
		if rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to restore backup %s: %w", backupPath, rollbackErr))
		}
		return err
	}

	if err := removePathIfExists(fs, backupPath); err != nil {
		return fmt.Errorf("failed to remove backup file %s: %w", backupPath, err)
	}
	return nil
}
