package fileutils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

func InitFilesystem(filesystem ...afero.Fs) afero.Fs {
	if len(filesystem) > 0 && filesystem[0] != nil {
		return filesystem[0]
	}

	return afero.NewOsFs()
}

// ResolveIn returns path unchanged when it is absolute, otherwise joined onto base.
func ResolveIn(base string, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// CopyFile copies source to destination byte for byte, replacing any existing destination.
func CopyFile(fs afero.Fs, source string, destination string) (err error) {
	in, err := fs.Open(source)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := fs.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaultFileMode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
