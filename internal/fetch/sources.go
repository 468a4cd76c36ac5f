package fetch

import (
	"errors"
	"strings"

	"github.com/spf13/afero"

	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/modlist"
)

var ErrNoIdentifiers = errors.New("no mod identifiers to download")

// Sources names the places identifiers can come from, highest precedence first.
type Sources struct {
	Inline      []string
	File        string
	DefaultList string
}

// ResolveSources picks the first configured source and reads it. Finding no
// identifiers is a usage error.
func ResolveSources(fs afero.Fs, sources Sources) ([]string, error) {
	identifiers, err := readSources(fs, sources)
	if err != nil {
		return nil, err
	}
	if len(identifiers) == 0 {
		return nil, exitcode.UsageError(ErrNoIdentifiers)
	}
	return identifiers, nil
}

func readSources(fs afero.Fs, sources Sources) ([]string, error) {
	if len(sources.Inline) > 0 {
		return trimAll(sources.Inline), nil
	}
	if strings.TrimSpace(sources.File) != "" {
		identifiers, err := modlist.LoadFile(fs, sources.File)
		var invalid *modlist.InvalidListError
		if errors.As(err, &invalid) {
			return nil, err
		}
		if err != nil {
			return nil, exitcode.UsageError(err)
		}
		return identifiers, nil
	}
	if strings.TrimSpace(sources.DefaultList) != "" {
		return modlist.Load(fs, sources.DefaultList)
	}
	return nil, nil
}

func trimAll(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}
