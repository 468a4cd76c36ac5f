package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/meza/modrinth-pack-builder/internal/cli/clitest"
	internalConfig "github.com/meza/modrinth-pack-builder/internal/config"
	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/models"
)

func TestConfigPrintsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()

	result := clitest.Execute(t, Command(clitest.Deps(fs, nil)), "config")
	require.NoError(t, result.Err)
	assert.NotContains(t, result.Stdout, "# ")

	var printed internalConfig.Config
	require.NoError(t, yaml.Unmarshal([]byte(result.Stdout), &printed))
	assert.Equal(t, models.NEOFORGE, printed.Loader)
	assert.Equal(t, internalConfig.DefaultGameVersion, printed.GameVersion)
	assert.Equal(t, filepath.Join("mods", "mods.json"), printed.ModList)
	assert.Equal(t, internalConfig.DefaultPackVersionID, printed.Pack.VersionID)
}

func TestConfigReflectsFileAndFlags(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/mrpb.yaml", []byte("game_version: 1.21.4\npack:\n  name: Friends\n"), 0o644))

	result := clitest.Execute(t, Command(clitest.Deps(fs, nil)), "config", "--loader", "fabric")
	require.NoError(t, result.Err)
	assert.Contains(t, result.Stdout, "# /work/mrpb.yaml\n")

	var printed internalConfig.Config
	require.NoError(t, yaml.Unmarshal([]byte(result.Stdout), &printed))
	assert.Equal(t, models.FABRIC, printed.Loader)
	assert.Equal(t, "1.21.4", printed.GameVersion)
	assert.Equal(t, "Friends", printed.Pack.Name)
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	fs := afero.NewMemMapFs()

	result := clitest.Execute(t, Command(clitest.Deps(fs, nil)), "config", "--loader", "potato")
	require.Error(t, result.Err)
	assert.Equal(t, exitcode.Usage, exitcode.CodeOf(result.Err))
}
