package add

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/modrinth-pack-builder/internal/cli/clitest"
	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/modlist"
	"github.com/meza/modrinth-pack-builder/testutil"
)

func newRegistry(t *testing.T) *testutil.Registry {
	t.Helper()
	return testutil.NewRegistry(t, testutil.RegistryProject{
		ID: "abc123", Slug: "examplemod", Title: "Example Mod",
		Versions: []testutil.RegistryVersion{{
			ID: "v1", VersionNumber: "1.0", DatePublished: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Loaders: []string{"neoforge"}, GameVersions: []string{"1.21.11"},
			Files: []testutil.RegistryFile{{FileName: "examplemod-1.0.jar", Primary: true, Content: []byte("example")}},
		}},
	})
}

func TestAddWithoutUpdate(t *testing.T) {
	registry := newRegistry(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("mods", "mods.json"), []byte(`["sodium"]`), 0o644))

	result := clitest.Execute(t, Command(clitest.Deps(fs, registry.Doer())),
		"add", "https://modrinth.com/mod/iris", "sodium", "--no-update")
	require.NoError(t, result.Err)

	list, err := modlist.Load(fs, filepath.Join("mods", "mods.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sodium", "iris"}, list)
	assert.Empty(t, registry.Requests())
	assert.Contains(t, result.Stdout, "(2 mods)")
}

func TestAddChainsDownloadAndPack(t *testing.T) {
	registry := newRegistry(t)
	fs := afero.NewMemMapFs()

	result := clitest.Execute(t, Command(clitest.Deps(fs, registry.Doer())),
		"add", "https://modrinth.com/project/examplemod", "--output", "pack.mrpack")
	require.NoError(t, result.Err)

	list, err := modlist.Load(fs, filepath.Join("mods", "mods.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"examplemod"}, list)

	exists, err := afero.Exists(fs, "pack.mrpack")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Contains(t, result.Stdout, "[OK] examplemod (examplemod-1.0.jar)")
}

func TestAddWithoutModsIsUsageError(t *testing.T) {
	fs := afero.NewMemMapFs()

	for _, args := range [][]string{{"add"}, {"add", "  "}} {
		result := clitest.Execute(t, Command(clitest.Deps(fs, nil)), args...)
		assert.ErrorIs(t, result.Err, ErrNoMods)
		assert.Equal(t, exitcode.Usage, exitcode.CodeOf(result.Err))
	}

	exists, err := afero.Exists(fs, filepath.Join("mods", "mods.json"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAddRefusesInvalidList(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("mods", "mods.json"), []byte(`{"mods": []}`), 0o644))

	result := clitest.Execute(t, Command(clitest.Deps(fs, nil)), "add", "sodium", "--no-update")
	var invalid *modlist.InvalidListError
	require.ErrorAs(t, result.Err, &invalid)
	assert.Equal(t, exitcode.Failure, exitcode.CodeOf(result.Err))
}
