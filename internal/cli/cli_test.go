package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/fetch"
	"github.com/meza/modrinth-pack-builder/internal/models"
	"github.com/meza/modrinth-pack-builder/internal/pipeline"
	"github.com/meza/modrinth-pack-builder/internal/report"
	"github.com/meza/modrinth-pack-builder/testutil"
)

func newCommand(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	RegisterPersistentFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd, out
}

func registryWithExample(t *testing.T) *testutil.Registry {
	t.Helper()
	return testutil.NewRegistry(t, testutil.RegistryProject{
		ID: "abc123", Slug: "examplemod", Title: "Example Mod", ServerSide: "required",
		Versions: []testutil.RegistryVersion{{
			ID: "v1", VersionNumber: "1.0", DatePublished: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Loaders: []string{"neoforge"}, GameVersions: []string{"1.21.11"},
			Files: []testutil.RegistryFile{{FileName: "examplemod-1.0.jar", Primary: true, Content: []byte("example")}},
		}},
	})
}

func TestNewSessionResolvesConfiguration(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/mrpb.yaml", []byte("mods_dir: client\n"), 0o644))
	cmd, out := newCommand(t, "--loader", "fabric", "--debug")

	session, err := NewSession(cmd, Deps{FS: fs, Getwd: func() (string, error) { return "/work", nil }})
	require.NoError(t, err)

	assert.Equal(t, models.FABRIC, session.Config.Loader)
	assert.Equal(t, "client", session.Config.ModsDir)
	session.Log.Debug("session ready")
	assert.Contains(t, out.String(), "session ready")
	assert.NotNil(t, session.API)
	assert.NotNil(t, session.Downloads)
}

func TestNewSessionMissingFlags(t *testing.T) {
	cmd := &cobra.Command{}
	_, err := NewSession(cmd, Deps{FS: afero.NewMemMapFs()})
	assert.Error(t, err)

	cmd.Flags().String(FlagConfig, "", "")
	_, err = NewSession(cmd, Deps{FS: afero.NewMemMapFs()})
	assert.Error(t, err)

	cmd.Flags().Bool(FlagQuiet, false, "")
	_, err = NewSession(cmd, Deps{FS: afero.NewMemMapFs()})
	assert.Error(t, err)
}

func TestNewSessionMissingConfigFile(t *testing.T) {
	cmd, _ := newCommand(t, "--config", "nope.yaml")
	_, err := NewSession(cmd, Deps{FS: afero.NewMemMapFs(), Getwd: func() (string, error) { return "/work", nil }})
	assert.Equal(t, exitcode.Usage, exitcode.CodeOf(err))
}

func TestFullPipeline(t *testing.T) {
	registry := registryWithExample(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("mods", "mods.json"), []byte(`["examplemod"]`), 0o644))
	cmd, out := newCommand(t)

	session, err := NewSession(cmd, Deps{FS: fs, Transport: registry.Doer(), Getwd: func() (string, error) { return "/work", nil }})
	require.NoError(t, err)

	results, err := pipeline.Run(context.Background(),
		session.DownloadStep(DownloadFlags{RecordSides: true}),
		session.PackStep(),
		session.ServerStep(ServerFlags{Clean: true}),
	)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	entries, err := report.Read(fs, filepath.Join("mods", "modrinth_report.json"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusDownloaded, entries[0].Status)
	assert.Equal(t, "required", entries[0].ServerSide)

	exists, err := afero.Exists(fs, "neoforge-1.21.11-gravestone.mrpack")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, filepath.Join("server_mods", "examplemod-1.0.jar"))
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Contains(t, out.String(), "[OK] examplemod (examplemod-1.0.jar)")
	assert.Contains(t, out.String(), "Pack written to neoforge-1.21.11-gravestone.mrpack")
	assert.Contains(t, out.String(), "Server mods copied to server_mods")
}

func TestPipelineStopsWhenDownloadIsPartial(t *testing.T) {
	registry := registryWithExample(t)
	fs := afero.NewMemMapFs()
	cmd, _ := newCommand(t)

	session, err := NewSession(cmd, Deps{FS: fs, Transport: registry.Doer(), Getwd: func() (string, error) { return "/work", nil }})
	require.NoError(t, err)

	results, err := pipeline.Run(context.Background(),
		session.DownloadStep(DownloadFlags{Mods: []string{"examplemod", "ghost"}}),
		session.PackStep(),
	)
	var partial *fetch.PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, exitcode.Usage, exitcode.CodeOf(err))
	assert.Len(t, results, 1)

	exists, statErr := afero.Exists(fs, "neoforge-1.21.11-gravestone.mrpack")
	require.NoError(t, statErr)
	assert.False(t, exists)
}
