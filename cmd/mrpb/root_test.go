package mrpb

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/exitcode"
)

func TestCommandRegistersSubcommands(t *testing.T) {
	cmd := Command()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"add", "download", "pack", "server", "update", "config", "version"})
	assert.Equal(t, "mrpb", cmd.Use)
}

func TestCommandPersistentFlags(t *testing.T) {
	cmd := Command()
	for _, name := range []string{"config", "quiet", "debug", "perf", "perf-out-dir", "loader", "game-version", "loader-version", "mods-dir", "report", "external", "output", "output-dir"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCommandUsageTemplateUsesWrappedFlags(t *testing.T) {
	assert.Contains(t, Command().UsageTemplate(), ".FlagUsagesWrapped")
}

func TestCommandUnknownFlagIsUsageError(t *testing.T) {
	cmd := NewCommand(cli.Deps{FS: afero.NewMemMapFs()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"pack", "--no-such-flag"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, exitcode.Usage, exitcode.CodeOf(err))
}

func TestCommandVersionFlag(t *testing.T) {
	cmd := Command()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "REPL_VERSION\n", out.String())
}
