package mrpb

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meza/modrinth-pack-builder/cmd/mrpb/add"
	configCmd "github.com/meza/modrinth-pack-builder/cmd/mrpb/config"
	"github.com/meza/modrinth-pack-builder/cmd/mrpb/download"
	"github.com/meza/modrinth-pack-builder/cmd/mrpb/pack"
	"github.com/meza/modrinth-pack-builder/cmd/mrpb/server"
	"github.com/meza/modrinth-pack-builder/cmd/mrpb/update"
	"github.com/meza/modrinth-pack-builder/cmd/mrpb/version"
	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/constants"
	"github.com/meza/modrinth-pack-builder/internal/environment"
	"github.com/meza/modrinth-pack-builder/internal/exitcode"
)

func Command() *cobra.Command {
	return NewCommand(cli.DefaultDeps())
}

func NewCommand(deps cli.Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.CommandName,
		Short: "Build Modrinth modpacks and server mod folders from a list of mods",
		Long: "mrpb resolves mods on Modrinth, downloads the newest build for a loader and\n" +
			"game version, assembles a .mrpack and copies the server side mods into their\n" +
			"own folder.",
		Version:       environment.AppVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobra.MousetrapHelpText = "" // allow the app to run in windows by clicking the exe

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.UsageError(err)
	})
	cli.RegisterPersistentFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(add.Command(deps))
	rootCmd.AddCommand(download.Command(deps))
	rootCmd.AddCommand(pack.Command(deps))
	rootCmd.AddCommand(server.Command(deps))
	rootCmd.AddCommand(update.Command(deps))
	rootCmd.AddCommand(configCmd.Command(deps))
	rootCmd.AddCommand(version.Command())

	fixFlagUsageAlignment(rootCmd)

	return rootCmd
}

func fixFlagUsageAlignment(rootCmd *cobra.Command) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	usageTemplate := rootCmd.UsageTemplate()
	usageTemplate = strings.ReplaceAll(usageTemplate, ".FlagUsages", fmt.Sprintf(".FlagUsagesWrapped %d", width))
	rootCmd.SetUsageTemplate(usageTemplate)
}
