package version

import (
	"github.com/spf13/cobra"

	"github.com/meza/modrinth-pack-builder/internal/constants"
	"github.com/meza/modrinth-pack-builder/internal/environment"
)

func Command() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the " + constants.AppName + " version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(environment.AppVersion())
		},
	}

	return versionCmd
}
