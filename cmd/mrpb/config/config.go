package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meza/modrinth-pack-builder/internal/cli"
)

func Command(deps cli.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: "Prints the settings every other command would run with, after flags,\n" +
			"MRPB_* environment variables and the config file have been applied.\n" +
			"The output is valid YAML and can be saved as mrpb.yaml.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := cli.NewSession(cmd, deps)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(session.Config)
			if err != nil {
				return fmt.Errorf("render configuration: %w", err)
			}

			if session.Config.Source != "" {
				cmd.Printf("# %s\n", session.Config.Source)
			}
			cmd.Print(string(out))
			return nil
		},
	}
}
