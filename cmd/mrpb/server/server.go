package server

import (
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

func Command(deps cli.Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Copy the mods a dedicated server needs into --output-dir",
		Long: "Copies every downloaded and external mod that is not marked server side\n" +
			"unsupported. Mods without side information are listed and only copied\n" +
			"with --include-unknown.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.server")

			includeUnknown, err := cmd.Flags().GetBool("include-unknown")
			if err != nil {
				span.End()
				return err
			}
			clean, err := cmd.Flags().GetBool("clean")
			if err != nil {
				span.End()
				return err
			}

			session, err := cli.NewSession(cmd, deps)
			if err == nil {
				err = session.Server(ctx, cli.ServerFlags{IncludeUnknown: includeUnknown, Clean: clean})
			}
			span.SetAttributes(attribute.Bool("success", err == nil))
			span.End()
			return err
		},
	}

	cmd.Flags().Bool("include-unknown", false, "Also copy mods without server side information")
	cmd.Flags().Bool("clean", false, "Empty the output directory first")

	return cmd
}
