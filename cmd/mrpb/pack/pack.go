package pack

import (
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

func Command(deps cli.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "pack",
		Short: "Assemble the downloaded and external mods into a .mrpack",
		Long: "Builds modrinth.index.json from the download report and the external mod list\n" +
			"and zips it into the --output archive. Needs a report with at least one downloaded mod.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.pack")

			session, err := cli.NewSession(cmd, deps)
			if err == nil {
				err = session.Pack(ctx)
			}
			span.SetAttributes(attribute.Bool("success", err == nil))
			span.End()
			return err
		},
	}
}
