package update

import (
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/perf"
	"github.com/meza/modrinth-pack-builder/internal/pipeline"
)

func Command(deps cli.Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download, pack and extract the server mods in one go",
		Long: "Runs download, pack and server (with --clean) against the saved mod list.\n" +
			"Stops at the first step that fails and exits with that step's status.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.update")

			includeUnknown, err := cmd.Flags().GetBool("include-unknown")
			if err != nil {
				span.End()
				return err
			}
			recordSides, err := cmd.Flags().GetBool("record-sides")
			if err != nil {
				span.End()
				return err
			}

			session, err := cli.NewSession(cmd, deps)
			if err == nil {
				_, err = pipeline.Run(ctx,
					session.DownloadStep(cli.DownloadFlags{RecordSides: recordSides}),
					session.PackStep(),
					session.ServerStep(cli.ServerFlags{IncludeUnknown: includeUnknown, Clean: true}),
				)
			}
			span.SetAttributes(attribute.Bool("success", err == nil))
			span.End()
			return err
		},
	}

	cmd.Flags().Bool("include-unknown", false, "Also copy mods without server side information")
	cmd.Flags().Bool("record-sides", false, "Store each project's client/server requirements in the report")

	return cmd
}
