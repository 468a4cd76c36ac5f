package download

import (
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

func Command(deps cli.Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [mods...]",
		Short: "Download the newest matching build of every listed mod",
		Long: "Resolves each mod on Modrinth by slug or id, falling back to a search, and\n" +
			"downloads the newest build for the configured loader and game version.\n" +
			"Mods come from the arguments and --mods, else --mods-file, else the saved mod list.\n" +
			"Exits with status 2 when any mod could not be downloaded; the report is written either way.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.download")

			inline, err := cmd.Flags().GetStringSlice("mods")
			if err != nil {
				span.End()
				return err
			}
			modsFile, err := cmd.Flags().GetString("mods-file")
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
				err = session.Download(ctx, cli.DownloadFlags{
					Mods:        append(inline, args...),
					ModsFile:    modsFile,
					RecordSides: recordSides,
				})
			}
			span.SetAttributes(attribute.Bool("success", err == nil))
			span.End()
			return err
		},
	}

	cmd.Flags().StringSlice("mods", nil, "Mods to download instead of the saved list (comma separated or repeated)")
	cmd.Flags().String("mods-file", "", "File listing mods to download: a JSON array, or one per line with # comments")
	cmd.Flags().Bool("record-sides", false, "Store each project's client/server requirements in the report")

	return cmd
}
