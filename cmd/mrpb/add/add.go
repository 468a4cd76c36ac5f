package add

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/modlist"
	"github.com/meza/modrinth-pack-builder/internal/perf"
	"github.com/meza/modrinth-pack-builder/internal/pipeline"
)

var ErrNoMods = errors.New("usage: mrpb add <slug-or-url> [more...]")

func Command(deps cli.Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <mods...>",
		Short: "Add mods to the saved mod list, then download and pack",
		Long: "Accepts Modrinth slugs, ids or project URLs such as https://modrinth.com/mod/sodium.\n" +
			"The saved mod list is updated and, unless --no-update is given, download and pack run afterwards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.add")

			noUpdate, err := cmd.Flags().GetBool("no-update")
			if err != nil {
				span.End()
				return err
			}
			recordSides, err := cmd.Flags().GetBool("record-sides")
			if err != nil {
				span.End()
				return err
			}

			err = runAdd(ctx, cmd, deps, args, noUpdate, recordSides)
			span.SetAttributes(attribute.Bool("success", err == nil), attribute.Int("mods", len(args)))
			span.End()
			return err
		},
	}

	cmd.Flags().Bool("no-update", false, "Only update the mod list, skip download and pack")
	cmd.Flags().Bool("record-sides", false, "Store each project's client/server requirements in the report")

	return cmd
}

func runAdd(ctx context.Context, cmd *cobra.Command, deps cli.Deps, args []string, noUpdate bool, recordSides bool) error {
	if len(modlist.NormalizeAll(args)) == 0 {
		return exitcode.UsageError(ErrNoMods)
	}

	session, err := cli.NewSession(cmd, deps)
	if err != nil {
		return err
	}

	listPath := session.Config.ModList
	merged, err := modlist.Add(session.FS, listPath, args)
	if err != nil {
		return err
	}
	session.Log.Log(fmt.Sprintf("Updated %s (%d mods)", listPath, len(merged)), false)

	if noUpdate {
		return nil
	}
	_, err = pipeline.Run(ctx,
		session.DownloadStep(cli.DownloadFlags{RecordSides: recordSides}),
		session.PackStep(),
	)
	return err
}
