// Package clitest runs a single mrpb subcommand under a bare root that
// carries the shared persistent flags.
package clitest

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
)

type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Execute runs sub with args. Args start at the subcommand name.
func Execute(t testing.TB, sub *cobra.Command, args ...string) Result {
	t.Helper()

	root := &cobra.Command{Use: "mrpb", SilenceUsage: true, SilenceErrors: true}
	cli.RegisterPersistentFlags(root.PersistentFlags())
	root.AddCommand(sub)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// Deps returns in-memory dependencies rooted at /work.
func Deps(fs afero.Fs, transport httpclient.Doer) cli.Deps {
	return cli.Deps{
		FS:        fs,
		Transport: transport,
		Getwd:     func() (string, error) { return "/work", nil },
	}
}
