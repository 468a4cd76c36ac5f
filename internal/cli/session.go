// Package cli wires configuration, output and HTTP clients together for the
// mrpb commands and exposes the operations they share.
package cli

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meza/modrinth-pack-builder/internal/config"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/logger"
	"github.com/meza/modrinth-pack-builder/internal/modrinth"
	"github.com/meza/modrinth-pack-builder/internal/tui"
)

const (
	FlagConfig     = "config"
	FlagQuiet      = "quiet"
	FlagDebug      = "debug"
	FlagPerf       = "perf"
	FlagPerfOutDir = "perf-out-dir"
)

// RegisterPersistentFlags adds every flag shared by all subcommands.
func RegisterPersistentFlags(flags *pflag.FlagSet) {
	flags.StringP(FlagConfig, "c", "", "Configuration file (default ./mrpb.{yaml,json,toml} when present)")
	flags.BoolP(FlagQuiet, "q", false, "Only print failures and warnings")
	flags.BoolP(FlagDebug, "d", false, "Print debug output")
	flags.Bool(FlagPerf, false, "Record a performance timeline")
	flags.String(FlagPerfOutDir, "", "Directory for the performance timeline (default working directory)")
	config.RegisterFlags(flags)
}

// Deps are the process level collaborators. Zero values fall back to the
// real file system, the command's writers and an HTTP client built from the
// configuration.
type Deps struct {
	FS        afero.Fs
	Transport httpclient.Doer
	Getwd     func() (string, error)
}

func DefaultDeps() Deps {
	return Deps{FS: afero.NewOsFs(), Getwd: os.Getwd}
}

type Session struct {
	Config    *config.Config
	FS        afero.Fs
	Log       *logger.Logger
	Painter   *tui.Painter
	API       httpclient.Doer
	Downloads httpclient.Doer
}

// NewSession reads the shared flags of cmd and resolves the configuration.
func NewSession(cmd *cobra.Command, deps Deps) (*Session, error) {
	flags := cmd.Flags()
	configPath, err := flags.GetString(FlagConfig)
	if err != nil {
		return nil, err
	}
	quiet, err := flags.GetBool(FlagQuiet)
	if err != nil {
		return nil, err
	}
	debug, err := flags.GetBool(FlagDebug)
	if err != nil {
		return nil, err
	}

	fs := deps.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	getwd := deps.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	cwd, err := getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(fs, config.LoadOptions{
		ConfigFile: configPath,
		SearchDir:  cwd,
		Flags:      flags,
	})
	if err != nil {
		return nil, err
	}

	transport := deps.Transport
	if transport == nil {
		transport = httpclient.New(cfg.HTTPOptions())
	}

	return newSession(cfg, fs, cmd.OutOrStdout(), cmd.ErrOrStderr(), quiet, debug, transport), nil
}

func newSession(cfg *config.Config, fs afero.Fs, out io.Writer, errOut io.Writer, quiet bool, debug bool, transport httpclient.Doer) *Session {
	log := logger.New(out, errOut, quiet, debug)
	if cfg.Source != "" {
		log.Debug("configuration loaded", "path", cfg.Source)
	}

	return &Session{
		Config:    cfg,
		FS:        fs,
		Log:       log,
		Painter:   tui.NewPainter(out),
		API:       modrinth.NewClient(transport),
		Downloads: transport,
	}
}
