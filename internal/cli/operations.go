package cli

import (
	"context"

	"github.com/meza/modrinth-pack-builder/internal/fetch"
	"github.com/meza/modrinth-pack-builder/internal/packbuilder"
	"github.com/meza/modrinth-pack-builder/internal/pipeline"
	"github.com/meza/modrinth-pack-builder/internal/serverpack"
)

type DownloadFlags struct {
	Mods        []string
	ModsFile    string
	RecordSides bool
}

type ServerFlags struct {
	IncludeUnknown bool
	Clean          bool
}

func (session *Session) Download(ctx context.Context, flags DownloadFlags) error {
	cfg := session.Config
	identifiers, err := fetch.ResolveSources(session.FS, fetch.Sources{
		Inline:      flags.Mods,
		File:        flags.ModsFile,
		DefaultList: cfg.ModList,
	})
	if err != nil {
		return err
	}

	fetcher := fetch.NewFetcher(session.FS, session.API, session.Downloads, session.Log, session.Painter)
	_, err = fetcher.Run(ctx, fetch.Options{
		Loader:      cfg.Loader,
		GameVersion: cfg.GameVersion,
		ModsDir:     cfg.ModsDir,
		ReportPath:  cfg.Report,
		RecordSides: flags.RecordSides,
	}, identifiers)
	return err
}

func (session *Session) Pack(ctx context.Context) error {
	cfg := session.Config
	builder := packbuilder.NewBuilder(session.FS, session.API, session.Log)
	_, err := builder.Build(ctx, packbuilder.Options{
		Loader:        cfg.Loader,
		GameVersion:   cfg.GameVersion,
		LoaderVersion: cfg.LoaderVersion,
		ModsDir:       cfg.ModsDir,
		ReportPath:    cfg.Report,
		ExternalPath:  cfg.External,
		OutputPath:    cfg.Output,
		Name:          cfg.Pack.Name,
		Summary:       cfg.Pack.Summary,
		VersionID:     cfg.Pack.VersionID,
	})
	return err
}

func (session *Session) Server(ctx context.Context, flags ServerFlags) error {
	cfg := session.Config
	extractor := serverpack.NewExtractor(session.FS, session.Log, session.Painter)
	_, err := extractor.Extract(ctx, serverpack.Options{
		ModsDir:        cfg.ModsDir,
		ReportPath:     cfg.Report,
		ExternalPath:   cfg.External,
		OutputDir:      cfg.ServerDir,
		IncludeUnknown: flags.IncludeUnknown,
		Clean:          flags.Clean,
	})
	return err
}

func (session *Session) DownloadStep(flags DownloadFlags) pipeline.Step {
	return pipeline.Step{Name: "download", Run: func(ctx context.Context) error {
		return session.Download(ctx, flags)
	}}
}

func (session *Session) PackStep() pipeline.Step {
	return pipeline.Step{Name: "pack", Run: session.Pack}
}

func (session *Session) ServerStep(flags ServerFlags) pipeline.Step {
	return pipeline.Step{Name: "server", Run: func(ctx context.Context) error {
		return session.Server(ctx, flags)
	}}
}
