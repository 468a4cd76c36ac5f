package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/fang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/cmd/mrpb"
	"github.com/meza/modrinth-pack-builder/internal/cli"
	"github.com/meza/modrinth-pack-builder/internal/environment"
	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/lifecycle"
	"github.com/meza/modrinth-pack-builder/internal/perf"
	"github.com/meza/modrinth-pack-builder/internal/pipeline"
)

const (
	perfLifecycleStartup  = "app.lifecycle.startup"
	perfLifecycleExecute  = "app.lifecycle.execute"
	perfLifecycleShutdown = "app.lifecycle.shutdown"
)

type shutdownTrigger string

const (
	shutdownTriggerExit   shutdownTrigger = "exit"
	shutdownTriggerSignal shutdownTrigger = "signal"
)

type runDeps struct {
	execute    func(context.Context) error
	register   func(lifecycle.Handler) lifecycle.HandlerID
	unregister func(lifecycle.HandlerID)
	args       []string
	getwd      func() (string, error)
	stderr     io.Writer
}

type perfExportConfig struct {
	enabled bool
	debug   bool
	baseDir string
	outDir  string
}

func main() {
	os.Exit(runWithDeps(runDeps{
		execute: func(ctx context.Context) error {
			return fang.Execute(ctx, mrpb.Command(),
				fang.WithVersion(environment.AppVersion()),
				fang.WithNotifySignal(os.Interrupt),
			)
		},
		register:   lifecycle.Register,
		unregister: lifecycle.Unregister,
		args:       os.Args[1:],
		getwd:      os.Getwd,
		stderr:     os.Stderr,
	}))
}

func runWithDeps(deps runDeps) int {
	if deps.getwd == nil {
		deps.getwd = os.Getwd
	}
	if deps.stderr == nil {
		deps.stderr = io.Discard
	}

	cwd, err := deps.getwd()
	if err != nil {
		cwd = "."
	}
	perfCfg := perfExportConfigFromArgs(deps.args, cwd)
	if perfCfg.enabled {
		if err := perf.Init(perf.Config{Enabled: true}); err != nil {
			fmt.Fprintf(deps.stderr, "performance tracing unavailable: %v\n", err)
			perfCfg.enabled = false
		}
	}

	ctx := context.Background()
	_, startup := perf.StartSpan(ctx, perfLifecycleStartup)

	var shutdownOnce sync.Once
	shutdown := func(trigger shutdownTrigger, sig os.Signal) {
		shutdownOnce.Do(func() {
			_, span := perf.StartSpan(ctx, perfLifecycleShutdown)
			span.SetAttributes(attribute.String("trigger", string(trigger)))
			if sig != nil {
				span.SetAttributes(attribute.String("signal", sig.String()))
			}
			span.End()
			exportPerf(perfCfg, deps.stderr)
		})
	}

	handlerID := deps.register(func(sig os.Signal) {
		shutdown(shutdownTriggerSignal, sig)
	})
	startup.End()

	execCtx, execute := perf.StartSpan(ctx, perfLifecycleExecute)
	err = deps.execute(execCtx)
	execute.SetAttributes(attribute.Bool("success", err == nil))
	execute.End()

	shutdown(shutdownTriggerExit, nil)
	deps.unregister(handlerID)

	return exitcode.CodeOf(err)
}

func exportPerf(cfg perfExportConfig, stderr io.Writer) {
	if !cfg.enabled {
		return
	}
	spans, err := perf.GetSpans()
	if err != nil {
		fmt.Fprintf(stderr, "performance export failed: %v\n", err)
		return
	}
	path, err := perf.ExportToFile(cfg.outDir, cfg.baseDir, spans)
	if err != nil {
		fmt.Fprintf(stderr, "performance export failed: %v\n", err)
		return
	}
	if cfg.debug {
		fmt.Fprintf(stderr, "Performance trace written to %s\n", path)
		writePerfSummary(stderr, spans)
	}
}

func writePerfSummary(out io.Writer, spans []perf.SpanSnapshot) {
	if durations, err := perf.GetSessionDurations(); err == nil {
		fmt.Fprintf(out, "  total %s, network %s, local %s\n", durations.Total, durations.Network, durations.Local)
	}
	if startup, ok := perf.FindSpanByName(spans, perfLifecycleStartup); ok {
		fmt.Fprintf(out, "  startup %s\n", startup.Duration())
	}
	for _, step := range perf.FilterSpansByName(spans, pipeline.StepSpanName) {
		fmt.Fprintf(out, "  step %v %s\n", step.Attributes["step"], step.Duration())
	}
}

// perfExportConfigFromArgs reads the perf flags before cobra runs, so the
// tracer covers flag parsing and config loading too. The export lands next to
// the config file when one is given, otherwise in the working directory.
func perfExportConfigFromArgs(args []string, cwd string) perfExportConfig {
	flags := pflag.NewFlagSet("perf", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}

	enabled := flags.Bool(cli.FlagPerf, false, "")
	outDir := flags.String(cli.FlagPerfOutDir, "", "")
	debug := flags.BoolP(cli.FlagDebug, "d", false, "")
	configFile := flags.StringP(cli.FlagConfig, "c", "", "")
	_ = flags.Parse(args)

	baseDir := cwd
	if *configFile != "" {
		configPath := *configFile
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(cwd, configPath)
		}
		if abs, err := filepath.Abs(configPath); err == nil {
			configPath = abs
		}
		baseDir = filepath.Dir(configPath)
	}

	out := baseDir
	if *outDir != "" {
		out = *outDir
		if !filepath.IsAbs(out) {
			out = filepath.Join(baseDir, out)
		}
	}

	return perfExportConfig{
		enabled: *enabled,
		debug:   *debug,
		baseDir: baseDir,
		outDir:  out,
	}
}
