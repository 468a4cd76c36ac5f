// Package config resolves the settings shared by every mrpb command.
// Values come from, in order of precedence: explicit flags, MRPB_* environment
// variables, an optional mrpb.{yaml,json,toml} file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/meza/modrinth-pack-builder/internal/constants"
	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/models"
)

const (
	KeyLoader        = "loader"
	KeyGameVersion   = "game_version"
	KeyLoaderVersion = "loader_version"
	KeyModsDir       = "mods_dir"
	KeyModList       = "mod_list"
	KeyReport        = "report"
	KeyExternal      = "external"
	KeyOutput        = "output"
	KeyServerDir     = "server_dir"
	KeyPackName      = "pack.name"
	KeyPackSummary   = "pack.summary"
	KeyPackVersionID = "pack.version_id"
	KeyHTTPTimeout   = "http.timeout"
	KeyHTTPRetries   = "http.retries"
	KeyHTTPRateLimit = "http.rate_limit"
)

const (
	DefaultLoader        = models.NEOFORGE
	DefaultGameVersion   = "1.21.11"
	DefaultLoaderVersion = "21.11.13-beta"
	DefaultModsDir       = "mods"
	DefaultOutput        = "neoforge-1.21.11-gravestone.mrpack"
	DefaultServerDir     = "server_mods"
	DefaultPackName      = "NeoForge 1.21.11 Mods"
	DefaultPackSummary   = "Auto-generated Modrinth pack for the server/client mod list."
	DefaultPackVersionID = "1.0.0"
)

type PackConfig struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Summary   string `mapstructure:"summary" yaml:"summary"`
	VersionID string `mapstructure:"version_id" yaml:"version_id"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries   int           `mapstructure:"retries" yaml:"retries"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
}

type Config struct {
	Loader        models.Loader `mapstructure:"loader" yaml:"loader"`
	GameVersion   string        `mapstructure:"game_version" yaml:"game_version"`
	LoaderVersion string        `mapstructure:"loader_version" yaml:"loader_version"`
	ModsDir       string        `mapstructure:"mods_dir" yaml:"mods_dir"`
	ModList       string        `mapstructure:"mod_list" yaml:"mod_list"`
	Report        string        `mapstructure:"report" yaml:"report"`
	External      string        `mapstructure:"external" yaml:"external"`
	Output        string        `mapstructure:"output" yaml:"output"`
	ServerDir     string        `mapstructure:"server_dir" yaml:"server_dir"`
	Pack          PackConfig    `mapstructure:"pack" yaml:"pack"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-" yaml:"-"`
}

// flagKeys maps persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"loader":         KeyLoader,
	"game-version":   KeyGameVersion,
	"loader-version": KeyLoaderVersion,
	"mods-dir":       KeyModsDir,
	"mod-list":       KeyModList,
	"report":         KeyReport,
	"external":       KeyExternal,
	"output":         KeyOutput,
	"output-dir":     KeyServerDir,
	"name":           KeyPackName,
	"summary":        KeyPackSummary,
	"version-id":     KeyPackVersionID,
	"http-timeout":   KeyHTTPTimeout,
	"http-retries":   KeyHTTPRetries,
	"rate-limit":     KeyHTTPRateLimit,
}

// RegisterFlags adds the shared configuration flags. The flag defaults only
// document behaviour; the effective defaults live in Load.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("loader", string(DefaultLoader), "Mod loader to resolve builds for")
	flags.String("game-version", DefaultGameVersion, "Minecraft version to resolve builds for")
	flags.String("loader-version", DefaultLoaderVersion, "Loader version recorded in the pack dependencies (empty to omit)")
	flags.String("mods-dir", DefaultModsDir, "Directory holding downloaded mod files")
	flags.String("mod-list", "", "Persisted mod list (default <mods-dir>/"+constants.ModListFileName+")")
	flags.String("report", "", "Download report (default <mods-dir>/"+constants.ReportFileName+")")
	flags.String("external", "", "External mod list (default <mods-dir>/"+constants.ExternalFileName+")")
	flags.String("output", DefaultOutput, "Path of the .mrpack archive to write")
	flags.String("output-dir", DefaultServerDir, "Directory receiving the server-side mods")
	flags.String("name", DefaultPackName, "Pack name written to the index")
	flags.String("summary", DefaultPackSummary, "Pack summary written to the index")
	flags.String("version-id", DefaultPackVersionID, "Pack version written to the index")
	flags.Duration("http-timeout", 0, "Per request timeout (0 disables)")
	flags.Int("http-retries", 0, "Retries for 429 and 5xx responses")
	flags.Float64("rate-limit", 0, "Maximum requests per second (0 is unlimited)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyLoader, string(DefaultLoader))
	v.SetDefault(KeyGameVersion, DefaultGameVersion)
	v.SetDefault(KeyLoaderVersion, DefaultLoaderVersion)
	v.SetDefault(KeyModsDir, DefaultModsDir)
	v.SetDefault(KeyModList, "")
	v.SetDefault(KeyReport, "")
	v.SetDefault(KeyExternal, "")
	v.SetDefault(KeyOutput, DefaultOutput)
	v.SetDefault(KeyServerDir, DefaultServerDir)
	v.SetDefault(KeyPackName, DefaultPackName)
	v.SetDefault(KeyPackSummary, DefaultPackSummary)
	v.SetDefault(KeyPackVersionID, DefaultPackVersionID)
	v.SetDefault(KeyHTTPTimeout, time.Duration(0))
	v.SetDefault(KeyHTTPRetries, 0)
	v.SetDefault(KeyHTTPRateLimit, 0.0)
}

type LoadOptions struct {
	// ConfigFile is an explicit --config path. A missing file is a usage error.
	ConfigFile string
	// SearchDir is where mrpb.{yaml,json,toml} is looked up when ConfigFile is empty.
	SearchDir string
	Flags     *pflag.FlagSet
}

// Load resolves the effective configuration and validates it.
func Load(fs afero.Fs, opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for flagName, key := range flagKeys {
			flag := opts.Flags.Lookup(flagName)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flagName, err)
			}
		}
	}

	source, err := readConfigFile(fs, v, opts)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &FileInvalidError{Path: source, Err: err}
	}
	cfg.Source = source
	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(fs afero.Fs, v *viper.Viper, opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		exists, err := afero.Exists(fs, opts.ConfigFile)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", exitcode.UsageError(&FileNotFoundError{Path: opts.ConfigFile})
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return "", &FileInvalidError{Path: opts.ConfigFile, Err: err}
		}
		return opts.ConfigFile, nil
	}

	searchDir := opts.SearchDir
	if searchDir == "" {
		searchDir = "."
	}
	v.SetConfigName(constants.ConfigFileName)
	v.AddConfigPath(searchDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", &FileInvalidError{Path: v.ConfigFileUsed(), Err: err}
	}
	return v.ConfigFileUsed(), nil
}

func (cfg *Config) applyDerivedDefaults() {
	cfg.Loader = models.Loader(strings.ToLower(strings.TrimSpace(string(cfg.Loader))))
	if strings.TrimSpace(cfg.ModList) == "" {
		cfg.ModList = filepath.Join(cfg.ModsDir, constants.ModListFileName)
	}
	if strings.TrimSpace(cfg.Report) == "" {
		cfg.Report = filepath.Join(cfg.ModsDir, constants.ReportFileName)
	}
	if strings.TrimSpace(cfg.External) == "" {
		cfg.External = filepath.Join(cfg.ModsDir, constants.ExternalFileName)
	}
}

// Validate rejects configurations no command could run with. Every failure
// is a usage error.
func (cfg *Config) Validate() error {
	if _, err := models.ParseLoader(string(cfg.Loader)); err != nil {
		return exitcode.UsageError(&InvalidValueError{Key: KeyLoader, Value: cfg.Loader, Reason: err.Error()})
	}
	if strings.TrimSpace(cfg.GameVersion) == "" {
		return exitcode.UsageError(&InvalidValueError{Key: KeyGameVersion, Value: `""`, Reason: "must not be empty"})
	}
	if strings.TrimSpace(cfg.ModsDir) == "" {
		return exitcode.UsageError(&InvalidValueError{Key: KeyModsDir, Value: `""`, Reason: "must not be empty"})
	}
	if _, err := version.NewVersion(cfg.Pack.VersionID); err != nil {
		return exitcode.UsageError(&InvalidValueError{Key: KeyPackVersionID, Value: cfg.Pack.VersionID, Reason: err.Error()})
	}
	if cfg.HTTP.Timeout < 0 {
		return exitcode.UsageError(&InvalidValueError{Key: KeyHTTPTimeout, Value: cfg.HTTP.Timeout, Reason: "must not be negative"})
	}
	if cfg.HTTP.Retries < 0 {
		return exitcode.UsageError(&InvalidValueError{Key: KeyHTTPRetries, Value: cfg.HTTP.Retries, Reason: "must not be negative"})
	}
	if cfg.HTTP.RateLimit < 0 {
		return exitcode.UsageError(&InvalidValueError{Key: KeyHTTPRateLimit, Value: cfg.HTTP.RateLimit, Reason: "must not be negative"})
	}
	return nil
}

func (cfg *Config) HTTPOptions() httpclient.Options {
	return httpclient.Options{
		Timeout:   cfg.HTTP.Timeout,
		Retries:   cfg.HTTP.Retries,
		RateLimit: cfg.HTTP.RateLimit,
	}
}
