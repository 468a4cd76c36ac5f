// Package constants defines shared constant values.
package constants

// AppName is the project identifier used in logs, user agents and metadata.
const AppName = "modrinth-pack-builder"

// CommandName is the primary CLI command name.
const CommandName = "mrpb"

// ConfigFileName is the base name of the optional persisted configuration file.
const ConfigFileName = "mrpb"

// EnvPrefix prefixes every environment override of a configuration key.
const EnvPrefix = "MRPB"

const (
	ModListFileName  = "mods.json"
	ReportFileName   = "modrinth_report.json"
	ExternalFileName = "external_mods.json"
	PackIndexName    = "modrinth.index.json"
)
