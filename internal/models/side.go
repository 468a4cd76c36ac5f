package models

import "strings"

// Side is the shorthand classification allowed on external mod entries.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
	SideBoth   Side = "both"
)

// Environment values as used by Modrinth's client_side/server_side fields.
const (
	EnvironmentRequired    = "required"
	EnvironmentOptional    = "optional"
	EnvironmentUnsupported = "unsupported"
)

type SidePair struct {
	Client string
	Server string
}

// Pair maps the shorthand to explicit client/server requirements. The second
// return value is false when the shorthand is empty or unrecognised.
func (side Side) Pair() (SidePair, bool) {
	switch Side(strings.ToLower(strings.TrimSpace(string(side)))) {
	case SideClient:
		return SidePair{Client: EnvironmentRequired, Server: EnvironmentUnsupported}, true
	case SideServer:
		return SidePair{Client: EnvironmentUnsupported, Server: EnvironmentRequired}, true
	case SideBoth:
		return SidePair{Client: EnvironmentRequired, Server: EnvironmentRequired}, true
	default:
		return SidePair{}, false
	}
}

// ServerSupport is the tri-state answer to "does this mod belong on a dedicated server".
type ServerSupport int

const (
	SupportUnknown ServerSupport = iota
	SupportSupported
	SupportUnsupported
)

func (support ServerSupport) String() string {
	switch support {
	case SupportSupported:
		return "supported"
	case SupportUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// ServerSupportFor treats anything other than the unsupported sentinel as
// supported, and a missing value as unknown.
func ServerSupportFor(serverSide string) ServerSupport {
	value := strings.TrimSpace(serverSide)
	if value == "" {
		return SupportUnknown
	}
	if value == EnvironmentUnsupported {
		return SupportUnsupported
	}
	return SupportSupported
}

func (pair SidePair) ServerSupport() ServerSupport {
	return ServerSupportFor(pair.Server)
}

func isEnvironment(value string) bool {
	switch value {
	case EnvironmentRequired, EnvironmentOptional, EnvironmentUnsupported:
		return true
	}
	return false
}

// Env returns the pack-format env block, or nil unless both sides carry a
// recognised value.
func (pair SidePair) Env() *FileEnv {
	if !isEnvironment(pair.Client) || !isEnvironment(pair.Server) {
		return nil
	}
	return &FileEnv{Client: pair.Client, Server: pair.Server}
}
