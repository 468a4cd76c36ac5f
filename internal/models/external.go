package models

import (
	"encoding/json"
	"strings"
)

// ExternalMod is a hand-authored entry for a mod that is not fetched through the registry.
type ExternalMod struct {
	Name       string `json:"name,omitempty"`
	File       string `json:"file"`
	URL        string `json:"url"`
	Side       Side   `json:"side,omitempty"`
	ClientSide string `json:"clientSide,omitempty"`
	ServerSide string `json:"serverSide,omitempty"`
}

func (mod *ExternalMod) UnmarshalJSON(data []byte) error {
	type plain ExternalMod
	var raw struct {
		plain
		ClientSideSnake string `json:"client_side"`
		ServerSideSnake string `json:"server_side"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*mod = ExternalMod(raw.plain)
	if mod.ClientSide == "" {
		mod.ClientSide = raw.ClientSideSnake
	}
	if mod.ServerSide == "" {
		mod.ServerSide = raw.ServerSideSnake
	}
	return nil
}

// Sides prefers the side shorthand and falls back to the explicit fields.
func (mod ExternalMod) Sides() SidePair {
	if pair, ok := mod.Side.Pair(); ok {
		return pair
	}
	return SidePair{Client: mod.ClientSide, Server: mod.ServerSide}
}

func (mod ExternalMod) DisplayName() string {
	if mod.Name != "" {
		return mod.Name
	}
	return strings.TrimSpace(mod.File)
}
