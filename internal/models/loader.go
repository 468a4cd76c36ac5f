package models

import (
	"fmt"
	"slices"
	"strings"
)

type Loader string

const (
	BUKKIT     Loader = "bukkit"
	BUNGEECORD Loader = "bungeecord"
	CAULDRON   Loader = "cauldron"
	DATAPACK   Loader = "datapack"
	FABRIC     Loader = "fabric"
	FOLIA      Loader = "folia"
	FORGE      Loader = "forge"
	LITELOADER Loader = "liteloader"
	MODLOADER  Loader = "modloader"
	NEOFORGE   Loader = "neoforge"
	PAPER      Loader = "paper"
	PURPUR     Loader = "purpur"
	QUILT      Loader = "quilt"
	RIFT       Loader = "rift"
	SPIGOT     Loader = "spigot"
	SPONGE     Loader = "sponge"
	VELOCITY   Loader = "velocity"
	WATERFALL  Loader = "waterfall"
)

func AllLoaders() []Loader {
	return []Loader{
		BUKKIT, BUNGEECORD, CAULDRON, DATAPACK, FABRIC, FOLIA, FORGE, LITELOADER,
		MODLOADER, NEOFORGE, PAPER, PURPUR, QUILT, RIFT, SPIGOT, SPONGE, VELOCITY, WATERFALL,
	}
}

func (loader Loader) String() string {
	return string(loader)
}

type UnknownLoaderError struct {
	Value string
}

func (unknownErr *UnknownLoaderError) Error() string {
	return fmt.Sprintf("unknown loader: %q", unknownErr.Value)
}

// ParseLoader accepts any casing and surrounding whitespace.
func ParseLoader(value string) (Loader, error) {
	candidate := Loader(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(AllLoaders(), candidate) {
		return candidate, nil
	}
	return "", &UnknownLoaderError{Value: value}
}
