package models

// ReleaseType is Modrinth's version_type channel.
type ReleaseType string

const (
	Alpha   ReleaseType = "alpha"
	Beta    ReleaseType = "beta"
	Release ReleaseType = "release"
)

// IsPrerelease reports whether the channel is alpha or beta.
func (releaseType ReleaseType) IsPrerelease() bool {
	return releaseType == Alpha || releaseType == Beta
}
