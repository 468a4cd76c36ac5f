// Package modfilename validates file names reported by Modrinth before they touch disk.
package modfilename

import "strings"

type ErrorReason string

const (
	ReasonEmpty       ErrorReason = "empty"
	ReasonDriveLetter ErrorReason = "drive_letter"
	ReasonUNCPath     ErrorReason = "unc_path"
	ReasonSeparator   ErrorReason = "path_separator"
	ReasonDotSegment  ErrorReason = "dot_segment"
)

type Error struct {
	Value  string
	Reason ErrorReason
}

func (err Error) Error() string {
	if err.Value == "" {
		return "invalid mod filename: " + string(err.Reason)
	}
	return "invalid mod filename " + err.Value + ": " + string(err.Reason)
}

// Validate trims value and rejects anything that could escape the target directory.
// The rules are the same on every platform so a report written on Linux stays valid on Windows.
func Validate(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", Error{Value: value, Reason: ReasonEmpty}
	}
	if hasUNCPath(trimmed) {
		return "", Error{Value: trimmed, Reason: ReasonUNCPath}
	}
	if hasDriveLetter(trimmed) {
		return "", Error{Value: trimmed, Reason: ReasonDriveLetter}
	}
	if strings.ContainsAny(trimmed, `/\`) {
		return "", Error{Value: trimmed, Reason: ReasonSeparator}
	}
	if trimmed == "." || trimmed == ".." {
		return "", Error{Value: trimmed, Reason: ReasonDotSegment}
	}
	return trimmed, nil
}

func hasUNCPath(value string) bool {
	return strings.HasPrefix(value, `\\`) || strings.HasPrefix(value, "//")
}

func hasDriveLetter(value string) bool {
	if len(value) < 2 {
		return false
	}
	if !isASCIIAlpha(value[0]) {
		return false
	}
	return value[1] == ':'
}

func isASCIIAlpha(value byte) bool {
	return (value >= 'a' && value <= 'z') || (value >= 'A' && value <= 'Z')
}
