// Package modlist maintains the persisted list of mod identifiers.
package modlist

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/meza/modrinth-pack-builder/internal/fileutils"
)

// InvalidListError is returned when a list file does not hold a JSON array.
type InvalidListError struct {
	Path string
	Err  error
}

func (invalid *InvalidListError) Error() string {
	if invalid.Err != nil {
		return fmt.Sprintf("mod list %s is not a JSON array: %v", invalid.Path, invalid.Err)
	}
	return fmt.Sprintf("mod list %s is not a JSON array", invalid.Path)
}

func (invalid *InvalidListError) Unwrap() error {
	return invalid.Err
}

// Normalize turns a command line token into a project identifier. Registry
// URLs yield the segment after "mod" or "project", or their last segment.
// The second return value is false when the token yields nothing.
func Normalize(token string) (string, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", false
	}
	if !strings.HasPrefix(trimmed, "http") {
		return trimmed, true
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return trimmed, true
	}

	segments := make([]string, 0)
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) == 0 {
		return "", false
	}

	for index, segment := range segments {
		if (segment == "mod" || segment == "project") && index+1 < len(segments) {
			return segments[index+1], true
		}
	}
	return segments[len(segments)-1], true
}

// NormalizeAll normalizes every token and drops the ones that yield nothing.
func NormalizeAll(tokens []string) []string {
	identifiers := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if identifier, ok := Normalize(token); ok {
			identifiers = append(identifiers, identifier)
		}
	}
	return identifiers
}

// Union appends the identifiers of additions missing from current, keeping
// the order of first occurrence and collapsing duplicates on both sides.
func Union(current []string, additions []string) []string {
	seen := make(map[string]struct{}, len(current)+len(additions))
	merged := make([]string, 0, len(current)+len(additions))
	for _, list := range [][]string{current, additions} {
		for _, identifier := range list {
			if _, exists := seen[identifier]; exists {
				continue
			}
			seen[identifier] = struct{}{}
			merged = append(merged, identifier)
		}
	}
	return merged
}

// Load reads a JSON array list. An absent file is an empty list. Items that
// are not strings are stringified; blank items are dropped.
func Load(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read mod list %s: %w", path, err)
	}
	return parseJSON(path, data)
}

func parseJSON(path string, data []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, &InvalidListError{Path: path, Err: err}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &InvalidListError{Path: path}
	}

	identifiers := make([]string, 0, len(items))
	for _, item := range items {
		var value string
		switch typed := item.(type) {
		case nil:
			continue
		case string:
			value = typed
		default:
			value = fmt.Sprint(typed)
		}
		if value = strings.TrimSpace(value); value != "" {
			identifiers = append(identifiers, value)
		}
	}
	return identifiers, nil
}

// LoadFile reads an identifier file given on the command line. Files ending
// in .json are JSON arrays; anything else is one identifier per line with
// blank lines and # comments skipped. Unlike Load the file must exist.
func LoadFile(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read mod list %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSON(path, data)
	}
	return parseText(data)
}

func parseText(data []byte) ([]string, error) {
	identifiers := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identifiers = append(identifiers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return identifiers, nil
}

// Save writes identifiers as an indented JSON array, creating the parent
// directory when needed.
func Save(fs afero.Fs, path string, identifiers []string) error {
	if identifiers == nil {
		identifiers = []string{}
	}
	data, err := json.MarshalIndent(identifiers, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mod list directory: %w", err)
		}
	}
	return fileutils.WriteFileAtomic(fs, path, data)
}

// Add normalizes tokens, merges them into the list at path and saves it.
// The merged list is returned.
func Add(fs afero.Fs, path string, tokens []string) ([]string, error) {
	current, err := Load(fs, path)
	if err != nil {
		return nil, err
	}
	merged := Union(current, NormalizeAll(tokens))
	if err := Save(fs, path, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
