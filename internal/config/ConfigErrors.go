package config

import "fmt"

type FileInvalidError struct {
	Path string
	Err  error
}

func (invalid *FileInvalidError) Error() string {
	return fmt.Sprintf("Configuration file %s is invalid: %s", invalid.Path, invalid.Err)
}

func (invalid *FileInvalidError) Unwrap() error {
	return invalid.Err
}

type FileNotFoundError struct {
	Path string
}

func (notFound *FileNotFoundError) Error() string {
	return fmt.Sprintf("Configuration file not found: %s", notFound.Path)
}

// InvalidValueError reports a configuration key holding an unusable value.
type InvalidValueError struct {
	Key    string
	Value  any
	Reason string
}

func (invalid *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", invalid.Value, invalid.Key, invalid.Reason)
}
