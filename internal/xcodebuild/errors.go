package xcodebuild

import (
	"errors"
	"fmt"
)

// SettingsReadError is returned when a build settings file cannot be read.
type SettingsReadError struct {
	Path  string
	Cause error
}

func (e *SettingsReadError) Error() string {
	return fmt.Sprintf("failed to read build settings file %s: %v", e.Path, e.Cause)
}
func (e *SettingsReadError) Unwrap() error { return e.Cause }

// SettingsParseError is returned when a build settings file has an invalid line.
type SettingsParseError struct {
	Path    string
	Line    int
	Content string
}

func (e *SettingsParseError) Error() string {
	return fmt.Sprintf("invalid line %d in build settings file %s: %s", e.Line, e.Path, e.Content)
}
func (e *SettingsParseError) Unwrap() error { return ErrSettingsParse }

// -- Sentinels --

var (
	ErrSettingsParse = errors.New("malformed build settings")
)
