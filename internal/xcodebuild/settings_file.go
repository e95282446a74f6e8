package xcodebuild

import (
	"strings"
)

// fileReader defines the minimal filesystem interface needed to read a settings file.
type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

// ParseSettingsFile reads build settings from a file so the tool can run
// outside a build phase. It supports:
// - KEY=VALUE and KEY = VALUE (the xcodebuild -showBuildSettings layout)
// - an optional leading "export"
// - comments starting with # or //
// - section headers ending in ":", reading only "Build settings ..." sections
// - other sections, such as the command line invocation, which are skipped
// - basic quoted values (single and double quotes)
//
// When a key repeats, the last value wins.
func ParseSettingsFile(fs fileReader, path string) (map[string]string, error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return nil, &SettingsReadError{Path: path, Cause: err}
	}

	settings := make(map[string]string)
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	skipping := false

	for i, rawLine := range lines {
		line := strings.TrimSpace(rawLine)

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if isSectionHeader(rawLine, line) {
			skipping = !strings.HasPrefix(line, "Build settings")
			continue
		}
		if skipping {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &SettingsParseError{Path: path, Line: i + 1, Content: line}
		}

		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if !isSettingName(key) {
			return nil, &SettingsParseError{Path: path, Line: i + 1, Content: line}
		}

		settings[key] = unquote(strings.TrimSpace(value))
	}

	return settings, nil
}

// isSectionHeader matches unindented lines such as "Command line invocation:".
func isSectionHeader(rawLine, line string) bool {
	return rawLine == strings.TrimLeft(rawLine, " \t") &&
		strings.HasSuffix(line, ":") &&
		!strings.Contains(line, "=")
}

func isSettingName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
