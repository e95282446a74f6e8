package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFile is the per-project file of extra copy exclusions, read from SRCROOT.
const IgnoreFile = ".fwembedignore"

// IgnoreReadError is returned when an ignore file exists but cannot be read.
type IgnoreReadError struct {
	Path  string
	Cause error
}

func (e *IgnoreReadError) Error() string {
	return fmt.Sprintf("failed to read ignore file at %s: %v", e.Path, e.Cause)
}
func (e *IgnoreReadError) Unwrap() error { return e.Cause }

// fileSystem defines the minimal filesystem interface needed to load an ignore file.
type fileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// IgnoreMatcher decides which bundle entries are left out of a copy, using
// go-git's gitignore pattern semantics.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher builds a matcher from gitignore-syntax patterns.
// Blank lines and comments are skipped.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	var parsed []gitignore.Pattern
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed = append(parsed, gitignore.ParsePattern(line, nil))
	}
	if len(parsed) == 0 {
		return &IgnoreMatcher{}
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(parsed)}
}

// LoadIgnoreFile reads patterns from root/.fwembedignore.
// A missing file yields no patterns and no error.
func LoadIgnoreFile(fs fileSystem, root string) ([]string, error) {
	if fs == nil {
		panic("fs is required")
	}
	path := filepath.Join(root, IgnoreFile)
	data, err := fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &IgnoreReadError{Path: path, Cause: err}
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}

// ShouldIgnore checks if a path relative to the copied root matches any pattern.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments for gitignore matching.
// It normalizes path separators and filters out empty and "." segments.
func splitPath(path string) []string {
	if path == "" {
		return []string{}
	}

	normalized := filepath.ToSlash(path)

	parts := strings.Split(normalized, "/")
	var segments []string
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}

	return segments
}

// NoOpMatcher is a matcher that never ignores any files.
type NoOpMatcher struct{}

// ShouldIgnore always returns false for NoOpMatcher.
func (m *NoOpMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	return false
}
