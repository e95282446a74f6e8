package embed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/fwembed/internal/tool/service/fs"
)

// -- Sentinels --

var (
	ErrMissingDependency        = errors.New("missing dependency")
	ErrFrameworksFolderCreation = errors.New("frameworks folder creation failed")
	ErrCopyFailed               = errors.New("copy failed")
	ErrUnsupportedArchitecture  = errors.New("unsupported architecture")
	ErrSigningFailed            = errors.New("signing failed")
	ErrArchitectureStrip        = errors.New("architecture strip failed")
	ErrEnvironmentRequired      = errors.New("build environment is required")
)

// -- Typed errors --

// MissingDependencyError means the given path does not resolve to an existing
// bundle. Cause is set when the path could not be resolved at all.
type MissingDependencyError struct {
	Path  string
	Cause error
}

func (e *MissingDependencyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("could not resolve framework path %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("no framework found at %s", e.Path)
}
func (e *MissingDependencyError) Unwrap() error        { return e.Cause }
func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }

type FrameworksFolderCreationError struct {
	Path  string
	Cause error
}

func (e *FrameworksFolderCreationError) Error() string {
	return fmt.Sprintf("failed to create frameworks folder %s: %v", e.Path, e.Cause)
}
func (e *FrameworksFolderCreationError) Unwrap() error { return e.Cause }
func (e *FrameworksFolderCreationError) Is(target error) bool {
	return target == ErrFrameworksFolderCreation
}

// CopyFailedError covers both the bundle copy and the debug symbols copy.
type CopyFailedError struct {
	From  string
	To    string
	Cause error
}

func (e *CopyFailedError) Error() string {
	cause := e.Cause
	// fs.CopyError already names both paths.
	var copyErr *fs.CopyError
	if errors.As(cause, &copyErr) {
		cause = copyErr.Cause
	}
	return fmt.Sprintf("failed to copy %s to %s: %v", e.From, e.To, cause)
}
func (e *CopyFailedError) Unwrap() error        { return e.Cause }
func (e *CopyFailedError) Is(target error) bool { return target == ErrCopyFailed }

// UnsupportedArchitectureError means the bundle carries none of the valid
// architectures, or its architectures could not be read at all (Cause set).
type UnsupportedArchitectureError struct {
	Path          string
	Architectures []string
	ValidArchs    []string
	Cause         error
}

func (e *UnsupportedArchitectureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("could not determine the architectures of %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("%s supports none of the valid architectures (has %s, valid %s)",
		e.Path, strings.Join(e.Architectures, " "), strings.Join(e.ValidArchs, " "))
}
func (e *UnsupportedArchitectureError) Unwrap() error { return e.Cause }
func (e *UnsupportedArchitectureError) Is(target error) bool {
	return target == ErrUnsupportedArchitecture
}

type SigningFailedError struct {
	Path     string
	Identity string
	Cause    error
}

func (e *SigningFailedError) Error() string {
	return fmt.Sprintf("failed to sign %s with identity %q: %v", e.Path, e.Identity, e.Cause)
}
func (e *SigningFailedError) Unwrap() error        { return e.Cause }
func (e *SigningFailedError) Is(target error) bool { return target == ErrSigningFailed }

type ArchitectureStripError struct {
	Binary string
	Archs  []string
	Cause  error
}

func (e *ArchitectureStripError) Error() string {
	return fmt.Sprintf("failed to remove %s from %s: %v", strings.Join(e.Archs, " "), e.Binary, e.Cause)
}
func (e *ArchitectureStripError) Unwrap() error        { return e.Cause }
func (e *ArchitectureStripError) Is(target error) bool { return target == ErrArchitectureStrip }
