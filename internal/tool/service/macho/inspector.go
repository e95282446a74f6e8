// Package macho reads the architecture slices of framework executables.
package macho

import (
	"debug/macho"
	"errors"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
)

type fileSystem interface {
	Exists(path string) bool
	IsFolder(path string) bool
	Open(path string) (billy.File, error)
	ResolveLinks(path string) (string, error)
}

// Inspector resolves bundle executables and lists their architectures.
type Inspector struct {
	fs fileSystem
}

func NewInspector(fs fileSystem) *Inspector {
	if fs == nil {
		panic("fs is required")
	}
	return &Inspector{fs: fs}
}

// Executable returns the path of the binary inside bundle. Shallow bundles keep
// it at the root, versioned macOS bundles under Versions/Current. Symlinks are
// resolved, so the result is the file that tools rewriting the binary must
// target. A bundlePath that is itself a file is resolved the same way.
func (i *Inspector) Executable(bundlePath string) (string, error) {
	if i.fs.Exists(bundlePath) && !i.fs.IsFolder(bundlePath) {
		return i.fs.ResolveLinks(bundlePath)
	}

	base := filepath.Base(bundlePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	candidates := []string{
		filepath.Join(bundlePath, name),
		filepath.Join(bundlePath, "Versions", "Current", name),
	}
	for _, c := range candidates {
		if i.fs.Exists(c) && !i.fs.IsFolder(c) {
			return i.fs.ResolveLinks(c)
		}
	}
	return "", &ExecutableNotFoundError{Bundle: bundlePath, Tried: candidates}
}

// Architectures lists the slices of the bundle's executable, in file order.
func (i *Inspector) Architectures(bundlePath string) ([]string, error) {
	exe, err := i.Executable(bundlePath)
	if err != nil {
		return nil, err
	}

	f, err := i.fs.Open(exe)
	if err != nil {
		return nil, &FormatError{Path: exe, Cause: err}
	}
	defer f.Close()

	fat, err := macho.NewFatFile(f)
	if err == nil {
		defer fat.Close()
		archs := make([]string, 0, len(fat.Arches))
		for _, a := range fat.Arches {
			archs = append(archs, ArchName(a.Cpu, a.SubCpu))
		}
		return archs, nil
	}
	if !errors.Is(err, macho.ErrNotFat) {
		return nil, &FormatError{Path: exe, Cause: err}
	}

	thin, err := macho.NewFile(f)
	if err != nil {
		return nil, &FormatError{Path: exe, Cause: err}
	}
	defer thin.Close()
	return []string{ArchName(thin.Cpu, thin.SubCpu)}, nil
}

// IsFat reports whether the bundle's executable is a universal binary.
func (i *Inspector) IsFat(bundlePath string) (bool, error) {
	exe, err := i.Executable(bundlePath)
	if err != nil {
		return false, err
	}
	f, err := i.fs.Open(exe)
	if err != nil {
		return false, &FormatError{Path: exe, Cause: err}
	}
	defer f.Close()

	fat, err := macho.NewFatFile(f)
	if err == nil {
		fat.Close()
		return true, nil
	}
	if errors.Is(err, macho.ErrNotFat) {
		return false, nil
	}
	return false, &FormatError{Path: exe, Cause: err}
}
