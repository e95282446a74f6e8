package fs

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// SkipFunc reports whether an entry of a copied tree should be left out.
// rel is slash-separated and relative to the root being copied.
type SkipFunc func(rel string, isDir bool) bool

// maxLinkHops bounds symlink resolution so link cycles fail instead of looping.
const maxLinkHops = 255

// File is an open file handle.
type File = billy.File

// FileSystem implements the file operations the embedder consumes on top of a
// billy.Filesystem, so the OS can be swapped for memfs in tests.
// Relative paths are resolved against the current path.
type FileSystem struct {
	fs  billy.Filesystem
	cwd func() (string, error)
}

// NewOSFileSystem creates a FileSystem over the local OS.
func NewOSFileSystem() *FileSystem {
	return &FileSystem{
		fs:  osfs.New(string(filepath.Separator)),
		cwd: os.Getwd,
	}
}

// NewFileSystem creates a FileSystem over fs with a fixed current path.
func NewFileSystem(fs billy.Filesystem, cwd string) *FileSystem {
	if fs == nil {
		panic("fs is required")
	}
	return &FileSystem{
		fs:  fs,
		cwd: func() (string, error) { return cwd, nil },
	}
}

// CurrentPath returns the working directory relative paths resolve against.
func (f *FileSystem) CurrentPath() (string, error) {
	return f.cwd()
}

// Exists reports whether path points to an existing file or folder (follows symlinks).
func (f *FileSystem) Exists(path string) bool {
	_, err := f.Stat(path)
	return err == nil
}

// IsFolder reports whether path points to a folder (follows symlinks).
func (f *FileSystem) IsFolder(path string) bool {
	info, err := f.Stat(path)
	return err == nil && info.IsDir()
}

// Stat returns file info for a path, following symlinks anywhere along it.
func (f *FileSystem) Stat(path string) (os.FileInfo, error) {
	resolved, err := f.ResolveLinks(path)
	if err != nil {
		return nil, err
	}
	return f.fs.Stat(resolved)
}

// Lstat returns file info for a path without following symlinks.
func (f *FileSystem) Lstat(path string) (os.FileInfo, error) {
	return f.fs.Lstat(f.abs(path))
}

// ResolveLinks returns the absolute path with every symlink along it replaced
// by its target, like filepath.EvalSymlinks. Every component must exist.
func (f *FileSystem) ResolveLinks(p string) (string, error) {
	p = f.abs(p)
	sep := string(filepath.Separator)

	resolved := sep
	rest := strings.Split(p, sep)
	hops := 0
	for len(rest) > 0 {
		name := rest[0]
		rest = rest[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := f.fs.Lstat(next)
		if err != nil {
			return "", &ResolveError{Path: p, Cause: err}
		}
		if info.Mode()&os.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxLinkHops {
			return "", &ResolveError{Path: p, Cause: ErrTooManyLinks}
		}
		target, err := f.fs.Readlink(next)
		if err != nil {
			return "", &ResolveError{Path: p, Cause: err}
		}
		if filepath.IsAbs(target) {
			resolved = sep
		}
		rest = append(strings.Split(target, sep), rest...)
	}
	return resolved, nil
}

// Open opens a file for reading.
func (f *FileSystem) Open(path string) (File, error) {
	return f.fs.Open(f.abs(path))
}

// ReadFile reads the whole file at path.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	file, err := f.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// CreateFolder creates path and any missing parents.
func (f *FileSystem) CreateFolder(path string) error {
	path = f.abs(path)
	if info, err := f.fs.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return &MkdirError{Path: path, Cause: ErrNotAFolder}
	}
	if err := f.fs.MkdirAll(path, 0o755); err != nil {
		return &MkdirError{Path: path, Cause: err}
	}
	return nil
}

// Delete removes path recursively. A missing path is not an error.
func (f *FileSystem) Delete(path string) error {
	path = f.abs(path)
	if _, err := f.fs.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &DeleteError{Path: path, Cause: err}
	}
	if err := util.RemoveAll(f.fs, path); err != nil {
		return &DeleteError{Path: path, Cause: err}
	}
	return nil
}

// Glob returns the paths under base matching pattern, sorted.
func (f *FileSystem) Glob(base, pattern string) ([]string, error) {
	matches, err := util.Glob(f.fs, f.fs.Join(f.abs(base), pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Copy copies the file or folder tree at from to to. It fails with
// ErrDestinationExists if to already exists.
func (f *FileSystem) Copy(from, to string) error {
	return f.CopyTree(from, to, nil)
}

// CopyTree is Copy with entries left out when skip returns true. Symlinks
// inside the tree are recreated, not followed; permission bits are kept.
func (f *FileSystem) CopyTree(from, to string, skip SkipFunc) error {
	from, to = f.abs(from), f.abs(to)

	info, err := f.fs.Stat(from)
	if err != nil {
		return &CopyError{From: from, To: to, Cause: err}
	}
	if _, err := f.fs.Lstat(to); err == nil {
		return &CopyError{From: from, To: to, Cause: ErrDestinationExists}
	}
	if err := f.fs.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return &CopyError{From: from, To: to, Cause: &MkdirError{Path: filepath.Dir(to), Cause: err}}
	}
	if err := f.copyEntry(from, to, "", info, skip); err != nil {
		return &CopyError{From: from, To: to, Cause: err}
	}
	return nil
}

func (f *FileSystem) copyEntry(src, dst, rel string, info os.FileInfo, skip SkipFunc) error {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := f.fs.Readlink(src)
		if err != nil {
			return err
		}
		if err := f.fs.Symlink(target, dst); err != nil {
			return &SymlinkError{Target: target, Link: dst, Cause: err}
		}
		return nil

	case info.IsDir():
		if err := f.fs.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
			return &MkdirError{Path: dst, Cause: err}
		}
		entries, err := f.fs.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			childSrc := f.fs.Join(src, entry.Name())
			childInfo, err := f.fs.Lstat(childSrc)
			if err != nil {
				return err
			}
			childRel := path.Join(rel, entry.Name())
			if skip != nil && skip(childRel, childInfo.IsDir()) {
				continue
			}
			if err := f.copyEntry(childSrc, f.fs.Join(dst, entry.Name()), childRel, childInfo, skip); err != nil {
				return err
			}
		}
		return nil

	default:
		return f.copyFile(src, dst, info.Mode().Perm())
	}
}

func (f *FileSystem) copyFile(src, dst string, perm os.FileMode) error {
	in, err := f.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := f.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile is subject to the umask.
	if ch, ok := f.fs.(billy.Change); ok {
		return ch.Chmod(dst, perm)
	}
	return nil
}

func (f *FileSystem) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	cwd, err := f.cwd()
	if err != nil {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
