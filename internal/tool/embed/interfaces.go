package embed

import (
	"context"
	"os"

	"github.com/Cyclone1070/fwembed/internal/tool/service/fs"
)

// fileSystem defines the file operations embedding needs.
type fileSystem interface {
	CurrentPath() (string, error)
	Exists(path string) bool
	IsFolder(path string) bool
	Lstat(path string) (os.FileInfo, error)
	ResolveLinks(path string) (string, error)
	CreateFolder(path string) error
	Delete(path string) error
	CopyTree(from, to string, skip fs.SkipFunc) error
}

// archInspector reads the architecture slices of a bundle.
type archInspector interface {
	Executable(bundlePath string) (string, error)
	Architectures(bundlePath string) ([]string, error)
}

type signer interface {
	Sign(ctx context.Context, path, identity string, flags []string) error
}

type stripper interface {
	Remove(ctx context.Context, binary string, archs []string) error
}

// copyExcluder decides which entries of a bundle are left out of the copy.
type copyExcluder interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}
