// Package ports defines interfaces (contracts) for external dependencies.
// These enable dependency injection and testability via mock implementations.
package ports

import (
	"errors"
	"os"
)

// ErrSameFile is returned by FileSystem.CopyFile when src and dst resolve
// to the same file.
var ErrSameFile = errors.New("source and destination are the same file")

// FileSystem abstracts filesystem operations for testability.
// Production code uses OSFileSystem adapter; tests use MockFileSystem.
type FileSystem interface {
	// Stat returns file info for the named file.
	Stat(name string) (os.FileInfo, error)

	// MkdirAll creates a directory along with any necessary parents.
	MkdirAll(path string, perm os.FileMode) error

	// ReadFile reads the named file and returns the contents.
	ReadFile(name string) ([]byte, error)

	// CopyFile copies src over dst, replacing any existing file.
	// Permissions and modification time of src are carried over.
	// Returns ErrSameFile, leaving both untouched, when dst is src.
	CopyFile(src, dst string) error

	// MkdirTemp creates a new temporary directory in dir.
	// An empty dir means the default temporary directory.
	MkdirTemp(dir, pattern string) (string, error)

	// RemoveAll removes path and any children it contains.
	RemoveAll(path string) error
}
