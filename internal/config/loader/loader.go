// Package loader reads and writes configuration documents and binds
// settings to environment variables.
//
// JSON is the only document format. Paths with any other extension are
// rejected with cfgerr.ErrUnsupportedFormat before the filesystem is touched.
package loader

import (
	"io/fs"
	"os"
)

// FileSystem is an abstraction for the read side of document loading.
// This allows tests to serve documents from memory.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}
