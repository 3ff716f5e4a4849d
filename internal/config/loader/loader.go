// Package loader reads configuration sources into nested maps.
//
// Each source (a TOML file, the process environment) yields a
// map[string]any keyed by section and setting name. The config package
// merges the maps in precedence order and decodes the result.
package loader

import (
	"io"
	"io/fs"
	"os"
)

// Loader reads configuration from a source. Load returns nil, nil when
// the source does not exist.
type Loader interface {
	Load() (map[string]any, error)
}

// ReaderLoader reads configuration from an io.Reader.
type ReaderLoader interface {
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is the file access the loaders need. Tests substitute
// fstest.MapFS through FSAdapter.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FSAdapter adapts an fs.FS to FileSystem.
type FSAdapter struct {
	FS fs.FS
}

// ReadFile reads the entire file at path.
func (a FSAdapter) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(a.FS, path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}
