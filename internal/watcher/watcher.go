// Package watcher reports changes to individual files.
//
// Each watched file's directory is registered with fsnotify, so files that
// editors save by writing a temporary file and renaming it over the
// original keep producing events. Bursts of events for one file are
// coalesced into a single Event after a debounce delay.
package watcher

import (
	"errors"
	"os"
	"strings"
	"time"
)

var (
	ErrWatcherClosed   = errors.New("watcher: closed")
	ErrAlreadyWatching = errors.New("watcher: already watching")
	ErrNotWatching     = errors.New("watcher: not watching")
	ErrPathNotExist    = errors.New("watcher: no such file")
	// ErrIsDirectory is returned by Watch; only files can be watched.
	ErrIsDirectory = errors.New("watcher: path is a directory")
)

// Op is a bit set of file operations. A coalesced Event carries every
// operation seen during its debounce window.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
	{OpChmod, "CHMOD"},
}

// String joins the names of the operations in op with "|".
func (op Op) String() string {
	var parts []string
	for _, n := range opNames {
		if op.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a coalesced change to one watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string
	// Op holds every operation seen during the debounce window.
	Op Op
	// Timestamp is the time of the last underlying event.
	Timestamp time.Time
}

// Exists reports whether the file exists now. A file that was renamed
// over, as many editors save, still exists after a RENAME.
func (e Event) Exists() bool {
	_, err := os.Stat(e.Path)
	return err == nil
}
