package app

import (
	"errors"
	"fmt"
)

var (
	ErrClosed           = errors.New("app: closed")
	ErrNoActiveDocument = errors.New("app: no active document")
	ErrDocumentNotFound = errors.New("app: document is not open")
	// ErrNoFilePath is returned when saving a scratch document in place.
	ErrNoFilePath     = errors.New("app: scratch document has no path")
	ErrUnsavedChanges = errors.New("app: document has unsaved changes")
)

// InitError reports the bootstrap step that failed, e.g. "config" or
// "theme".
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "app: starting " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// FileError wraps a failed open, export or save of a document file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
