package format

import "errors"

// Format command errors.
var (
	// ErrUnknownFormat indicates a text format name that does not exist.
	ErrUnknownFormat = errors.New("format: unknown text format")

	// ErrUnknownAlign indicates an invalid block alignment.
	ErrUnknownAlign = errors.New("format: unknown alignment")

	// errUnchanged aborts an update that would not change the document.
	errUnchanged = errors.New("format: nothing to change")
)
