package execctx

import "errors"

// Context validation errors.
var (
	// ErrMissingEditor indicates the editor is required but not set.
	ErrMissingEditor = errors.New("execution context: editor is required")

	// ErrMissingSelection indicates the command needs a selection.
	ErrMissingSelection = errors.New("execution context: selection is required")
)
