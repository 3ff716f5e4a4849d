package node

import "errors"

// Errors for node operations.
var (
	// ErrFrozen indicates a setter was called on a node that belongs to a
	// committed state. Obtain a writable copy inside a transaction instead.
	ErrFrozen = errors.New("node: mutation of frozen node")

	// ErrNotElement indicates an element-only operation on a non-element node.
	ErrNotElement = errors.New("node: not an element")
)
