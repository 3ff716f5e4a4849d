package editor

import "errors"

// Errors returned by editor operations.
var (
	// ErrReentrantUpdate indicates Update was called while an update of the
	// same editor was running. Use Defer to schedule a follow-up instead.
	ErrReentrantUpdate = errors.New("editor: re-entrant update")

	// ErrClosed indicates the editor has been released.
	ErrClosed = errors.New("editor: closed")

	// ErrTxnDone indicates a transaction handle was used after Update returned.
	ErrTxnDone = errors.New("editor: transaction finished")

	// ErrNodeNotFound indicates a key that does not resolve in the tree.
	ErrNodeNotFound = errors.New("editor: node not found")

	// ErrNotElement indicates an attach under a node that cannot hold children.
	ErrNotElement = errors.New("editor: parent is not an element")

	// ErrRootOperation indicates an operation that would move or remove the root.
	ErrRootOperation = errors.New("editor: invalid operation on root")

	// ErrCycle indicates a node would become its own ancestor.
	ErrCycle = errors.New("editor: attach would create a cycle")

	// ErrNotAllowed indicates the editor's attach policy rejected a child.
	ErrNotAllowed = errors.New("editor: node not allowed here")

	// ErrTransformLoop indicates transforms kept dirtying nodes past the limit.
	ErrTransformLoop = errors.New("editor: transforms did not settle")

	// ErrUnknownType indicates a type tag with no registered class.
	ErrUnknownType = errors.New("editor: unknown node type")

	// ErrInvalidClass indicates a class registration without a type or importer.
	ErrInvalidClass = errors.New("editor: invalid node class")
)
