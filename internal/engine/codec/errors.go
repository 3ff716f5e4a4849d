package codec

import "errors"

// Errors returned by export.
var (
	// ErrUnknownType indicates a node whose type has no registered class.
	ErrUnknownType = errors.New("codec: unknown node type")

	// ErrInvalidExport indicates a class exporter that did not produce a
	// JSON object.
	ErrInvalidExport = errors.New("codec: class export is not an object")
)
