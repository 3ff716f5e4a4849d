package composite

import "errors"

// ErrNotComposite indicates a node that is not of the expected composite
// type.
var ErrNotComposite = errors.New("composite: node is not of the expected type")
