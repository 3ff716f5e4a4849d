package style

import "errors"

// Errors returned by theme loading.
var (
	// ErrInvalidTheme indicates a theme document that cannot be flattened
	// into slot/class pairs.
	ErrInvalidTheme = errors.New("style: invalid theme")

	// ErrInvalidSlot indicates an empty or malformed slot name.
	ErrInvalidSlot = errors.New("style: invalid slot")
)
