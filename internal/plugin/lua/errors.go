package lua

import "errors"

var (
	ErrStateClosed = errors.New("lua: state closed")
	// ErrExecutionTimeout is returned when a top-level call runs past the
	// state's execution timeout.
	ErrExecutionTimeout  = errors.New("lua: execution timeout")
	ErrNotFunction       = errors.New("lua: global is not a function")
	ErrUnknownCapability = errors.New("lua: unknown capability")
)
