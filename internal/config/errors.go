package config

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when a file named with WithFile is
	// missing. The default config file may be absent.
	ErrFileNotFound     = errors.New("config: file not found")
	ErrValidationFailed = errors.New("config: invalid settings")
	// ErrDecode wraps type mismatches between merged layers and Config,
	// e.g. a string where a number is expected.
	ErrDecode = errors.New("config: cannot decode settings")
)

// ValidationError is one rejected setting. Validate joins them.
type ValidationError struct {
	Path    string // dotted, e.g. "logging.level"
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Message, e.Value)
}

// Is makes every ValidationError match ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
