package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrUnknownCommand indicates a name-based dispatch of an undeclared command.
	ErrUnknownCommand = errors.New("dispatcher: unknown command")

	// ErrInvalidPayload indicates a payload that does not fit the command.
	ErrInvalidPayload = errors.New("dispatcher: invalid payload")

	// ErrCommandConflict indicates a command name declared with two payload types.
	ErrCommandConflict = errors.New("dispatcher: command declared with another payload type")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrMaxDepth indicates handlers dispatched commands too deeply.
	ErrMaxDepth = errors.New("dispatcher: maximum dispatch depth exceeded")
)
