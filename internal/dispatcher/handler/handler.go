// Package handler defines commands, handlers and the results they return.
package handler

import "github.com/dshills/folio/internal/dispatcher/execctx"

// Command is one dispatch of a named command. Payload holds the value of
// the type declared for the command.
type Command struct {
	Name    string
	Payload any
}

// Handler is one link of a command's handler chain. Chains run from the
// highest priority down; a handler returns Pass to let the next one run.
type Handler interface {
	Handle(cmd Command, ctx *execctx.ExecutionContext) Result
	Priority() int
}

// Func is the function form of a handler.
type Func func(cmd Command, ctx *execctx.ExecutionContext) Result

// HandlerFunc adapts a Func to Handler.
type HandlerFunc struct {
	fn   Func
	prio int
}

// NewHandlerFunc returns fn as a handler of priority 0.
func NewHandlerFunc(fn Func) *HandlerFunc {
	return &HandlerFunc{fn: fn}
}

func NewHandlerFuncWithPriority(fn Func, priority int) *HandlerFunc {
	return &HandlerFunc{fn: fn, prio: priority}
}

// Handle calls the function. A nil function yields an error result.
func (f *HandlerFunc) Handle(cmd Command, ctx *execctx.ExecutionContext) Result {
	if f.fn == nil {
		return Errorf("handler: nil function for %s", cmd.Name)
	}
	return f.fn(cmd, ctx)
}

func (f *HandlerFunc) Priority() int { return f.prio }
