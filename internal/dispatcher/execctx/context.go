// Package execctx provides the execution context for command handlers.
package execctx

import (
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/engine/editor"
)

// ExecutionContext provides context for command execution.
type ExecutionContext struct {
	// Editor is the editor commands operate on.
	Editor *editor.Editor

	// Logger is scoped to the dispatched command.
	Logger *zap.Logger

	// Command is the name of the command being dispatched.
	Command string

	// Depth is 0 for a top-level dispatch and grows for commands dispatched
	// from inside handlers.
	Depth int

	// Data holds handler-specific context data. Pre-dispatch hooks may use
	// it to pass values to handlers.
	Data map[string]interface{}
}

// New creates a new execution context for ed.
func New(ed *editor.Editor) *ExecutionContext {
	ctx := &ExecutionContext{
		Editor: ed,
		Logger: zap.NewNop(),
		Data:   make(map[string]interface{}),
	}
	if ed != nil {
		ctx.Logger = ed.Logger()
	}
	return ctx
}

// WithLogger returns the context with the logger set.
func (ctx *ExecutionContext) WithLogger(l *zap.Logger) *ExecutionContext {
	if l != nil {
		ctx.Logger = l
	}
	return ctx
}

// WithCommand returns the context bound to a command name.
func (ctx *ExecutionContext) WithCommand(name string) *ExecutionContext {
	ctx.Command = name
	ctx.Logger = ctx.Logger.With(zap.String("command", name))
	return ctx
}

// WithDepth returns the context with the dispatch depth set.
func (ctx *ExecutionContext) WithDepth(depth int) *ExecutionContext {
	ctx.Depth = depth
	return ctx
}

// IsTopLevel reports whether the command was dispatched from outside any
// handler.
func (ctx *ExecutionContext) IsTopLevel() bool {
	return ctx.Depth == 0
}

// Update runs fn in an update of the context's editor.
func (ctx *ExecutionContext) Update(fn func(tx *editor.Txn) error, opts ...editor.UpdateOption) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	opts = append(opts, editor.Tag(ctx.Command))
	return ctx.Editor.Update(fn, opts...)
}

// Selection returns the committed selection of the context's editor.
func (ctx *ExecutionContext) Selection() (editor.Selection, bool) {
	if ctx.Editor == nil {
		return editor.Selection{}, false
	}
	return ctx.Editor.State().Selection()
}

// HasSelection returns true if the editor has a selection.
func (ctx *ExecutionContext) HasSelection() bool {
	_, ok := ctx.Selection()
	return ok
}

// SetData sets a context data value.
func (ctx *ExecutionContext) SetData(key string, value interface{}) {
	if ctx.Data == nil {
		ctx.Data = make(map[string]interface{})
	}
	ctx.Data[key] = value
}

// GetData retrieves a context data value.
func (ctx *ExecutionContext) GetData(key string) (interface{}, bool) {
	if ctx.Data == nil {
		return nil, false
	}
	v, ok := ctx.Data[key]
	return v, ok
}

// GetDataString retrieves a string value from context data.
func (ctx *ExecutionContext) GetDataString(key string) string {
	if v, ok := ctx.GetData(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetDataBool retrieves a bool value from context data.
func (ctx *ExecutionContext) GetDataBool(key string) bool {
	if v, ok := ctx.GetData(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Validate checks that the context has an editor.
func (ctx *ExecutionContext) Validate() error {
	if ctx.Editor == nil {
		return ErrMissingEditor
	}
	return nil
}

// ValidateForSelection checks that the context has an editor with a
// selection.
func (ctx *ExecutionContext) ValidateForSelection() error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if !ctx.HasSelection() {
		return ErrMissingSelection
	}
	return nil
}
