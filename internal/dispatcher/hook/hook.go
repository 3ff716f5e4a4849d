package hook

import (
	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
)

// Hook is implemented by every dispatch hook. Names are unique within a
// Manager; registering a second hook under a name replaces the first.
type Hook interface {
	Name() string
	// Priority orders hooks: higher runs earlier before dispatch and
	// later after it. Built-in hooks use the 500..1000 range; plugin and
	// user hooks should stay below.
	Priority() int
}

// PreDispatchHook runs before the handler chain. It may rewrite the
// command payload or annotate the context; returning false cancels the
// dispatch with StatusCancelled.
type PreDispatchHook interface {
	Hook
	PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool
}

// PostDispatchHook runs after the handler chain and may replace the result.
type PostDispatchHook interface {
	Hook
	PostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result)
}

// PreFunc is the signature of a function used as a pre-dispatch hook.
type PreFunc func(cmd *handler.Command, ctx *execctx.ExecutionContext) bool

// PostFunc is the signature of a function used as a post-dispatch hook.
type PostFunc func(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result)

type named struct {
	name     string
	priority int
}

func (n named) Name() string  { return n.name }
func (n named) Priority() int { return n.priority }

type preFunc struct {
	named
	fn PreFunc
}

func (h preFunc) PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	return h.fn == nil || h.fn(cmd, ctx)
}

type postFunc struct {
	named
	fn PostFunc
}

func (h postFunc) PostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
	if h.fn != nil {
		h.fn(cmd, ctx, result)
	}
}

// Before returns a pre-dispatch hook that calls fn. A nil fn never cancels.
func Before(name string, priority int, fn PreFunc) PreDispatchHook {
	return preFunc{named{name, priority}, fn}
}

// After returns a post-dispatch hook that calls fn.
func After(name string, priority int, fn PostFunc) PostDispatchHook {
	return postFunc{named{name, priority}, fn}
}
