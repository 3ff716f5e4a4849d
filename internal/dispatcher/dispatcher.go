package dispatcher

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/folio/internal/dispatcher/execctx"
	"github.com/dshills/folio/internal/dispatcher/handler"
	"github.com/dshills/folio/internal/dispatcher/hook"
	"github.com/dshills/folio/internal/engine/editor"
)

// Dispatcher routes commands to handlers and coordinates execution.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry
	commands map[string]declaration

	editor *editor.Editor
	logger *zap.Logger

	config  Config
	metrics *Metrics
	hooks   *hook.Manager

	depth atomic.Int32
}

// New creates a new dispatcher with the given configuration.
func New(config Config) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		commands: make(map[string]declaration),
		logger:   zap.NewNop(),
		config:   config,
		hooks:    hook.NewManager(),
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

// SetEditor sets the editor commands operate on.
func (d *Dispatcher) SetEditor(ed *editor.Editor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editor = ed
}

// Editor returns the editor commands operate on.
func (d *Dispatcher) Editor() *editor.Editor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.editor
}

// SetLogger sets the logger handed to handlers.
func (d *Dispatcher) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l.With(zap.String("component", "dispatcher"))
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Metrics returns the metrics collector, or nil when metrics are disabled.
func (d *Dispatcher) Metrics() *Metrics { return d.metrics }

// HookManager returns the hook manager.
func (d *Dispatcher) HookManager() *hook.Manager { return d.hooks }

// RegisterHook registers a pre and/or post dispatch hook.
func (d *Dispatcher) RegisterHook(h hook.Hook) {
	d.hooks.Register(h)
}

// UnregisterHook removes a hook by name.
func (d *Dispatcher) UnregisterHook(name string) bool {
	return d.hooks.Unregister(name)
}

func (d *Dispatcher) declare(name string, decl declaration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.commands[name]; ok {
		if prev.payload != decl.payload {
			return fmt.Errorf("%w: %s is %v, not %v", ErrCommandConflict, name, prev.payload, decl.payload)
		}
		return nil
	}
	d.commands[name] = decl
	return nil
}

// HasCommand reports whether a command with this name was declared.
func (d *Dispatcher) HasCommand(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.commands[name]
	return ok
}

// Commands returns the declared command names in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DispatchNamed dispatches a declared command by name. The payload is
// decoded into the command's payload type; it may already have that type,
// be JSON text, or be a generic value such as a map.
func (d *Dispatcher) DispatchNamed(name string, payload any) (handler.Result, error) {
	d.mu.RLock()
	decl, ok := d.commands[name]
	d.mu.RUnlock()
	if !ok {
		return handler.Unhandled(), fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	p, err := decl.decode(payload)
	if err != nil {
		return handler.Unhandled(), fmt.Errorf("%s: %w", name, err)
	}
	return d.dispatch(handler.Command{Name: name, Payload: p}), nil
}

// dispatch is the core dispatch logic.
func (d *Dispatcher) dispatch(cmd handler.Command) handler.Result {
	startTime := time.Now()

	depth := int(d.depth.Add(1)) - 1
	defer d.depth.Add(-1)

	d.mu.RLock()
	ed, logger := d.editor, d.logger
	d.mu.RUnlock()

	// The deferred queue of the editor runs once the outermost command is
	// done, so follow-ups see every change the command made.
	if depth == 0 && ed != nil {
		defer ed.Flush()
	}

	ctx := execctx.New(ed).WithLogger(logger).WithCommand(cmd.Name).WithDepth(depth)

	if d.config.MaxDepth > 0 && depth >= d.config.MaxDepth {
		return d.finish(cmd, handler.Errorf("%w: %s at depth %d", ErrMaxDepth, cmd.Name, depth), startTime)
	}

	if by, ok := d.hooks.RunPreDispatch(&cmd, ctx); !ok {
		return d.finish(cmd, handler.CancelledWithMessage("cancelled by "+by), startTime)
	}

	result := handler.Unhandled()
	for _, h := range d.registry.GetAll(cmd.Name) {
		var r handler.Result
		if d.config.RecoverFromPanic {
			r = d.executeWithRecovery(h, cmd, ctx)
		} else {
			r = h.Handle(cmd, ctx)
		}
		if r.Handled() {
			result = r
			break
		}
	}
	result.Command = cmd.Name

	d.hooks.RunPostDispatch(&cmd, ctx, &result)
	return d.finish(cmd, result, startTime)
}

func (d *Dispatcher) finish(cmd handler.Command, result handler.Result, start time.Time) handler.Result {
	result.Command = cmd.Name
	if d.metrics != nil {
		d.metrics.RecordDispatch(cmd.Name, time.Since(start), result.Status)
	}
	return result
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, cmd handler.Command, ctx *execctx.ExecutionContext) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			ctx.Logger.Error("handler panic",
				zap.Any("panic", r),
				zap.ByteString("stack", stack[:n]),
			)
			result = handler.Errorf("%w for %s: %v", ErrPanic, cmd.Name, r)

			if d.metrics != nil {
				d.metrics.RecordPanic(cmd.Name)
			}
		}
	}()

	return h.Handle(cmd, ctx)
}
