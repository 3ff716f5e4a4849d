package plugin

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/engine/editor"
	plua "github.com/dshills/folio/internal/plugin/lua"
)

// Env is what a plugin can reach through the folio Lua module.
type Env struct {
	Dispatcher *dispatcher.Dispatcher
	Logger     *zap.Logger

	// Text renders a document as plain text. Nil falls back to the text
	// content of the root.
	Text func(st *editor.State) string
}

// Host manages a single plugin's Lua state and lifecycle.
type Host struct {
	mu sync.RWMutex

	name     string
	manifest *Manifest
	env      Env
	logger   *zap.Logger

	state  *plua.State
	status Status
	err    error

	executionTimeout time.Duration

	// handlers registered by the plugin, removed on unload
	resMu      sync.Mutex
	commands   []string
	unregister []func()
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostExecutionTimeout sets the execution timeout for plugin calls.
func WithHostExecutionTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.executionTimeout = d
	}
}

// NewHost creates a new plugin host for the given manifest.
func NewHost(manifest *Manifest, env Env, opts ...HostOption) (*Host, error) {
	if manifest == nil {
		return nil, ErrNilManifest
	}
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}

	h := &Host{
		name:             manifest.Name,
		manifest:         manifest,
		env:              env,
		logger:           env.Logger.With(zap.String("plugin", manifest.Name)),
		status:           StatusUnloaded,
		executionTimeout: plua.DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Name returns the plugin name.
func (h *Host) Name() string {
	return h.name
}

// Manifest returns the plugin manifest.
func (h *Host) Manifest() *Manifest {
	return h.manifest
}

// Status returns the lifecycle status of the plugin.
func (h *Host) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Error returns the last load or activation error.
func (h *Host) Error() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Commands returns the commands the plugin registered handlers for.
func (h *Host) Commands() []string {
	h.resMu.Lock()
	defer h.resMu.Unlock()
	return slices.Clone(h.commands)
}

func (h *Host) fail(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusFailed
	h.err = err
	return err
}

// Load creates the Lua state, installs the folio module and runs the
// plugin's main file. Commands listed in the manifest are declared first.
func (h *Host) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	if h.status != StatusUnloaded {
		h.mu.Unlock()
		return ErrAlreadyLoaded
	}
	h.mu.Unlock()

	d := h.env.Dispatcher
	if d == nil {
		return h.fail(ErrNoDispatcher)
	}
	for _, name := range h.manifest.Commands {
		if err := declareCommand(d, name); err != nil {
			return h.fail(fmt.Errorf("declare %s: %w", name, err))
		}
	}

	state, err := plua.NewState(
		plua.WithExecutionTimeout(h.executionTimeout),
		plua.WithLogger(h.logger),
		plua.WithCapabilities(h.manifest.Capabilities...),
	)
	if err != nil {
		return h.fail(err)
	}
	newModule(h, state).install()

	if err := state.DoFile(h.manifest.MainPath()); err != nil {
		h.release()
		state.Close()
		return h.fail(fmt.Errorf("failed to load plugin: %w", err))
	}

	h.mu.Lock()
	h.state = state
	h.status = StatusLoaded
	h.err = nil
	h.mu.Unlock()

	h.logger.Debug("plugin loaded", zap.String("main", h.manifest.MainPath()))
	return nil
}

// Activate calls setup(config) and activate() when the plugin defines
// them.
func (h *Host) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	state, ps := h.state, h.status
	h.mu.RUnlock()
	if ps != StatusLoaded {
		return ErrNotLoaded
	}

	if state.HasFunction("setup") {
		cfg := state.Bridge().ToLuaValue(h.manifest.Config)
		if h.manifest.Config == nil {
			cfg = state.LuaState().NewTable()
		}
		if _, err := state.Call("setup", cfg); err != nil {
			return h.fail(fmt.Errorf("setup: %w", err))
		}
	}
	if state.HasFunction("activate") {
		if _, err := state.Call("activate"); err != nil {
			return h.fail(fmt.Errorf("activate: %w", err))
		}
	}

	h.mu.Lock()
	h.status = StatusActive
	h.mu.Unlock()
	return nil
}

// Call calls a global Lua function of the plugin with Go arguments and
// returns its results as Go values.
func (h *Host) Call(ctx context.Context, fn string, args ...any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	state, ps := h.state, h.status
	h.mu.RUnlock()
	if !ps.Callable() {
		return nil, ErrNotLoaded
	}

	b := state.Bridge()
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = b.ToLuaValue(a)
	}
	res, err := state.Call(fn, largs...)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %s: %w", h.name, fn, err)
	}
	out := make([]any, len(res))
	for i, v := range res {
		out[i] = b.ToGoValue(v)
	}
	return out, nil
}

// HasFunction reports whether the plugin defines the global function.
func (h *Host) HasFunction(name string) bool {
	h.mu.RLock()
	state := h.state
	h.mu.RUnlock()
	return state != nil && state.HasFunction(name)
}

// Unload calls deactivate() on an active plugin, removes its handlers and
// closes its Lua state.
func (h *Host) Unload(ctx context.Context) error {
	h.mu.Lock()
	state, ps := h.state, h.status
	h.state = nil
	h.status = StatusUnloaded
	h.err = nil
	h.mu.Unlock()

	if ps == StatusActive && state.HasFunction("deactivate") {
		if _, err := state.Call("deactivate"); err != nil {
			h.logger.Warn("plugin deactivate failed", zap.Error(err))
		}
	}
	h.release()
	if state != nil {
		state.Close()
	}
	return nil
}

// track records a handler the plugin registered.
func (h *Host) track(command string, unregister func()) {
	h.resMu.Lock()
	defer h.resMu.Unlock()
	if !slices.Contains(h.commands, command) {
		h.commands = append(h.commands, command)
	}
	h.unregister = append(h.unregister, unregister)
}

// release removes every handler the plugin registered.
func (h *Host) release() {
	h.resMu.Lock()
	fns := h.unregister
	h.unregister, h.commands = nil, nil
	h.resMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
