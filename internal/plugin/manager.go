package plugin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	plua "github.com/dshills/folio/internal/plugin/lua"
)

// MainFunction is the global a plugin defines to act on the document when
// run from the command line.
const MainFunction = "main"

// Manager manages the lifecycle of all plugins.
type Manager struct {
	mu sync.RWMutex

	loader *Loader
	env    Env
	logger *zap.Logger

	plugins   map[string]*Host
	loadOrder []string

	config ManagerConfig
}

// ManagerConfig configures the plugin manager.
type ManagerConfig struct {
	// PluginPaths are directories to search for plugins.
	PluginPaths []string

	// ExecutionTimeout bounds each top-level call into a plugin.
	ExecutionTimeout time.Duration

	// Disabled names plugins LoadAll skips.
	Disabled []string
}

// DefaultManagerConfig returns the default configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		PluginPaths:      DefaultPluginPaths(),
		ExecutionTimeout: plua.DefaultExecutionTimeout,
	}
}

// NewManager creates a plugin manager. Plugins reach the document through
// env.
func NewManager(config ManagerConfig, env Env) *Manager {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	return &Manager{
		loader:  NewLoader(WithPaths(config.PluginPaths...)),
		env:     env,
		logger:  env.Logger.With(zap.String("component", "plugins")),
		plugins: make(map[string]*Host),
		config:  config,
	}
}

// Loader returns the plugin loader.
func (m *Manager) Loader() *Loader {
	return m.loader
}

// Discover searches the configured paths for plugins.
func (m *Manager) Discover() ([]*PluginInfo, error) {
	return m.loader.Discover()
}

// Load loads and activates a plugin found by name in the search paths.
func (m *Manager) Load(ctx context.Context, name string) (*Host, error) {
	info, err := m.loader.FindPlugin(name)
	if err != nil {
		return nil, err
	}
	return m.load(ctx, info)
}

// LoadPath loads and activates the plugin at path, a Lua file or a plugin
// directory.
func (m *Manager) LoadPath(ctx context.Context, path string) (*Host, error) {
	info, err := m.loader.Inspect(path)
	if err != nil {
		return nil, err
	}
	return m.load(ctx, info)
}

func (m *Manager) load(ctx context.Context, info *PluginInfo) (*Host, error) {
	name := info.Name
	m.mu.RLock()
	_, exists := m.plugins[name]
	m.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("plugin %q: %w", name, ErrAlreadyLoaded)
	}

	host, err := NewHost(info.Manifest, m.env, WithHostExecutionTimeout(m.config.ExecutionTimeout))
	if err != nil {
		return nil, err
	}
	if err := host.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load plugin %q: %w", name, err)
	}
	if err := host.Activate(ctx); err != nil {
		host.Unload(ctx)
		return nil, fmt.Errorf("failed to activate plugin %q: %w", name, err)
	}

	m.mu.Lock()
	if _, exists := m.plugins[name]; exists {
		m.mu.Unlock()
		host.Unload(ctx)
		return nil, fmt.Errorf("plugin %q: %w", name, ErrAlreadyLoaded)
	}
	m.plugins[name] = host
	m.loadOrder = append(m.loadOrder, name)
	m.mu.Unlock()

	m.logger.Info("plugin activated",
		zap.String("plugin", name),
		zap.String("version", info.Manifest.Version),
		zap.Strings("commands", host.Commands()),
	)
	return host, nil
}

// LoadAll loads every discovered plugin that is not disabled. Failures are
// collected; the remaining plugins still load.
func (m *Manager) LoadAll(ctx context.Context) error {
	plugins, err := m.loader.Discover()
	errs := []error{err}
	for _, info := range plugins {
		if slices.Contains(m.config.Disabled, info.Name) {
			m.logger.Debug("plugin disabled", zap.String("plugin", info.Name))
			continue
		}
		if info.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", info.Name, info.Error))
			continue
		}
		if _, err := m.load(ctx, info); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unload deactivates and unloads a plugin by name.
func (m *Manager) Unload(ctx context.Context, name string) error {
	m.mu.Lock()
	host, ok := m.plugins[name]
	if ok {
		delete(m.plugins, name)
		m.loadOrder = slices.DeleteFunc(m.loadOrder, func(n string) bool { return n == name })
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("plugin %q: %w", name, ErrNotLoaded)
	}
	if err := host.Unload(ctx); err != nil {
		return err
	}
	m.logger.Debug("plugin unloaded", zap.String("plugin", name))
	return nil
}

// UnloadAll unloads all plugins in reverse load order.
func (m *Manager) UnloadAll(ctx context.Context) error {
	m.mu.RLock()
	order := slices.Clone(m.loadOrder)
	m.mu.RUnlock()

	var errs []error
	for _, name := range slices.Backward(order) {
		if err := m.Unload(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunMain calls the main function of every loaded plugin that defines one,
// in load order, and returns the names of the plugins that ran.
func (m *Manager) RunMain(ctx context.Context) ([]string, error) {
	var ran []string
	var errs []error
	for _, host := range m.List() {
		if !host.HasFunction(MainFunction) {
			continue
		}
		if _, err := host.Call(ctx, MainFunction); err != nil {
			errs = append(errs, err)
			continue
		}
		ran = append(ran, host.Name())
	}
	return ran, errors.Join(errs...)
}

// Get returns a loaded plugin by name.
func (m *Manager) Get(name string) (*Host, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	host, ok := m.plugins[name]
	return host, ok
}

// List returns the loaded plugins in load order.
func (m *Manager) List() []*Host {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hosts := make([]*Host, 0, len(m.loadOrder))
	for _, name := range m.loadOrder {
		hosts = append(hosts, m.plugins[name])
	}
	return hosts
}

// Count returns the number of loaded plugins.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}
