package plugin

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// entryPoints are tried in order for plugin directories without a manifest.
var entryPoints = []string{"init.lua", "plugin.lua"}

// PluginInfo describes a plugin found on disk. Error is set when the
// candidate looked like a plugin but cannot be loaded.
type PluginInfo struct {
	Name     string
	Path     string
	Manifest *Manifest
	Error    error
}

// Loader finds plugins in an ordered list of directories. A plugin in an
// earlier directory shadows one of the same name in a later directory.
type Loader struct {
	paths []string

	mu    sync.Mutex
	found map[string]*PluginInfo
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths replaces the search paths.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) { l.paths = paths }
}

// NewLoader returns a loader searching DefaultPluginPaths unless WithPaths
// is given.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{paths: DefaultPluginPaths(), found: make(map[string]*PluginInfo)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultPluginPaths returns the per-user plugin directory followed by the
// .folio/plugins directory of the working directory.
func DefaultPluginPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "folio", "plugins"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".folio", "plugins"))
	}
	return paths
}

func (l *Loader) Paths() []string { return slices.Clone(l.paths) }

func (l *Loader) AddPath(path string) { l.paths = append(l.paths, path) }

// Discover scans every search path and returns the plugins found, broken
// ones included, sorted by name. Missing directories are not an error.
func (l *Loader) Discover() ([]*PluginInfo, error) {
	found := make(map[string]*PluginInfo)
	var errs []error
	for _, base := range l.paths {
		entries, err := os.ReadDir(base)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			info, ok := resolve(filepath.Join(base, e.Name()), e.IsDir())
			if !ok {
				continue
			}
			if _, shadowed := found[info.Name]; !shadowed {
				found[info.Name] = info
			}
		}
	}

	l.mu.Lock()
	l.found = found
	l.mu.Unlock()

	return slices.SortedFunc(maps.Values(found), func(a, b *PluginInfo) int {
		return cmp.Compare(a.Name, b.Name)
	}), errors.Join(errs...)
}

// FindPlugin returns the first loadable plugin called name, looking for a
// directory and then a .lua file in each search path.
func (l *Loader) FindPlugin(name string) (*PluginInfo, error) {
	if info, ok := l.Get(name); ok && info.Error == nil {
		return info, nil
	}
	for _, base := range l.paths {
		for _, candidate := range []string{filepath.Join(base, name), filepath.Join(base, name+".lua")} {
			st, err := os.Stat(candidate)
			if err != nil {
				continue
			}
			if info, ok := resolve(candidate, st.IsDir()); ok && info.Error == nil {
				l.remember(info)
				return info, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
}

// Inspect describes the plugin at path, a .lua file or a plugin directory.
func (l *Loader) Inspect(path string) (*PluginInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, path)
	}
	info, ok := resolve(path, st.IsDir())
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a .lua file or plugin directory", ErrPluginNotFound, path)
	}
	if info.Error != nil {
		return nil, fmt.Errorf("%s: %w", path, info.Error)
	}
	return info, nil
}

// Get returns a plugin seen by the last Discover or FindPlugin.
func (l *Loader) Get(name string) (*PluginInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.found[name]
	return info, ok
}

// Names returns the sorted names of the known plugins.
func (l *Loader) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Sorted(maps.Keys(l.found))
}

// Broken returns the known plugins that cannot be loaded, by name.
func (l *Loader) Broken() []*PluginInfo {
	var out []*PluginInfo
	for _, name := range l.Names() {
		if info, _ := l.Get(name); info.Error != nil {
			out = append(out, info)
		}
	}
	return out
}

func (l *Loader) remember(info *PluginInfo) {
	l.mu.Lock()
	l.found[info.Name] = info
	l.mu.Unlock()
}

// resolve turns a directory entry into a plugin description. ok is false
// for entries that are not plugin candidates at all.
func resolve(path string, isDir bool) (info *PluginInfo, ok bool) {
	if !isDir {
		if filepath.Ext(path) != ".lua" {
			return nil, false
		}
		name := strings.TrimSuffix(filepath.Base(path), ".lua")
		m := NewManifestMinimal(name, filepath.Dir(path))
		m.Main = filepath.Base(path)
		return &PluginInfo{Name: name, Path: m.Path(), Manifest: m}, true
	}

	info = &PluginInfo{Name: filepath.Base(path), Path: path}
	manifestPath := filepath.Join(path, ManifestFile)
	if _, err := os.Stat(manifestPath); err == nil {
		m, err := LoadManifest(manifestPath)
		if err != nil {
			info.Error = fmt.Errorf("invalid manifest: %w", err)
			return info, true
		}
		info.Name, info.Manifest = m.Name, m
		return info, true
	}
	for _, main := range entryPoints {
		if _, err := os.Stat(filepath.Join(path, main)); err == nil {
			info.Manifest = NewManifestMinimal(info.Name, path)
			info.Manifest.Main = main
			return info, true
		}
	}
	info.Error = ErrNoEntryPoint
	return info, true
}
