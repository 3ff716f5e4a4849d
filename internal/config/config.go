package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/folio/internal/config/loader"
	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/engine/editor"
)

const (
	// AppName names the configuration directory.
	AppName = "folio"

	// FileName is the default configuration file name.
	FileName = "config.toml"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "FOLIO_"
)

// Config holds every folio setting.
type Config struct {
	Logging    LoggingConfig    `toml:"logging"`
	Theme      ThemeConfig      `toml:"theme"`
	Editor     EditorConfig     `toml:"editor"`
	Dispatcher DispatcherConfig `toml:"dispatcher"`
	Plugins    PluginsConfig    `toml:"plugins"`

	sources []string
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File, when set, receives JSON logs through a rotating writer.
	File string `toml:"file"`
	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups"`
	// MaxAgeDays removes rotated files older than this. Zero keeps them.
	MaxAgeDays int `toml:"max_age_days"`
	// Compress gzips rotated files.
	Compress bool `toml:"compress"`
}

// ThemeConfig locates the style theme.
type ThemeConfig struct {
	// Path is a YAML theme merged over the built-in one.
	Path string `toml:"path"`
}

// EditorConfig configures new editors.
type EditorConfig struct {
	MaxTransformPasses int `toml:"max_transform_passes"`
}

// DispatcherConfig mirrors dispatcher.Config.
type DispatcherConfig struct {
	RecoverFromPanic bool `toml:"recover_from_panic"`
	EnableMetrics    bool `toml:"enable_metrics"`
	MaxDepth         int  `toml:"max_depth"`
	// Deny lists command name globs that are cancelled before any
	// handler runs, e.g. "plugin.*".
	Deny []string `toml:"deny"`
}

// PluginsConfig configures Lua plugin discovery and execution.
type PluginsConfig struct {
	// Paths are searched in order; the first plugin of a name wins.
	Paths []string `toml:"paths"`
	// Timeout bounds every call into a plugin.
	Timeout Duration `toml:"timeout"`
	// Disabled names plugins that are discovered but not loaded.
	Disabled []string `toml:"disabled"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in settings.
func Default() *Config {
	dc := dispatcher.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Editor: EditorConfig{
			MaxTransformPasses: editor.DefaultMaxTransformPasses,
		},
		Dispatcher: DispatcherConfig{
			RecoverFromPanic: dc.RecoverFromPanic,
			EnableMetrics:    dc.EnableMetrics,
			MaxDepth:         dc.MaxDepth,
		},
		Plugins: PluginsConfig{
			Timeout: Duration(5 * time.Second),
		},
		sources: []string{"default"},
	}
}

// DefaultPath returns the user configuration file path, or "" when the
// user configuration directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, FileName)
}

type loadOptions struct {
	path      string
	required  bool
	fs        loader.FileSystem
	env       loader.Loader
	overrides map[string]any
}

// Option configures Load.
type Option func(*loadOptions)

// WithFile loads path instead of DefaultPath. Unlike the default file, an
// explicit file must exist.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		if path != "" {
			o.path = path
			o.required = true
		}
	}
}

// WithFS reads config files from fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *loadOptions) { o.fs = fsys }
}

// WithEnv replaces the environment layer. Pass nil to skip it.
func WithEnv(l loader.Loader) Option {
	return func(o *loadOptions) { o.env = l }
}

// WithOverride sets a dotted path in the top layer.
func WithOverride(path string, value any) Option {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = map[string]any{}
		}
		loader.SetByPath(o.overrides, path, value)
	}
}

// Load merges defaults, the config file, the environment and overrides,
// then validates the result.
func Load(opts ...Option) (*Config, error) {
	o := loadOptions{
		path: DefaultPath(),
		fs:   loader.DefaultFS(),
		env:  loader.NewEnvLoader(EnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	sources := []string{"default"}

	if o.path != "" {
		data, err := loader.NewTOMLLoaderWithFS(o.fs, o.path).Load()
		if err != nil {
			return nil, err
		}
		if data == nil && o.required {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, o.path)
		}
		if data != nil {
			base = loader.DeepMerge(base, data)
			sources = append(sources, o.path)
		}
	}

	if o.env != nil {
		data, err := o.env.Load()
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			splitPathLists(data)
			base = loader.DeepMerge(base, data)
			sources = append(sources, "environment")
		}
	}

	if len(o.overrides) > 0 {
		base = loader.DeepMerge(base, o.overrides)
		sources = append(sources, "overrides")
	}

	cfg, err := fromMap(base)
	if err != nil {
		return nil, err
	}
	cfg.sources = sources
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults without consulting the
// environment.
func Parse(data []byte) (*Config, error) {
	layer, err := loader.NewTOMLLoader("").LoadFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	base, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	cfg, err := fromMap(loader.DeepMerge(base, layer))
	if err != nil {
		return nil, err
	}
	cfg.sources = []string{"default", "<reader>"}
	return cfg, cfg.Validate()
}

// Sources lists the layers that contributed, lowest first.
func (c *Config) Sources() []string {
	return append([]string(nil), c.sources...)
}

// Validate checks every setting and joins the problems found.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		invalid("logging.level", "unknown level", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		invalid("logging.max_size_mb", "must not be negative", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxBackups < 0 {
		invalid("logging.max_backups", "must not be negative", c.Logging.MaxBackups)
	}
	if c.Logging.MaxAgeDays < 0 {
		invalid("logging.max_age_days", "must not be negative", c.Logging.MaxAgeDays)
	}
	if c.Editor.MaxTransformPasses < 1 {
		invalid("editor.max_transform_passes", "must be at least 1", c.Editor.MaxTransformPasses)
	}
	if c.Dispatcher.MaxDepth < 0 {
		invalid("dispatcher.max_depth", "must not be negative", c.Dispatcher.MaxDepth)
	}
	if c.Plugins.Timeout <= 0 {
		invalid("plugins.timeout", "must be positive", c.Plugins.Timeout.Std())
	}
	for i, p := range c.Dispatcher.Deny {
		if strings.TrimSpace(p) == "" {
			invalid(fmt.Sprintf("dispatcher.deny[%d]", i), "must not be empty", p)
		}
	}
	for i, p := range c.Plugins.Paths {
		if strings.TrimSpace(p) == "" {
			invalid(fmt.Sprintf("plugins.paths[%d]", i), "must not be empty", p)
		}
	}
	return errors.Join(errs...)
}

// DispatcherConfig converts the dispatcher section.
func (c *Config) DispatcherConfig() dispatcher.Config {
	return dispatcher.Config{
		EnableMetrics:    c.Dispatcher.EnableMetrics,
		RecoverFromPanic: c.Dispatcher.RecoverFromPanic,
		MaxDepth:         c.Dispatcher.MaxDepth,
	}
}

// PluginEnabled reports whether a discovered plugin should load.
func (c *Config) PluginEnabled(name string) bool {
	for _, d := range c.Plugins.Disabled {
		if d == name {
			return false
		}
	}
	return true
}

// Marshal encodes the settings as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// expandPaths expands a leading ~ and environment references in file
// settings.
func (c *Config) expandPaths() {
	c.Logging.File = expandPath(c.Logging.File)
	c.Theme.Path = expandPath(c.Theme.Path)
	for i, p := range c.Plugins.Paths {
		c.Plugins.Paths[i] = expandPath(p)
	}
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// splitPathLists turns list settings given as a single environment string
// into string slices split on the OS list separator.
func splitPathLists(data map[string]any) {
	for _, path := range []string{"plugins.paths", "plugins.disabled", "dispatcher.deny"} {
		v, ok := loader.GetByPath(data, path)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			var parts []string
			for _, p := range filepath.SplitList(s) {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
			loader.SetByPath(data, path, parts)
		}
	}
}

// toMap converts cfg into the nested map form the layers merge in.
func toMap(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return m, nil
}

// fromMap decodes merged layers into a Config.
func fromMap(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg, nil
}
