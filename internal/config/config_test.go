package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/folio/internal/config/loader"
)

type staticEnv map[string]any

func (e staticEnv) Load() (map[string]any, error) { return e, nil }

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", c.Logging.Level)
	}
	if c.Plugins.Timeout.Std() != 5*time.Second {
		t.Errorf("Plugins.Timeout = %v", c.Plugins.Timeout.Std())
	}
	if !c.DispatcherConfig().RecoverFromPanic {
		t.Error("panic recovery should default on")
	}
}

func TestLoadLayers(t *testing.T) {
	fsys := loader.FSAdapter{FS: fstest.MapFS{
		"config.toml": {Data: []byte(`
[logging]
level = "debug"
max_backups = 9

[plugins]
timeout = "250ms"
disabled = ["noisy"]
`)},
	}}
	env := staticEnv{
		"logging": map[string]any{"level": "warn"},
		"plugins": map[string]any{"paths": "/a" + string(os.PathListSeparator) + "/b"},
	}

	c, err := Load(
		WithFS(fsys),
		WithFile("config.toml"),
		WithEnv(env),
		WithOverride("dispatcher.enable_metrics", true),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want the environment to win", c.Logging.Level)
	}
	if c.Logging.MaxBackups != 9 {
		t.Errorf("Logging.MaxBackups = %d", c.Logging.MaxBackups)
	}
	if c.Logging.MaxSizeMB != 10 {
		t.Errorf("Logging.MaxSizeMB = %d, want the default kept", c.Logging.MaxSizeMB)
	}
	if c.Plugins.Timeout.Std() != 250*time.Millisecond {
		t.Errorf("Plugins.Timeout = %v", c.Plugins.Timeout.Std())
	}
	if !reflect.DeepEqual(c.Plugins.Paths, []string{"/a", "/b"}) {
		t.Errorf("Plugins.Paths = %v", c.Plugins.Paths)
	}
	if c.PluginEnabled("noisy") || !c.PluginEnabled("other") {
		t.Error("PluginEnabled() ignored the disabled list")
	}
	if !c.Dispatcher.EnableMetrics {
		t.Error("override not applied")
	}
	want := []string{"default", "config.toml", "environment", "overrides"}
	if got := c.Sources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sources() = %v, want %v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fsys := loader.FSAdapter{FS: fstest.MapFS{}}

	if _, err := Load(WithFS(fsys), WithFile("nope.toml"), WithEnv(nil)); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("explicit missing file: error = %v, want ErrFileNotFound", err)
	}

	// The implicit default path may be absent.
	c, err := Load(WithFS(fsys), WithEnv(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Sources(); len(got) != 1 {
		t.Errorf("Sources() = %v", got)
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("[theme]\npath = \"$FOLIO_TEST_THEMES/x.yaml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOLIO_TEST_THEMES", "/themes")

	c, err := Load(WithFile(path), WithEnv(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Theme.Path != "/themes/x.yaml" {
		t.Errorf("Theme.Path = %q", c.Theme.Path)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("FOLIO_LOG_LEVEL", "error")
	t.Setenv("FOLIO_EDITOR_MAX_TRANSFORM_PASSES", "3")

	c, err := Load(WithFS(loader.FSAdapter{FS: fstest.MapFS{}}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Logging.Level != "error" || c.Editor.MaxTransformPasses != 3 {
		t.Errorf("got level %q passes %d", c.Logging.Level, c.Editor.MaxTransformPasses)
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Logging.Level = "loud"
	c.Editor.MaxTransformPasses = 0
	c.Plugins.Timeout = 0
	c.Plugins.Paths = []string{" "}
	c.Dispatcher.Deny = []string{"blocks.*", ""}

	err := c.Validate()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Validate() = %v, want ErrValidationFailed", err)
	}
	for _, path := range []string{"logging.level", "editor.max_transform_passes", "plugins.timeout", "plugins.paths[0]", "dispatcher.deny[1]"} {
		if !strings.Contains(err.Error(), path) {
			t.Errorf("Validate() did not report %s: %v", path, err)
		}
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Path != "logging.level" {
		t.Errorf("first ValidationError = %+v", ve)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(WithEnv(staticEnv{"logging": map[string]any{"level": "chatty"}}), WithFS(loader.FSAdapter{FS: fstest.MapFS{}}))
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoadKeepsDenyPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[dispatcher]\ndeny = [\"~/x\", \"format.*\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(WithFile(path), WithEnv(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []string{"~/x", "format.*"}; !reflect.DeepEqual(c.Dispatcher.Deny, want) {
		t.Errorf("Dispatcher.Deny = %q, want %q", c.Dispatcher.Deny, want)
	}

	if err := os.WriteFile(path, []byte("[dispatcher]\ndeny = [\"\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(WithFile(path), WithEnv(nil)); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Load() with empty deny pattern = %v, want ErrValidationFailed", err)
	}
}

func TestParseAndMarshal(t *testing.T) {
	c, err := Parse([]byte(`
[editor]
max_transform_passes = 12

[plugins]
timeout = "1m"
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Editor.MaxTransformPasses != 12 || c.Plugins.Timeout.Std() != time.Minute {
		t.Errorf("Parse() = %+v", c)
	}

	out, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v\n%s", err, out)
	}
	if again.Editor != c.Editor || again.Plugins.Timeout != c.Plugins.Timeout {
		t.Errorf("round trip changed settings:\n%s", out)
	}
}

func TestParseBadDuration(t *testing.T) {
	if _, err := Parse([]byte("[plugins]\ntimeout = \"soon\"\n")); !errors.Is(err, ErrDecode) {
		t.Errorf("Parse() error = %v, want ErrDecode", err)
	}
}
