package loader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestTOMLLoaderLoad(t *testing.T) {
	fsys := FSAdapter{FS: fstest.MapFS{
		"folio/config.toml": {Data: []byte(`
[logging]
level = "debug"
max_size_mb = 20
`)},
	}}

	config, err := NewTOMLLoaderWithFS(fsys, "folio/config.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v, _ := GetByPath(config, "logging.level"); v != "debug" {
		t.Errorf("logging.level = %v, want debug", v)
	}
	if v, _ := GetByPath(config, "logging.max_size_mb"); v != int64(20) {
		t.Errorf("logging.max_size_mb = %v (%T), want 20", v, v)
	}
}

func TestTOMLLoaderMissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(FSAdapter{FS: fstest.MapFS{}}, "missing.toml").Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoaderParseError(t *testing.T) {
	fsys := FSAdapter{FS: fstest.MapFS{
		"bad.toml": {Data: []byte("[logging\nlevel = 1\n")},
	}}
	_, err := NewTOMLLoaderWithFS(fsys, "bad.toml").Load()

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if pe.Path != "bad.toml" || pe.Line == 0 {
		t.Errorf("ParseError = %+v", pe)
	}
	if !strings.Contains(pe.Error(), "parse error in bad.toml at line") {
		t.Errorf("Error() = %q", pe.Error())
	}
}

func TestTOMLLoaderIncludes(t *testing.T) {
	fsys := FSAdapter{FS: fstest.MapFS{
		"conf/main.toml": {Data: []byte(`
include = ["base.toml", "extra.toml"]

[logging]
level = "warn"
`)},
		"conf/base.toml": {Data: []byte(`
[logging]
level = "debug"
file = "base.log"

[theme]
path = "base.yaml"
`)},
		"conf/extra.toml": {Data: []byte(`
[theme]
path = "extra.yaml"
`)},
	}}

	config, err := NewTOMLLoaderWithFS(fsys, "conf/main.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for path, want := range map[string]any{
		"logging.level": "warn",
		"logging.file":  "base.log",
		"theme.path":    "extra.yaml",
	} {
		if v, _ := GetByPath(config, path); v != want {
			t.Errorf("%s = %v, want %v", path, v, want)
		}
	}
	if _, ok := config[IncludeKey]; ok {
		t.Error("include key left in the merged result")
	}
}

func TestTOMLLoaderIncludeCycle(t *testing.T) {
	fsys := FSAdapter{FS: fstest.MapFS{
		"a.toml": {Data: []byte(`include = "b.toml"`)},
		"b.toml": {Data: []byte(`include = "a.toml"`)},
	}}
	_, err := NewTOMLLoaderWithFS(fsys, "a.toml").Load()
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("Load() error = %v, want ErrIncludeDepth", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader(`[editor]
max_transform_passes = 7`))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := GetByPath(config, "editor.max_transform_passes"); v != int64(7) {
		t.Errorf("editor.max_transform_passes = %v", v)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"logging": map[string]any{"level": "info", "file": "a.log"},
		"theme":   map[string]any{"path": "a.yaml"},
	}
	src := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"theme":   "flat",
	}
	got := DeepMerge(dst, src)

	if v, _ := GetByPath(got, "logging.level"); v != "debug" {
		t.Errorf("logging.level = %v", v)
	}
	if v, _ := GetByPath(got, "logging.file"); v != "a.log" {
		t.Errorf("logging.file = %v", v)
	}
	if got["theme"] != "flat" {
		t.Errorf("theme = %v, want the scalar to replace the map", got["theme"])
	}
}

func TestSetByPath(t *testing.T) {
	m := map[string]any{"a": "scalar"}
	SetByPath(m, "a.b.c", 1)
	if v, ok := GetByPath(m, "a.b.c"); !ok || v != 1 {
		t.Errorf("a.b.c = %v, %v", v, ok)
	}
	if _, ok := GetByPath(m, "a.x"); ok {
		t.Error("GetByPath found a missing key")
	}
}
