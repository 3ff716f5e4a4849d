package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	plua "github.com/dshills/folio/internal/plugin/lua"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, `
name = "test-plugin"
version = "1.2.0"
description = "A test plugin"
main = "main.lua"
capabilities = ["filesystem.read"]
commands = ["wordCount", "plugin.reverse"]

[config]
verbose = true
limit = 3
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Name != "test-plugin" || m.Version != "1.2.0" {
		t.Errorf("identity = %s", m)
	}
	if m.MainPath() != filepath.Join(dir, "main.lua") {
		t.Errorf("MainPath() = %q", m.MainPath())
	}
	if !m.HasCapability(plua.CapabilityFileRead) || m.HasCapability(plua.CapabilityEnv) {
		t.Errorf("Capabilities = %v", m.Capabilities)
	}
	if len(m.Commands) != 2 || m.Commands[1] != "plugin.reverse" {
		t.Errorf("Commands = %v", m.Commands)
	}
	if m.Config["verbose"] != true {
		t.Errorf("Config = %v", m.Config)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFile)
	writeFile(t, path, `name = "minimal"`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Main != "init.lua" || m.Version != "0.0.0" {
		t.Errorf("defaults: main=%q version=%q", m.Main, m.Version)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	if _, err := LoadManifest("/nonexistent/plugin.toml"); err == nil {
		t.Error("LoadManifest() of missing file should fail")
	}

	path := filepath.Join(t.TempDir(), ManifestFile)
	writeFile(t, path, `name = `)
	if _, err := LoadManifest(path); err == nil {
		t.Error("LoadManifest() of invalid TOML should fail")
	}

	writeFile(t, path, "name = \"typo\"\ncomands = [\"x\"]\n")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "comands") {
		t.Errorf("LoadManifest() with unknown key error = %v", err)
	}
}

func TestManifestValidateJoinsErrors(t *testing.T) {
	err := (&Manifest{Name: "Bad", Version: "x", Main: "init.js"}).Validate()
	for _, want := range []error{ErrInvalidName, ErrInvalidVersion, ErrInvalidMain} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() error = %v, want it to include %v", err, want)
		}
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
		want error
	}{
		{"valid", Manifest{Name: "ok", Version: "1.0.0", Main: "init.lua"}, nil},
		{"missing name", Manifest{Version: "1.0.0", Main: "init.lua"}, ErrMissingName},
		{"bad name", Manifest{Name: "Bad_Name", Version: "1.0.0", Main: "init.lua"}, ErrInvalidName},
		{"bad version", Manifest{Name: "ok", Version: "1.0", Main: "init.lua"}, ErrInvalidVersion},
		{"bad main", Manifest{Name: "ok", Version: "1.0.0", Main: "init.js"}, ErrInvalidMain},
		{"bad capability", Manifest{Name: "ok", Version: "1.0.0", Main: "init.lua", Capabilities: []plua.Capability{"network"}}, plua.ErrUnknownCapability},
		{"bad command", Manifest{Name: "ok", Version: "1.0.0", Main: "init.lua", Commands: []string{"has space"}}, ErrInvalidCommand},
		{"duplicate command", Manifest{Name: "ok", Version: "1.0.0", Main: "init.lua", Commands: []string{"a", "a"}}, ErrDuplicateCommand},
		{"main outside plugin", Manifest{Name: "ok", Version: "1.0.0", Main: "../other.lua"}, ErrInvalidMain},
		{"trailing hyphen", Manifest{Name: "ok-", Version: "1.0.0", Main: "init.lua"}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}
