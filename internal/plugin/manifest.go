package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/pelletier/go-toml/v2"

	plua "github.com/dshills/folio/internal/plugin/lua"
)

// ManifestFile is the manifest name inside a plugin directory.
const ManifestFile = "plugin.toml"

// Manifest is the plugin.toml of a plugin directory. Single-file plugins
// get a synthesized one from NewManifestMinimal.
type Manifest struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
	Author      string `toml:"author"`

	// Main is the entry file, relative to the plugin directory.
	Main string `toml:"main"`

	Capabilities []plua.Capability `toml:"capabilities"`

	// Commands are declared before the entry point runs, so other plugins
	// can dispatch them by name whatever the load order.
	Commands []string `toml:"commands"`

	// Config is passed to setup(config).
	Config map[string]any `toml:"config"`

	path string
}

var (
	ErrMissingName      = errors.New("manifest: name is required")
	ErrInvalidName      = errors.New("manifest: name must be lowercase letters, digits and inner hyphens")
	ErrInvalidVersion   = errors.New("manifest: version is not semver")
	ErrInvalidMain      = errors.New("manifest: main must be a .lua file inside the plugin")
	ErrInvalidCommand   = errors.New("manifest: invalid command name")
	ErrDuplicateCommand = errors.New("manifest: duplicate command")
)

var (
	namePattern    = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)
	semverPattern  = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
	commandPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.:-]*$`)
)

// LoadManifest reads and validates the manifest at path. Unknown keys are
// rejected so that misspelled settings do not pass silently.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("manifest %s: unknown keys:\n%s", path, strict.String())
		}
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.path = filepath.Dir(path)
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// NewManifestMinimal returns the manifest of a plugin without plugin.toml.
func NewManifestMinimal(name, path string) *Manifest {
	m := &Manifest{Name: name, path: path}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Main == "" {
		m.Main = entryPoints[0]
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
}

// Validate reports every problem of the manifest, joined.
func (m *Manifest) Validate() error {
	var errs []error
	switch {
	case m.Name == "":
		errs = append(errs, ErrMissingName)
	case !namePattern.MatchString(m.Name):
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidName, m.Name))
	}
	if !semverPattern.MatchString(m.Version) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidVersion, m.Version))
	}
	if filepath.Ext(m.Main) != ".lua" || !filepath.IsLocal(m.Main) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMain, m.Main))
	}
	for _, c := range m.Capabilities {
		if _, err := plua.ParseCapability(string(c)); err != nil {
			errs = append(errs, fmt.Errorf("manifest: %w", err))
		}
	}
	for i, name := range m.Commands {
		switch {
		case !commandPattern.MatchString(name):
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidCommand, name))
		case slices.Index(m.Commands, name) != i:
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateCommand, name))
		}
	}
	return errors.Join(errs...)
}

// Path returns the plugin directory.
func (m *Manifest) Path() string { return m.path }

func (m *Manifest) MainPath() string { return filepath.Join(m.path, m.Main) }

func (m *Manifest) HasCapability(c plua.Capability) bool {
	return slices.Contains(m.Capabilities, c)
}

func (m *Manifest) String() string { return m.Name + " v" + m.Version }
