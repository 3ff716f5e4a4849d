package style

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dshills/folio/internal/engine/node"
)

// Theme maps slot names to class strings. It is safe for concurrent use.
type Theme struct {
	mu      sync.RWMutex
	name    string
	classes map[string]string
}

// NewTheme returns the built-in default theme.
func NewTheme() *Theme {
	t := &Theme{name: "default", classes: make(map[string]string)}
	for slot, class := range defaultClasses {
		t.classes[slot] = class
	}
	return t
}

// NewEmptyTheme returns a theme without any slots.
func NewEmptyTheme(name string) *Theme {
	return &Theme{name: name, classes: make(map[string]string)}
}

var defaultClasses = map[string]string{
	"root":           "folio-root",
	"paragraph":      "folio-paragraph",
	"heading.h1":     "folio-h1",
	"heading.h2":     "folio-h2",
	"heading.h3":     "folio-h3",
	"heading.h4":     "folio-h4",
	"heading.h5":     "folio-h5",
	"heading.h6":     "folio-h6",
	"quote":          "folio-quote",
	"divider":        "folio-divider",
	"hyperlink":      "folio-link",
	"link":           "folio-link",
	"mention":        "folio-mention",
	"columns":        "folio-columns",
	"columns.column": "folio-column",
	"card":           "folio-card",
	"cards":          "folio-cards",
	"smart-section":  "folio-section",

	"text.bold":          "folio-bold",
	"text.italic":        "folio-italic",
	"text.underline":     "folio-underline",
	"text.strikethrough": "folio-strike",
	"text.code":          "folio-code",
	"text.subscript":     "folio-sub",
	"text.superscript":   "folio-sup",
	"text.highlight":     "folio-highlight",

	"card.corner.none": "folio-corner-none",
	"card.corner.sm":   "folio-corner-sm",
	"card.corner.md":   "folio-corner-md",
	"card.corner.lg":   "folio-corner-lg",

	"card.border.none":  "folio-border-none",
	"card.border.thin":  "folio-border-thin",
	"card.border.thick": "folio-border-thick",

	"card.background.none":    "folio-bg-none",
	"card.background.subtle":  "folio-bg-subtle",
	"card.background.accent":  "folio-bg-accent",
	"card.background.inverse": "folio-bg-inverse",

	"card.padding.inner.none": "folio-pad-in-none",
	"card.padding.inner.sm":   "folio-pad-in-sm",
	"card.padding.inner.md":   "folio-pad-in-md",
	"card.padding.inner.lg":   "folio-pad-in-lg",
	"card.padding.outer.none": "folio-pad-out-none",
	"card.padding.outer.sm":   "folio-pad-out-sm",
	"card.padding.outer.md":   "folio-pad-out-md",
	"card.padding.outer.lg":   "folio-pad-out-lg",
}

type themeFile struct {
	Name    string         `yaml:"name"`
	Extends string         `yaml:"extends"`
	Classes map[string]any `yaml:"classes"`
}

// Parse reads a YAML theme. A theme with "extends: default" starts from
// the built-in slots.
func Parse(data []byte) (*Theme, error) {
	var f themeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}

	var t *Theme
	switch f.Extends {
	case "":
		t = NewEmptyTheme(f.Name)
	case "default":
		t = NewTheme()
		t.name = f.Name
	default:
		return nil, fmt.Errorf("%w: unknown base theme %q", ErrInvalidTheme, f.Extends)
	}
	if err := flatten("", f.Classes, t.classes); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads a YAML theme from r.
func Load(r io.Reader) (*Theme, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a YAML theme from path.
func LoadFile(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}
	return t, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) error {
	for k, v := range in {
		slot := k
		if prefix != "" {
			slot = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[slot] = val
		case map[string]any:
			if err := flatten(slot, val, out); err != nil {
				return err
			}
		case nil:
			delete(out, slot)
		default:
			return fmt.Errorf("%w: slot %q has %T value", ErrInvalidTheme, slot, v)
		}
	}
	return nil
}

// Name returns the theme name.
func (t *Theme) Name() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.name
}

// Class returns the class for slot, or "" if the slot is not mapped.
func (t *Theme) Class(slot string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.classes[slot]
}

// Lookup returns the class for slot and whether it is mapped.
func (t *Theme) Lookup(slot string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.classes[slot]
	return c, ok
}

// Set maps slot to class. An empty class removes the slot.
func (t *Theme) Set(slot, class string) error {
	if slot == "" || strings.HasPrefix(slot, ".") || strings.HasSuffix(slot, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if class == "" {
		delete(t.classes, slot)
		return nil
	}
	t.classes[slot] = class
	return nil
}

// Merge copies every slot of o into t, overriding existing slots.
func (t *Theme) Merge(o *Theme) {
	if o == nil || o == t {
		return
	}
	o.mu.RLock()
	src := maps.Clone(o.classes)
	o.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	maps.Copy(t.classes, src)
}

// Slots returns the mapped slot names in sorted order.
func (t *Theme) Slots() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.classes))
}

// Clone returns an independent copy of t.
func (t *Theme) Clone() *Theme {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Theme{name: t.name, classes: maps.Clone(t.classes)}
}

// CardClasses returns the classes of the base card slot and every style
// field of s, skipping unmapped slots.
func (t *Theme) CardClasses(s CardStyle) []string {
	slots := []string{
		"card",
		"card.corner." + s.Corner,
		"card.border." + s.Border,
		"card.background." + s.Background,
		"card.padding.inner." + s.PaddingInner,
		"card.padding.outer." + s.PaddingOuter,
	}
	return t.classesFor(slots)
}

// NodeClass returns the class string for n: the type slot (headings use
// "heading.<tag>") and, for text, one "text.<format>" slot per format.
func (t *Theme) NodeClass(n node.Node) string {
	var slots []string
	switch v := n.(type) {
	case *node.Heading:
		slots = append(slots, "heading."+string(v.Tag()))
	case *node.Text:
		for _, f := range v.Format().Names() {
			slots = append(slots, "text."+f)
		}
	default:
		slots = append(slots, string(n.Type()))
	}
	if el, ok := n.(node.Element); ok && el.Align() != node.AlignNone {
		slots = append(slots, "align."+string(el.Align()))
	}
	return strings.Join(t.classesFor(slots), " ")
}

func (t *Theme) classesFor(slots []string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if c, ok := t.classes[s]; ok && c != "" {
			out = append(out, c)
		}
	}
	return out
}
