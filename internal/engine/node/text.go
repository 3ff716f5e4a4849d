package node

import (
	"strings"

	"github.com/rivo/uniseg"
)

// TextFormat is a bitmask of inline text formats.
type TextFormat uint32

// Inline text formats.
const (
	FormatBold TextFormat = 1 << iota
	FormatItalic
	FormatStrikethrough
	FormatUnderline
	FormatCode
	FormatSubscript
	FormatSuperscript
	FormatHighlight
)

var formatNames = []struct {
	name string
	f    TextFormat
}{
	{"bold", FormatBold},
	{"italic", FormatItalic},
	{"strikethrough", FormatStrikethrough},
	{"underline", FormatUnderline},
	{"code", FormatCode},
	{"subscript", FormatSubscript},
	{"superscript", FormatSuperscript},
	{"highlight", FormatHighlight},
}

// ParseTextFormat returns the format named s.
func ParseTextFormat(s string) (TextFormat, bool) {
	for _, fn := range formatNames {
		if fn.name == s {
			return fn.f, true
		}
	}
	return 0, false
}

// Has reports whether all bits of g are set in f.
func (f TextFormat) Has(g TextFormat) bool { return f&g == g }

// Toggle flips the bits of g. Subscript and superscript exclude each other.
func (f TextFormat) Toggle(g TextFormat) TextFormat {
	f ^= g
	if g == FormatSubscript && f.Has(FormatSubscript) {
		f &^= FormatSuperscript
	}
	if g == FormatSuperscript && f.Has(FormatSuperscript) {
		f &^= FormatSubscript
	}
	return f
}

// Names returns the names of the set formats in a stable order.
func (f TextFormat) Names() []string {
	var names []string
	for _, fn := range formatNames {
		if f.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return names
}

// String implements fmt.Stringer.
func (f TextFormat) String() string {
	return strings.Join(f.Names(), "|")
}

// Text is an inline run of formatted text.
type Text struct {
	Base
	text   string
	format TextFormat
	style  string
}

// NewText returns a text node.
func NewText(s string) *Text {
	return &Text{Base: NewBase(TypeText), text: s}
}

// Text returns the node's text.
func (t *Text) Text() string { return t.text }

// TextContent implements TextContenter.
func (t *Text) TextContent() string { return t.text }

// Format returns the inline format bitmask.
func (t *Text) Format() TextFormat { return t.format }

// Style returns the opaque inline style string.
func (t *Text) Style() string { return t.style }

// Len returns the number of grapheme clusters in the text.
func (t *Text) Len() int { return uniseg.GraphemeClusterCount(t.text) }

// SetText replaces the text.
func (t *Text) SetText(s string) {
	t.MustWritable()
	t.text = s
}

// SetFormat replaces the format bitmask.
func (t *Text) SetFormat(f TextFormat) {
	t.MustWritable()
	t.format = f
}

// SetStyle replaces the inline style string.
func (t *Text) SetStyle(s string) {
	t.MustWritable()
	t.style = s
}

// IsInline implements Node.
func (t *Text) IsInline() bool { return true }

// Clone implements Node.
func (t *Text) Clone() Node {
	return &Text{Base: t.CloneBase(), text: t.text, format: t.format, style: t.style}
}

// SplitGraphemes splits s before the offset-th grapheme cluster.
// Offsets outside [0, count] are clamped.
func SplitGraphemes(s string, offset int) (string, string) {
	if offset <= 0 {
		return "", s
	}
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() {
		if n == offset {
			from, _ := g.Positions()
			return s[:from], s[from:]
		}
		n++
	}
	return s, ""
}

// LineBreak is a hard line break inside a block.
type LineBreak struct {
	Base
}

// NewLineBreak returns a line break node.
func NewLineBreak() *LineBreak {
	return &LineBreak{Base: NewBase(TypeLineBreak)}
}

// TextContent implements TextContenter.
func (l *LineBreak) TextContent() string { return "\n" }

// IsInline implements Node.
func (l *LineBreak) IsInline() bool { return true }

// Clone implements Node.
func (l *LineBreak) Clone() Node {
	return &LineBreak{Base: l.CloneBase()}
}

// Mention is an inline reference to an external entity.
type Mention struct {
	Base
	kind  string
	id    string
	label string
}

// NewMention returns a mention of the entity id of the given kind.
func NewMention(kind, id, label string) *Mention {
	return &Mention{Base: NewBase(TypeMention), kind: kind, id: id, label: label}
}

// Kind returns the kind of the referenced entity (for example "user").
func (m *Mention) Kind() string { return m.kind }

// ID returns the referenced entity's identifier.
func (m *Mention) ID() string { return m.id }

// Label returns the display label.
func (m *Mention) Label() string { return m.label }

// SetLabel replaces the display label.
func (m *Mention) SetLabel(s string) {
	m.MustWritable()
	m.label = s
}

// TextContent implements TextContenter.
func (m *Mention) TextContent() string { return m.label }

// IsInline implements Node.
func (m *Mention) IsInline() bool { return true }

// Clone implements Node.
func (m *Mention) Clone() Node {
	c := *m
	c.Base = m.CloneBase()
	return &c
}

// Divider is a horizontal rule between blocks.
type Divider struct {
	Base
}

// NewDivider returns a divider node.
func NewDivider() *Divider {
	return &Divider{Base: NewBase(TypeDivider)}
}

// Clone implements Node.
func (d *Divider) Clone() Node {
	return &Divider{Base: d.CloneBase()}
}
