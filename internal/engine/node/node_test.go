package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrozenNodeRejectsSetters(t *testing.T) {
	p := NewParagraph()
	p.SetIndent(3)
	Freeze(p)

	assert.True(t, IsFrozen(p))
	assert.PanicsWithValue(t, ErrFrozen, func() { p.SetIndent(1) })
	assert.PanicsWithValue(t, ErrFrozen, func() { p.InsertChildAt(0, "x") })
	assert.PanicsWithValue(t, ErrFrozen, func() { SetParent(p, RootKey) })

	c := p.Clone().(*Paragraph)
	assert.False(t, IsFrozen(c))
	assert.Equal(t, 3, c.Indent())
	c.SetIndent(4)
	assert.Equal(t, 3, p.Indent())
}

func TestCloneDoesNotShareChildren(t *testing.T) {
	p := NewParagraph()
	p.InsertChildAt(0, "a")
	c := p.Clone().(*Paragraph)
	c.InsertChildAt(1, "b")

	assert.Equal(t, []Key{"a"}, p.Children())
	assert.Equal(t, []Key{"a", "b"}, c.Children())
}

func TestElementChildOperations(t *testing.T) {
	q := NewQuote()
	q.InsertChildAt(0, "b")
	q.InsertChildAt(0, "a")
	q.InsertChildAt(99, "c")

	assert.Equal(t, []Key{"a", "b", "c"}, q.Children())
	assert.Equal(t, Key("a"), q.FirstChild())
	assert.Equal(t, Key("c"), q.LastChild())
	assert.Equal(t, 1, q.ChildIndex("b"))
	assert.Equal(t, 1, q.RemoveChild("b"))
	assert.Equal(t, -1, q.RemoveChild("b"))

	q.ClearChildren()
	assert.Equal(t, 0, q.ChildCount())
	assert.Equal(t, Key(""), q.FirstChild())
}

func TestIndentIsClamped(t *testing.T) {
	p := NewParagraph()
	p.SetIndent(-2)
	assert.Equal(t, 0, p.Indent())
	p.SetIndent(MaxIndent + 5)
	assert.Equal(t, MaxIndent, p.Indent())
}

func TestHeadingTag(t *testing.T) {
	h := NewHeading("h9")
	assert.Equal(t, H1, h.Tag())
	h.SetTag(H3)
	assert.Equal(t, H3, h.Tag())
	h.SetTag("bogus")
	assert.Equal(t, H3, h.Tag())
}

func TestTextFormatToggle(t *testing.T) {
	f := TextFormat(0).Toggle(FormatBold)
	assert.True(t, f.Has(FormatBold))

	f = f.Toggle(FormatSubscript)
	f = f.Toggle(FormatSuperscript)
	assert.True(t, f.Has(FormatSuperscript))
	assert.False(t, f.Has(FormatSubscript))

	f = f.Toggle(FormatBold)
	assert.Equal(t, []string{"superscript"}, f.Names())
	assert.Equal(t, "superscript", f.String())
}

func TestParseTextFormat(t *testing.T) {
	f, ok := ParseTextFormat("italic")
	require.True(t, ok)
	assert.Equal(t, FormatItalic, f)

	_, ok = ParseTextFormat("blink")
	assert.False(t, ok)
}

func TestTextLenCountsGraphemes(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"é", 1},
		{"👍🏽ok", 3},
		{"🇩🇪", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewText(tt.text).Len(), tt.text)
	}
}

func TestSplitGraphemes(t *testing.T) {
	tests := []struct {
		name        string
		s           string
		offset      int
		left, right string
	}{
		{"start", "abc", 0, "", "abc"},
		{"middle", "abc", 1, "a", "bc"},
		{"end", "abc", 3, "abc", ""},
		{"past end", "abc", 10, "abc", ""},
		{"combining", "éx", 1, "é", "x"},
		{"negative", "abc", -1, "", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, r := SplitGraphemes(tt.s, tt.offset)
			assert.Equal(t, tt.left, l)
			assert.Equal(t, tt.right, r)
		})
	}
}

func TestInlineness(t *testing.T) {
	assert.True(t, NewText("x").IsInline())
	assert.True(t, NewLineBreak().IsInline())
	assert.True(t, NewMention("user", "1", "@ann").IsInline())
	assert.True(t, NewHyperlink(LinkAttrs{URL: "https://x"}).IsInline())
	assert.False(t, NewParagraph().IsInline())
	assert.False(t, NewDivider().IsInline())

	assert.True(t, IsElement(NewQuote()))
	assert.False(t, IsElement(NewDivider()))
}

func TestHyperlinkFromLink(t *testing.T) {
	l := NewLink(LinkAttrs{URL: "https://example.com", Target: "_blank"})
	l.SetDirection(DirectionRTL)
	l.InsertChildAt(0, "child")

	h, ok := HyperlinkFromLink(l).(*Hyperlink)
	require.True(t, ok)
	assert.Equal(t, TypeHyperlink, h.Type())
	assert.Equal(t, "https://example.com", h.Attrs().URL)
	assert.Equal(t, "_blank", h.Attrs().Target)
	assert.Equal(t, DirectionRTL, h.Direction())
	assert.Equal(t, 0, h.ChildCount())

	p := NewParagraph()
	assert.Same(t, Node(p), HyperlinkFromLink(p))
}

func TestMentionTextContent(t *testing.T) {
	m := NewMention("user", "42", "@ada")
	assert.Equal(t, "@ada", m.TextContent())
	assert.Equal(t, "user", m.Kind())
	assert.Equal(t, "42", m.ID())
}
