package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/engine/composite"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

func newAttached(t *testing.T) *editor.Editor {
	t.Helper()
	ed := editor.New(editor.WithRegistry(composite.NewRegistry()))
	NewDefaultRegistry().Attach(ed)
	return ed
}

// typeInto sets the text of the first paragraph, the way a keystroke
// update would.
func typeInto(t *testing.T, ed *editor.Editor, texts ...string) {
	t.Helper()
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		p := tx.Root().FirstChild()
		for _, s := range texts {
			if err := tx.Append(p, node.NewText(s)); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestDividerShortcut(t *testing.T) {
	ed := newAttached(t)
	typeInto(t, ed, "---")

	st := ed.State()
	children := st.Children(node.RootKey)
	require.Len(t, children, 2)
	assert.Equal(t, node.TypeDivider, children[0].Type())
	p, ok := children[1].(*node.Paragraph)
	require.True(t, ok)
	assert.Equal(t, 0, p.ChildCount())

	sel, ok := st.Selection()
	require.True(t, ok)
	assert.Equal(t, editor.Caret(p.Key(), 0), sel)
}

func TestDividerMatching(t *testing.T) {
	r := NewDefaultRegistry()
	tests := []struct {
		text string
		want bool
	}{
		{"---", true},
		{"-----", true},
		{"---  ", true},
		{"－－－", true}, // fullwidth hyphen-minus
		{"--", false},
		{"a---", false},
		{" ---", false},
		{"--- x", false},
	}
	for _, tt := range tests {
		rule, ok := r.Match(tt.text)
		assert.Equal(t, tt.want, ok && rule.Name == "divider", "%q", tt.text)
	}
}

func TestSectionMatching(t *testing.T) {
	r := NewDefaultRegistry()
	for text, want := range map[string]bool{
		">>section":    true,
		">>section \t": true,
		"  >>section":  true,
		"\t>>section ": true,
		">>sections":   false,
		"> >section":   false,
		">section":     false,
		"x>>section":   false,
	} {
		rule, ok := r.Match(text)
		assert.Equal(t, want, ok && rule.Name == "smart-section", "%q", text)
	}
}

func TestSmartSectionShortcut(t *testing.T) {
	ed := newAttached(t)
	typeInto(t, ed, ">>sec", "tion ")

	st := ed.State()
	children := st.Children(node.RootKey)
	require.Len(t, children, 2)
	sec, ok := children[0].(*composite.SmartSection)
	require.True(t, ok)
	assert.True(t, sec.Expanded())
	assert.True(t, sec.Header().State().IsEmpty())
	assert.True(t, sec.Content().State().IsEmpty())
	assert.Same(t, ed, sec.Content().Parent())

	sel, ok := st.Selection()
	require.True(t, ok)
	assert.Equal(t, children[1].Key(), sel.Focus.Key)
}

func TestIndentedSmartSectionShortcut(t *testing.T) {
	ed := newAttached(t)
	typeInto(t, ed, "  >>section")

	children := ed.State().Children(node.RootKey)
	require.Len(t, children, 2)
	_, ok := children[0].(*composite.SmartSection)
	assert.True(t, ok, "leading whitespace is trimmed before matching")
}

func TestShortcutInNestedEditor(t *testing.T) {
	ed := newAttached(t)
	var cols *composite.Columns
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		cols = composite.NewColumns(tx.Editor(), 2)
		return tx.InsertBlock(cols)
	}))

	column := cols.Editor(0)
	typeInto(t, column, "----")
	assert.Equal(t, node.TypeDivider, column.State().Children(node.RootKey)[0].Type())
}

func TestShortcutNotAppliedInSectionHeader(t *testing.T) {
	ed := newAttached(t)
	sec := composite.NewSmartSection(ed)
	typeInto(t, sec.Header(), "---")
	assert.Equal(t, "---", sec.Header().State().TextContent(node.RootKey))
}

func TestParagraphWithMentionDoesNotTrigger(t *testing.T) {
	ed := newAttached(t)
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		return tx.Append(tx.Root().FirstChild(), node.NewMention("tag", "1", "---"))
	}))
	assert.Equal(t, node.TypeParagraph, ed.State().Children(node.RootKey)[0].Type())
}

func TestDetach(t *testing.T) {
	ed := editor.New()
	detach := NewDefaultRegistry().Attach(ed)
	detach()
	typeInto(t, ed, "---")
	assert.Equal(t, node.TypeParagraph, ed.State().Children(node.RootKey)[0].Type())
}

func TestRegister(t *testing.T) {
	r := NewDefaultRegistry()
	err := r.Register(Defaults()[0])
	assert.ErrorIs(t, err, ErrDuplicateRule)
	assert.ErrorIs(t, r.Register(Rule{Name: "x"}), ErrInvalidRule)
	assert.Len(t, r.Rules(), 2)
}

func TestRenderAndExportTextRoundTrip(t *testing.T) {
	r := NewDefaultRegistry()
	ed := editor.New(editor.WithRegistry(composite.NewRegistry()))
	r.Attach(ed)

	typeInto(t, ed, "---")
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		return tx.Append(tx.Root().LastChild(), node.NewText("after"))
	}))

	text := r.ExportText(ed.State())
	assert.Equal(t, "---\nafter", text)

	rendered, ok := r.Render(node.NewDivider())
	require.True(t, ok)
	assert.Equal(t, DividerText, rendered)
	_, ok = r.Render(node.NewQuote())
	assert.False(t, ok)

	// the exported line triggers the same rule again
	rule, ok := r.Match(rendered)
	require.True(t, ok)
	assert.Equal(t, node.TypeDivider, rule.Type)
}

func TestExportTextIncludesNestedEditors(t *testing.T) {
	r := NewDefaultRegistry()
	ed := editor.New(editor.WithRegistry(composite.NewRegistry()))
	var sec *composite.SmartSection
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		require.NoError(t, tx.Clear(node.RootKey))
		sec = composite.NewSmartSection(tx.Editor())
		return tx.Append(node.RootKey, sec)
	}))
	typeInto(t, sec.Header(), "Summary")
	typeInto(t, sec.Content(), "Body")

	assert.Equal(t, ">>section\nSummary\nBody", r.ExportText(ed.State()))
}
