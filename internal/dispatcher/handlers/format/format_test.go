package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/dispatcher/handler"
	"github.com/dshills/folio/internal/dispatcher/handlers/format"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

func setup(t *testing.T) (*dispatcher.Dispatcher, *editor.Editor) {
	t.Helper()
	ed := editor.New()
	d := dispatcher.NewWithDefaults()
	d.SetEditor(ed)
	require.NoError(t, format.NewHandler().Register(d))
	return d, ed
}

// seed replaces the document with one paragraph per string and returns the
// text node keys.
func seed(t *testing.T, ed *editor.Editor, texts ...string) []node.Key {
	t.Helper()
	var keys []node.Key
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		if err := tx.Clear(node.RootKey); err != nil {
			return err
		}
		for _, s := range texts {
			p := node.NewParagraph()
			if err := tx.Append(node.RootKey, p); err != nil {
				return err
			}
			tn := node.NewText(s)
			if err := tx.Append(p.Key(), tn); err != nil {
				return err
			}
			keys = append(keys, tn.Key())
		}
		return nil
	}))
	return keys
}

func selectRange(t *testing.T, ed *editor.Editor, a, f editor.Point) {
	t.Helper()
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		tx.SetSelection(&editor.Selection{Anchor: a, Focus: f})
		return nil
	}))
}

// runs returns the text and format of each text node in document order.
func runs(ed *editor.Editor) []string {
	var out []string
	ed.State().Walk(func(n node.Node, _ int) bool {
		if t, ok := n.(*node.Text); ok {
			out = append(out, t.Text()+"|"+t.Format().String())
		}
		return true
	})
	return out
}

func TestRegisterDeclaresAllCommands(t *testing.T) {
	d, _ := setup(t)
	for _, name := range []string{
		"formatText", "formatElement", "indent", "outdent", "keyTab", "insertParagraph",
	} {
		assert.True(t, d.HasCommand(name), name)
	}
}

func TestFormatTextWithinOneNode(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "hello world")
	selectRange(t, ed, editor.Point{Key: keys[0], Offset: 6}, editor.Point{Key: keys[0], Offset: 11})

	r := dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "bold"})
	require.True(t, r.IsOK(), "status %s: %v", r.Status, r.Error)

	got := runs(ed)
	require.Len(t, got, 2)
	assert.Equal(t, "hello |", got[0])
	assert.Contains(t, got[1], "world|")
	assert.Contains(t, got[1], "bold")

	sel, ok := ed.State().Selection()
	require.True(t, ok)
	assert.Equal(t, 0, sel.Anchor.Offset)
	assert.Equal(t, 5, sel.Focus.Offset)
	assert.Equal(t, sel.Anchor.Key, sel.Focus.Key)
}

func TestFormatTextToggleOff(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "abc")
	selectRange(t, ed, editor.Point{Key: keys[0]}, editor.Point{Key: keys[0], Offset: 3})

	require.True(t, dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "italic"}).IsOK())
	require.True(t, dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "italic"}).IsOK())

	assert.Equal(t, []string{"abc|"}, runs(ed))
}

func TestFormatTextAcrossParagraphsBackward(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "one", "two", "three")
	// focus before anchor
	selectRange(t, ed, editor.Point{Key: keys[2], Offset: 2}, editor.Point{Key: keys[0], Offset: 1})

	r := dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "underline"})
	require.True(t, r.IsOK())

	got := runs(ed)
	require.Len(t, got, 5)
	assert.Equal(t, "o|", got[0])
	assert.Contains(t, got[1], "ne|underline")
	assert.Contains(t, got[2], "two|underline")
	assert.Contains(t, got[3], "th|underline")
	assert.Equal(t, "ree|", got[4])

	sel, _ := ed.State().Selection()
	assert.Equal(t, 2, sel.Anchor.Offset, "direction is preserved")
	assert.Equal(t, 0, sel.Focus.Offset)
}

func TestFormatTextMixedAddsToAll(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "ab", "cd")
	selectRange(t, ed, editor.Point{Key: keys[0]}, editor.Point{Key: keys[0], Offset: 2})
	require.True(t, dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "code"}).IsOK())

	selectRange(t, ed, editor.Point{Key: keys[0]}, editor.Point{Key: keys[1], Offset: 2})
	require.True(t, dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "code"}).IsOK())

	for _, r := range runs(ed) {
		assert.Contains(t, r, "code")
	}
}

func TestFormatTextRejections(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "abc")

	r := dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "bold"})
	assert.Equal(t, handler.StatusNoOp, r.Status, "no selection")

	selectRange(t, ed, editor.Point{Key: keys[0], Offset: 1}, editor.Point{Key: keys[0], Offset: 1})
	before := ed.State().Version()
	r = dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "bold"})
	assert.Equal(t, handler.StatusNoOp, r.Status, "collapsed selection")
	assert.Equal(t, before, ed.State().Version())

	r = dispatcher.Dispatch(d, format.FormatText, format.FormatTextPayload{Format: "blink"})
	require.True(t, r.IsError())
	assert.ErrorIs(t, r.Error, format.ErrUnknownFormat)
}

func TestFormatElement(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "a", "b", "c")
	selectRange(t, ed, editor.Point{Key: keys[0]}, editor.Point{Key: keys[1], Offset: 1})

	r := dispatcher.Dispatch(d, format.FormatElement, format.FormatElementPayload{Align: "center"})
	require.True(t, r.IsOK())

	blocks := ed.State().Children(node.RootKey)
	for i, want := range []node.Align{node.AlignCenter, node.AlignCenter, node.AlignNone} {
		el, ok := node.AsElement(blocks[i])
		require.True(t, ok)
		assert.Equal(t, want, el.Align(), "block %d", i)
	}

	r = dispatcher.Dispatch(d, format.FormatElement, format.FormatElementPayload{Align: "center"})
	assert.Equal(t, handler.StatusNoOp, r.Status, "already aligned")

	r = dispatcher.Dispatch(d, format.FormatElement, format.FormatElementPayload{Align: "diagonal"})
	assert.ErrorIs(t, r.Error, format.ErrUnknownAlign)
}

func indentOf(t *testing.T, ed *editor.Editor, i int) int {
	t.Helper()
	el, ok := node.AsElement(ed.State().Children(node.RootKey)[i])
	require.True(t, ok)
	return el.Indent()
}

func TestIndentOutdentClamp(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "a")
	selectRange(t, ed, editor.Point{Key: keys[0]}, editor.Point{Key: keys[0]})

	r := dispatcher.Dispatch(d, format.Outdent, struct{}{})
	assert.Equal(t, handler.StatusNoOp, r.Status, "indent cannot go below zero")

	for range node.MaxIndent + 2 {
		dispatcher.Dispatch(d, format.Indent, struct{}{})
	}
	assert.Equal(t, node.MaxIndent, indentOf(t, ed, 0))

	require.True(t, dispatcher.Dispatch(d, format.Outdent, struct{}{}).IsOK())
	assert.Equal(t, node.MaxIndent-1, indentOf(t, ed, 0))
}

func TestKeyTabDefersIndent(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "a")

	r := dispatcher.Dispatch(d, format.KeyTab, format.KeyTabPayload{})
	assert.Equal(t, handler.StatusUnhandled, r.Status, "no selection passes")

	selectRange(t, ed, editor.Point{Key: keys[0]}, editor.Point{Key: keys[0]})
	r = dispatcher.Dispatch(d, format.KeyTab, format.KeyTabPayload{})
	require.True(t, r.IsOK())
	assert.Equal(t, 1, indentOf(t, ed, 0))
	assert.Zero(t, ed.Pending())

	r = dispatcher.Dispatch(d, format.KeyTab, format.KeyTabPayload{Shift: true})
	require.True(t, r.IsOK())
	assert.Equal(t, 0, indentOf(t, ed, 0))
}

func TestInsertParagraph(t *testing.T) {
	d, ed := setup(t)
	keys := seed(t, ed, "first", "last")
	selectRange(t, ed, editor.Point{Key: keys[0], Offset: 2}, editor.Point{Key: keys[0], Offset: 2})

	r := dispatcher.Dispatch(d, format.InsertParagraph, format.InsertParagraphPayload{Text: "middle"})
	require.True(t, r.IsOK())
	key := node.Key(r.GetDataString("key"))

	blocks := ed.State().Children(node.RootKey)
	require.Len(t, blocks, 3)
	assert.Equal(t, key, blocks[1].Key())
	assert.Equal(t, "middle", ed.State().TextContent(key))

	sel, _ := ed.State().Selection()
	assert.Equal(t, 6, sel.Focus.Offset)

	r = dispatcher.Dispatch(d, format.InsertParagraph, format.InsertParagraphPayload{})
	require.True(t, r.IsOK())
	empty := node.Key(r.GetDataString("key"))
	sel, _ = ed.State().Selection()
	assert.Equal(t, editor.Caret(empty, 0), sel)
}
