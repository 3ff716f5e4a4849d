package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/folio/internal/engine/composite"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
	"github.com/dshills/folio/internal/style"
)

func newEditor() *editor.Editor {
	return editor.New(editor.WithRegistry(composite.NewRegistry()))
}

func appendText(tx *editor.Txn, parent node.Key, s string) error {
	return tx.Append(parent, node.NewText(s))
}

func buildRichDocument(t *testing.T) *editor.Editor {
	t.Helper()
	ed := newEditor()
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		require.NoError(t, tx.Clear(node.RootKey))

		h := node.NewHeading(node.H2)
		h.SetAlign(node.AlignCenter)
		require.NoError(t, tx.Append(node.RootKey, h))
		require.NoError(t, appendText(tx, h.Key(), "Title"))

		p := node.NewParagraph()
		p.SetIndent(1)
		p.SetDirection(node.DirectionLTR)
		require.NoError(t, tx.Append(node.RootKey, p))
		bold := node.NewText("bold")
		bold.SetFormat(node.FormatBold | node.FormatItalic)
		bold.SetStyle("color: red")
		link := node.NewHyperlink(node.LinkAttrs{URL: "https://example.com", Target: "_blank"})
		require.NoError(t, tx.Append(p.Key(), bold, node.NewLineBreak(), link, node.NewMention("user", "7", "@bo")))
		require.NoError(t, appendText(tx, link.Key(), "site"))

		q := node.NewQuote()
		require.NoError(t, tx.Append(node.RootKey, q))
		require.NoError(t, appendText(tx, q.Key(), "quoted"))
		require.NoError(t, tx.Append(node.RootKey, node.NewDivider()))

		cols := composite.NewColumns(tx.Editor(), 2)
		require.True(t, cols.SetWidths([]float64{0.4, 0.6}))
		require.NoError(t, tx.Append(node.RootKey, cols))
		require.NoError(t, cols.Editor(1).Update(func(ctx *editor.Txn) error {
			return appendText(ctx, ctx.Root().FirstChild(), "right column")
		}))

		cards := composite.NewCards(tx.Editor(), 2)
		cards.SetDefaultStyle(&composite.StylePatch{Background: style.Str(style.BackgroundSubtle)})
		cards.SetCardStyleAt(1, &composite.StylePatch{Corner: style.Str(style.CornerLarge)})
		cards.SetCardMinHeightAt(0, 200)
		require.NoError(t, tx.Append(node.RootKey, cards))

		sec := composite.NewSmartSection(tx.Editor())
		sec.SetExpanded(false)
		require.NoError(t, tx.Append(node.RootKey, sec))
		require.NoError(t, sec.Header().Update(func(ctx *editor.Txn) error {
			return appendText(ctx, ctx.Root().FirstChild(), "Details")
		}))
		require.NoError(t, sec.Content().Update(func(ctx *editor.Txn) error {
			return ctx.Append(node.RootKey, node.NewDivider())
		}))
		return nil
	}))
	return ed
}

func decode(t *testing.T, data []byte) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestRoundTrip(t *testing.T) {
	ed := buildRichDocument(t)
	first, err := ExportEditor(ed)
	require.NoError(t, err)

	imported, report, err := NewEditor(first, editor.WithRegistry(composite.NewRegistry()))
	require.NoError(t, err)
	assert.True(t, report.Clean(), report.String())

	second, err := ExportEditor(imported)
	require.NoError(t, err)
	if diff := cmp.Diff(decode(t, first), decode(t, second)); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
	assert.Equal(t, ed.State().TextContent(node.RootKey), imported.State().TextContent(node.RootKey))
	assert.NoError(t, imported.State().Validate())
}

func TestExportFormat(t *testing.T) {
	ed := buildRichDocument(t)
	out, err := ExportEditor(ed)
	require.NoError(t, err)

	doc := gjson.ParseBytes(out)
	assert.Equal(t, "root", doc.Get("root.type").String())
	assert.Equal(t, int64(1), doc.Get("root.version").Int())

	h := doc.Get("root.children.0")
	assert.Equal(t, "heading", h.Get("type").String())
	assert.Equal(t, "h2", h.Get("tag").String())
	assert.Equal(t, "center", h.Get("format").String())
	assert.Equal(t, "Title", h.Get("children.0.text").String())

	text := doc.Get("root.children.1.children.0")
	assert.Equal(t, int64(node.FormatBold|node.FormatItalic), text.Get("format").Int())
	assert.Equal(t, "color: red", text.Get("style").String())
	assert.False(t, text.Get("children").Exists())

	cols := doc.Get(`root.children.#(type=="columns")`)
	assert.Equal(t, int64(2), cols.Get("columnCount").Int())
	assert.Equal(t, "[0.4,0.6]", cols.Get("widths").Raw)
	assert.Equal(t, "right column", cols.Get("columnEditors.1.root.children.0.children.0.text").String())

	cards := doc.Get(`root.children.#(type=="cards")`)
	assert.Equal(t, "subtle", cards.Get("defaultStyle.background").String())
	assert.Equal(t, int64(200), cards.Get("cards.0.minHeightPx").Int())
	assert.False(t, cards.Get("cards.0.styleOverrides").Exists())
	assert.Equal(t, "lg", cards.Get("cards.1.styleOverrides.corner").String())

	sec := doc.Get(`root.children.#(type=="smart-section")`)
	assert.False(t, sec.Get("isExpanded").Bool())
	assert.True(t, sec.Get("isExpanded").Exists())
	assert.Equal(t, "Details", sec.Get("headerEditor.root.children.0.children.0.text").String())
	assert.Equal(t, "divider", sec.Get("contentEditor.root.children.1.type").String())
}

func TestExportPretty(t *testing.T) {
	ed := newEditor()
	out, err := ExportEditor(ed, WithIndent("  "))
	require.NoError(t, err)
	assert.True(t, gjson.ValidBytes(out))
	assert.Contains(t, string(out), "\n  \"root\"")

	compact, err := ExportEditor(ed)
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")
}

func TestImportInvalidInputSubstitutesEmptyDocument(t *testing.T) {
	tests := map[string]string{
		"garbage":       "not json",
		"empty":         "",
		"no root":       `{"doc": {}}`,
		"empty root":    `{"root": {"type": "root", "children": []}}`,
		"root is array": `{"root": []}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			ed := newEditor()
			report, err := Import(ed, []byte(in))
			require.NoError(t, err)
			assert.True(t, report.Substituted)
			assert.NotEmpty(t, report.Reason)
			assert.True(t, ed.State().IsEmpty())
			assert.False(t, report.Clean())
		})
	}
}

func TestImportSkipsUnknownTypes(t *testing.T) {
	in := `{"root":{"type":"root","version":1,"children":[
		{"type":"paragraph","version":1,"children":[{"type":"text","version":1,"text":"keep"}]},
		{"type":"widget","version":1,"children":[{"type":"text","text":"lost"}]},
		{"type":"paragraph","children":[{"type":"text","text":"also"},{"type":"sparkle"}]}
	]}}`
	ed := newEditor()
	report, err := Import(ed, []byte(in))
	require.NoError(t, err)

	assert.Equal(t, "keep\n\nalso", ed.State().TextContent(node.RootKey))
	require.Len(t, report.Unknown, 2)
	assert.Equal(t, Issue{Path: "root.children.1", Type: "widget"}, report.Unknown[0])
	assert.Equal(t, "root.children.2.children.1", report.Unknown[1].Path)
	assert.Equal(t, 4, report.Nodes)
}

func TestImportReplacesLegacyLinks(t *testing.T) {
	in := `{"root":{"type":"root","children":[
		{"type":"paragraph","children":[
			{"type":"link","url":"https://old.example","rel":"nofollow","children":[{"type":"text","text":"old"}]}
		]}
	]}}`
	ed := newEditor()
	report, err := Import(ed, []byte(in))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Replaced[node.TypeLink])

	st := ed.State()
	p := st.Children(node.RootKey)[0]
	link, ok := st.Children(p.Key())[0].(*node.Hyperlink)
	require.True(t, ok)
	assert.Equal(t, "https://old.example", link.Attrs().URL)
	assert.Equal(t, "nofollow", link.Attrs().Rel)
	assert.Equal(t, "old", st.TextContent(link.Key()))

	out, err := ExportEditor(ed)
	require.NoError(t, err)
	assert.Equal(t, "hyperlink", gjson.GetBytes(out, "root.children.0.children.0.type").String())
}

func TestImportWithoutReplacementKeepsLegacyLinks(t *testing.T) {
	in := `{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"link","url":"u"}]}]}}`
	ed := editor.New()
	report, err := Import(ed, []byte(in))
	require.NoError(t, err)
	assert.Empty(t, report.Replaced)

	st := ed.State()
	p := st.Children(node.RootKey)[0]
	_, ok := st.Children(p.Key())[0].(*node.Link)
	assert.True(t, ok)
}

func TestImportZeroColumnsBecomesParagraph(t *testing.T) {
	in := `{"root":{"type":"root","children":[{"type":"columns","columnCount":0,"widths":[],"columnEditors":[]}]}}`
	ed := newEditor()
	_, err := Import(ed, []byte(in))
	require.NoError(t, err)
	assert.True(t, ed.State().IsEmpty())
}

func TestImportRepairsColumnWidths(t *testing.T) {
	in := `{"root":{"type":"root","children":[{"type":"columns","columnCount":3,"widths":[0.9,0.1],
		"columnEditors":[{"root":{"type":"root","children":[]}},{},{"root":{"type":"root","children":[{"type":"paragraph"}]}}]}]}}`
	ed := newEditor()
	_, err := Import(ed, []byte(in))
	require.NoError(t, err)

	cols, ok := ed.State().Children(node.RootKey)[0].(*composite.Columns)
	require.True(t, ok)
	assert.Equal(t, 3, cols.Count())
	assert.True(t, composite.ValidWidths(cols.Widths()))
	for _, c := range cols.Editors() {
		assert.True(t, c.State().IsEmpty())
	}
}

func TestImportEnforcesHeaderPolicy(t *testing.T) {
	in := `{"root":{"type":"root","children":[{"type":"smart-section","isExpanded":true,
		"headerEditor":{"root":{"type":"root","children":[
			{"type":"quote","children":[{"type":"text","text":"no quotes"}]},
			{"type":"paragraph","children":[{"type":"text","text":"Header"}]}
		]}},
		"contentEditor":{"root":{"type":"root","children":[{"type":"quote","children":[]}]}}}]}}`
	ed := newEditor()
	report, err := Import(ed, []byte(in))
	require.NoError(t, err)

	require.Len(t, report.Rejected, 1)
	assert.Equal(t, node.TypeQuote, report.Rejected[0].Type)
	assert.True(t, strings.HasPrefix(report.Rejected[0].Path, "root.children.0"))

	sec, ok := ed.State().Children(node.RootKey)[0].(*composite.SmartSection)
	require.True(t, ok)
	assert.Equal(t, "Header", sec.Header().State().TextContent(node.RootKey))
	assert.Equal(t, node.TypeQuote, sec.Content().State().Children(node.RootKey)[0].Type())
}

func TestImportSkipsTransformsAndTags(t *testing.T) {
	ed := newEditor()
	calls := 0
	ed.RegisterTransform(node.TypeParagraph, func(*editor.Txn, node.Node) error {
		calls++
		return nil
	})
	var tags []string
	ed.RegisterUpdateListener(func(ev editor.UpdateEvent) { tags = ev.Tags })

	_, err := Import(ed, []byte(`{"root":{"type":"root","children":[{"type":"paragraph"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, []string{TagImport}, tags)
}

func TestImportIntoClosedEditorFails(t *testing.T) {
	ed := newEditor()
	ed.Close()
	_, err := Import(ed, []byte(`{"root":{"type":"root","children":[{"type":"paragraph"}]}}`))
	assert.ErrorIs(t, err, editor.ErrClosed)
}

func TestImportReplacesPreviousContentAndReleasesComposites(t *testing.T) {
	ed := buildRichDocument(t)
	var sec *composite.SmartSection
	for _, n := range ed.State().Children(node.RootKey) {
		if s, ok := n.(*composite.SmartSection); ok {
			sec = s
		}
	}
	require.NotNil(t, sec)

	_, err := Import(ed, []byte(`{"root":{"type":"root","children":[{"type":"divider"}]}}`))
	require.NoError(t, err)
	assert.True(t, sec.Header().Closed())
	assert.Equal(t, 1, ed.State().Root().ChildCount())
}

func TestExportUnknownTypeFails(t *testing.T) {
	ed := newEditor()
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		return tx.InsertBlock(composite.NewColumns(tx.Editor(), 2))
	}))
	_, err := Export(ed.State(), editor.DefaultRegistry())
	assert.ErrorIs(t, err, ErrUnknownType)
}
