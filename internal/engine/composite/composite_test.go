package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
	"github.com/dshills/folio/internal/style"
)

func insertBlock[T node.Node](t *testing.T, ed *editor.Editor, build func(owner *editor.Editor) T) T {
	t.Helper()
	var n T
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		n = build(tx.Editor())
		return tx.InsertBlock(n)
	}))
	cur, ok := ed.State().Node(n.Key())
	require.True(t, ok)
	return cur.(T)
}

func TestNewColumns(t *testing.T) {
	ed := editor.New(editor.WithRegistry(NewRegistry()))
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 3) })

	assert.Equal(t, 3, cols.Count())
	assertValidWidths(t, cols.Widths())
	ids := map[string]bool{}
	for _, c := range cols.Editors() {
		require.NotNil(t, c)
		assert.True(t, c.State().IsEmpty())
		assert.Same(t, ed, c.Parent())
		ids[c.ID()] = true
	}
	assert.Len(t, ids, 3)
	assert.Nil(t, cols.Editor(3))
}

func TestNewColumnsClampsCount(t *testing.T) {
	ed := editor.New()
	assert.Equal(t, 1, NewColumns(ed, 0).Count())
	assert.Equal(t, MaxColumns, NewColumns(ed, 9).Count())
}

func TestSetWidthsRequiresMatchingLength(t *testing.T) {
	ed := editor.New()
	cols := NewColumns(ed, 2)

	assert.False(t, cols.SetWidths([]float64{1}))
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, cols.Widths(), 1e-12)

	assert.True(t, cols.SetWidths([]float64{0.3, 0.7}))
	assert.Equal(t, []float64{0.3, 0.7}, cols.Widths())
}

func TestRemoveColumnAt(t *testing.T) {
	ed := editor.New()
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 3) })
	removed := cols.Editor(1)

	var ok bool
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		ok = RemoveColumnAt(tx, cols.Key(), 1)
		assert.False(t, removed.Closed(), "closed before commit")
		return nil
	}))
	require.True(t, ok)
	assert.True(t, removed.Closed())

	n, _ := ed.State().Node(cols.Key())
	after := n.(*Columns)
	assert.Equal(t, 2, after.Count())
	assertValidWidths(t, after.Widths())
	assert.NotContains(t, after.Editors(), removed)

	// the previous snapshot still holds three columns
	assert.Equal(t, 3, cols.Count())
}

func TestRemoveLastColumnRejected(t *testing.T) {
	ed := editor.New()
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 1) })
	before := ed.State()

	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		assert.False(t, RemoveColumnAt(tx, cols.Key(), 0))
		assert.False(t, RemoveColumnAt(tx, "missing", 0))
		return nil
	}))
	n, _ := ed.State().Node(cols.Key())
	assert.Same(t, cols, n, "node was not copied")
	assert.Equal(t, before.Version()+1, ed.State().Version())
}

func TestRemoveColumnOutOfRangeRejected(t *testing.T) {
	ed := editor.New()
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 2) })
	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		assert.False(t, RemoveColumnAt(tx, cols.Key(), 2))
		assert.False(t, RemoveColumnAt(tx, cols.Key(), -1))
		return nil
	}))
}

func TestAddColumnAt(t *testing.T) {
	ed := editor.New()
	cols := NewColumns(ed, 3)
	first := cols.Editor(0)

	require.True(t, cols.AddColumnAt(ed, 0))
	assert.Equal(t, 4, cols.Count())
	assert.Same(t, first, cols.Editor(1))
	assertValidWidths(t, cols.Widths())

	assert.False(t, cols.AddColumnAt(ed, -1))
}

func TestCardRemovalScenario(t *testing.T) {
	ed := editor.New()
	cards := insertBlock(t, ed, func(o *editor.Editor) *Cards { return NewCards(o, 2) })
	require.Equal(t, 2, cards.Count())

	results := []bool{}
	for range 2 {
		require.NoError(t, ed.Update(func(tx *editor.Txn) error {
			results = append(results, RemoveCardAt(tx, cards.Key(), 0))
			return nil
		}))
	}
	assert.Equal(t, []bool{true, false}, results)

	n, _ := ed.State().Node(cards.Key())
	assert.Equal(t, 1, n.(*Cards).Count())
}

func TestRemovedCardEditorClosedOnCommit(t *testing.T) {
	ed := editor.New()
	cards := insertBlock(t, ed, func(o *editor.Editor) *Cards { return NewCards(o, 2) })
	c0, _ := cards.Card(0)

	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		RemoveCardAt(tx, cards.Key(), 0)
		return nil
	}))
	assert.True(t, c0.Editor().Closed())
}

func TestRemoveCardDiscardedWithFailedUpdate(t *testing.T) {
	ed := editor.New()
	cards := insertBlock(t, ed, func(o *editor.Editor) *Cards { return NewCards(o, 2) })
	c0, _ := cards.Card(0)

	err := ed.Update(func(tx *editor.Txn) error {
		RemoveCardAt(tx, cards.Key(), 0)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, c0.Editor().Closed())
}

func TestCardsStyles(t *testing.T) {
	ed := editor.New()
	cards := NewCards(ed, 2)

	cards.SetDefaultStyle(&StylePatch{Border: style.Str(style.BorderThick)})
	assert.Equal(t, style.BorderThick, cards.DefaultStyle().Border)
	assert.Equal(t, style.CornerMed, cards.DefaultStyle().Corner)

	require.True(t, cards.SetCardStyleAt(1, &StylePatch{Corner: style.Str(style.CornerLarge)}))
	assert.Equal(t, style.CornerLarge, cards.EffectiveStyle(1).Corner)
	assert.Equal(t, style.BorderThick, cards.EffectiveStyle(1).Border)
	assert.Equal(t, style.CornerMed, cards.EffectiveStyle(0).Corner)

	require.True(t, cards.SetCardStyleAt(1, nil))
	c1, _ := cards.Card(1)
	assert.Nil(t, c1.Override())
	assert.False(t, cards.SetCardStyleAt(5, nil))
}

func TestCardMinHeight(t *testing.T) {
	ed := editor.New()
	cards := NewCards(ed, 1)
	c0, _ := cards.Card(0)
	assert.Equal(t, DefaultCardHeight, c0.MinHeight())

	require.True(t, cards.SetCardMinHeightAt(0, 10))
	c0, _ = cards.Card(0)
	assert.Equal(t, MinCardHeight, c0.MinHeight())

	require.True(t, cards.SetCardMinHeightAt(0, 300))
	c0, _ = cards.Card(0)
	assert.Equal(t, 300, c0.MinHeight())
	assert.False(t, cards.SetCardMinHeightAt(1, 300))
}

func TestAddCard(t *testing.T) {
	ed := editor.New()
	cards := NewCards(ed, 0)
	assert.Equal(t, 1, cards.Count())

	assert.Equal(t, 1, cards.AddCard(ed, -1))
	assert.Equal(t, 0, cards.AddCard(ed, 0))
	assert.Equal(t, 3, cards.Count())
}

func TestSmartSectionState(t *testing.T) {
	ed := editor.New()
	s := NewSmartSection(ed)

	assert.True(t, s.Expanded())
	assert.True(t, s.Header().State().IsEmpty())
	assert.True(t, s.Content().State().IsEmpty())

	assert.False(t, s.Toggle())
	assert.True(t, s.Toggle())
	s.SetExpanded(false)
	assert.False(t, s.Expanded())
}

func TestSmartSectionHeaderPolicy(t *testing.T) {
	ed := editor.New()
	s := NewSmartSection(ed)
	header := s.Header()

	err := header.Update(func(tx *editor.Txn) error {
		return tx.Append(node.RootKey, node.NewQuote())
	})
	assert.ErrorIs(t, err, editor.ErrNotAllowed)

	err = header.Update(func(tx *editor.Txn) error {
		return tx.Append(node.RootKey, node.NewText("loose"))
	})
	assert.ErrorIs(t, err, editor.ErrNotAllowed)

	err = header.Update(func(tx *editor.Txn) error {
		p := tx.Root().FirstChild()
		link := node.NewHyperlink(node.LinkAttrs{URL: "https://example.com"})
		if err := tx.Append(p, node.NewText("see "), link); err != nil {
			return err
		}
		if err := tx.Append(link.Key(), node.NewText("docs")); err != nil {
			return err
		}
		return tx.Append(link.Key(), node.NewLineBreak())
	})
	assert.ErrorIs(t, err, editor.ErrNotAllowed)

	require.NoError(t, header.Update(func(tx *editor.Txn) error {
		p := tx.Root().FirstChild()
		return tx.Append(p, node.NewText("Title "), node.NewMention("user", "1", "@ann"))
	}))
	assert.Equal(t, "Title @ann", header.State().TextContent(node.RootKey))

	// content is unconstrained
	require.NoError(t, s.Content().Update(func(tx *editor.Txn) error {
		return tx.Append(node.RootKey, node.NewQuote(), node.NewDivider())
	}))
}

func TestHeaderDoesNotInheritTransforms(t *testing.T) {
	ed := editor.New()
	calls := 0
	ed.RegisterTransform(node.TypeParagraph, func(*editor.Txn, node.Node) error {
		calls++
		return nil
	})
	s := NewSmartSection(ed)

	require.NoError(t, s.Header().Update(func(tx *editor.Txn) error {
		return tx.Append(node.RootKey, node.NewParagraph())
	}))
	assert.Equal(t, 0, calls)

	require.NoError(t, s.Content().Update(func(tx *editor.Txn) error {
		return tx.Append(node.RootKey, node.NewParagraph())
	}))
	assert.Equal(t, 1, calls)
}

func TestDetachReleasesNestedEditors(t *testing.T) {
	ed := editor.New()
	s := insertBlock(t, ed, func(o *editor.Editor) *SmartSection { return NewSmartSection(o) })

	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		return tx.Remove(s.Key())
	}))
	assert.True(t, s.Header().Closed())
	assert.True(t, s.Content().Closed())
}

func TestSetStateRejectsDetachedComposite(t *testing.T) {
	ed := editor.New(editor.WithRegistry(NewRegistry()))
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 2) })
	snapshot := ed.State()

	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		return tx.Remove(cols.Key())
	}))
	require.True(t, cols.Editor(0).Closed())
	current := ed.State()

	err := ed.SetState(snapshot)
	require.ErrorIs(t, err, editor.ErrClosed)
	assert.Same(t, current, ed.State(), "rejected state is not installed")
	_, ok := ed.State().Node(cols.Key())
	assert.False(t, ok)
}

func TestSetStateReleasesOnlyUnreferencedEditors(t *testing.T) {
	ed := editor.New(editor.WithRegistry(NewRegistry()))
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 2) })
	snapshot := ed.State()
	kept := cols.Editors()

	require.NoError(t, ed.Update(func(tx *editor.Txn) error {
		c, err := editor.WritableAs[*Columns](tx, cols.Key())
		if err != nil {
			return err
		}
		c.AddColumnAt(tx.Editor(), -1)
		return nil
	}))
	grown, ok := ed.State().Node(cols.Key())
	require.True(t, ok)
	require.NotSame(t, cols, grown, "writable copy replaces the instance")
	added := grown.(*Columns).Editor(2)

	require.NoError(t, ed.SetState(snapshot))
	assert.True(t, added.Closed(), "editor absent from the restored state is closed")
	for i, c := range kept {
		assert.False(t, c.Closed(), "column %d is shared by the restored instance", i)
	}
	restored, ok := ed.State().Node(cols.Key())
	require.True(t, ok)
	assert.Equal(t, 2, restored.(*Columns).Count())
}

func TestCloseOwnerReleasesComposites(t *testing.T) {
	ed := editor.New()
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 2) })
	ed.Close()
	for _, c := range cols.Editors() {
		assert.True(t, c.Closed())
	}
}

func TestCompositeTextContent(t *testing.T) {
	ed := editor.New()
	cols := insertBlock(t, ed, func(o *editor.Editor) *Columns { return NewColumns(o, 2) })
	require.NoError(t, cols.Editor(0).Update(func(tx *editor.Txn) error {
		return tx.Append(tx.Root().FirstChild(), node.NewText("left"))
	}))
	require.NoError(t, cols.Editor(1).Update(func(tx *editor.Txn) error {
		return tx.Append(tx.Root().FirstChild(), node.NewText("right"))
	}))
	assert.Equal(t, "left\n\nright", cols.TextContent())

	s := NewSmartSection(ed)
	require.NoError(t, s.Header().Update(func(tx *editor.Txn) error {
		return tx.Append(tx.Root().FirstChild(), node.NewText("head"))
	}))
	require.NoError(t, s.Content().Update(func(tx *editor.Txn) error {
		return tx.Append(tx.Root().FirstChild(), node.NewText("body"))
	}))
	assert.Equal(t, "head\n\nbody", s.TextContent())
	s.SetExpanded(false)
	assert.Equal(t, "head", s.TextContent())
}

func TestNewRegistryHasCompositesAndReplacement(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Has(TypeColumns))
	assert.True(t, r.Has(TypeCards))
	assert.True(t, r.Has(TypeSmartSection))

	rep, ok := r.ReplacementFor(node.TypeLink)
	require.True(t, ok)
	assert.Equal(t, node.TypeHyperlink, rep.To)
}
