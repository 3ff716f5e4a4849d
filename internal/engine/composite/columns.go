package composite

import (
	"strings"

	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// TypeColumns is the type tag of multi-column blocks.
const TypeColumns node.Type = "columns"

// Columns is a block of side-by-side columns, each holding its own
// nested editor. Widths are fractions of the block width.
type Columns struct {
	node.Base
	widths  []float64
	editors []*editor.Editor
}

// NewColumns creates a block with count columns of equal width. The count
// is clamped to [1, MaxColumns].
func NewColumns(owner *editor.Editor, count int) *Columns {
	count = min(max(count, 1), MaxColumns)
	c := &Columns{Base: node.NewBase(TypeColumns), widths: EqualWidths(count)}
	for range count {
		c.editors = append(c.editors, newColumnEditor(owner))
	}
	return c
}

func newColumnEditor(owner *editor.Editor) *editor.Editor {
	return owner.NewNested(editor.WithName("column"))
}

// Count returns the number of columns.
func (c *Columns) Count() int { return len(c.editors) }

// Widths returns a copy of the column widths.
func (c *Columns) Widths() []float64 { return append([]float64(nil), c.widths...) }

// Editor returns the nested editor of column i, or nil.
func (c *Columns) Editor(i int) *editor.Editor {
	if i < 0 || i >= len(c.editors) {
		return nil
	}
	return c.editors[i]
}

// Editors returns the nested editors in column order.
func (c *Columns) Editors() []*editor.Editor {
	return append([]*editor.Editor(nil), c.editors...)
}

// SetWidths stores w verbatim. It returns false, leaving the widths
// unchanged, when len(w) differs from the column count.
func (c *Columns) SetWidths(w []float64) bool {
	if len(w) != len(c.editors) {
		return false
	}
	c.MustWritable()
	c.widths = append([]float64(nil), w...)
	return true
}

// AddColumnAt inserts a fresh column at index (clamped; -1 appends) and
// resets all widths to equal fractions. It returns false when the block
// already has MaxColumns columns.
func (c *Columns) AddColumnAt(owner *editor.Editor, index int) bool {
	if len(c.editors) >= MaxColumns {
		return false
	}
	c.MustWritable()
	if index < 0 || index > len(c.editors) {
		index = len(c.editors)
	}
	ed := newColumnEditor(owner)
	c.editors = append(c.editors[:index:index], append([]*editor.Editor{ed}, c.editors[index:]...)...)
	c.widths = EqualWidths(len(c.editors))
	return true
}

// removeColumn drops column i and renormalizes the remaining widths.
// The detached editor is returned for release by the caller.
func (c *Columns) removeColumn(i int) *editor.Editor {
	c.MustWritable()
	ed := c.editors[i]
	c.editors = append(c.editors[:i:i], c.editors[i+1:]...)
	widths := append(c.widths[:i:i], c.widths[i+1:]...)
	c.widths = NormalizeWidths(widths)
	return ed
}

// NestedEditors returns the column editors in order.
func (c *Columns) NestedEditors() []*editor.Editor { return c.Editors() }

// TextContent joins the text of every column.
func (c *Columns) TextContent() string {
	parts := make([]string, 0, len(c.editors))
	for _, ed := range c.editors {
		parts = append(parts, ed.State().TextContent(node.RootKey))
	}
	return strings.Join(parts, "\n\n")
}

// Clone implements node.Node. Clones share the nested editors.
func (c *Columns) Clone() node.Node {
	return &Columns{
		Base:    c.CloneBase(),
		widths:  append([]float64(nil), c.widths...),
		editors: append([]*editor.Editor(nil), c.editors...),
	}
}

// Release closes the nested editors.
func (c *Columns) Release() {
	for _, ed := range c.editors {
		ed.Close()
	}
}

// RemoveColumnAt removes column index of the columns block key. The
// column's editor is closed when the update commits. It returns false,
// changing nothing, when the block has fewer than two columns or the
// index is out of range.
func RemoveColumnAt(tx *editor.Txn, key node.Key, index int) bool {
	c, ok := editor.NodeAs[*Columns](tx, key)
	if !ok || c.Count() < 2 || index < 0 || index >= c.Count() {
		return false
	}
	w, err := editor.WritableAs[*Columns](tx, key)
	if err != nil {
		return false
	}
	ed := w.removeColumn(index)
	tx.OnCommit(ed.Close)
	return true
}
