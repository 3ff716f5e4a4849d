package node

// LinkAttrs are the attributes shared by link-like elements.
type LinkAttrs struct {
	URL    string
	Target string
	Rel    string
	Title  string
}

// Link is the legacy inline link element. Registries normally carry a
// replacement rule that turns it into a Hyperlink on import.
type Link struct {
	ElementBase
	attrs LinkAttrs
}

// NewLink returns an empty link element.
func NewLink(attrs LinkAttrs) *Link {
	return &Link{ElementBase: NewElementBase(TypeLink), attrs: attrs}
}

// Attrs returns the link attributes.
func (l *Link) Attrs() LinkAttrs { return l.attrs }

// SetAttrs replaces the link attributes.
func (l *Link) SetAttrs(a LinkAttrs) {
	l.MustWritable()
	l.attrs = a
}

// IsInline implements Node.
func (l *Link) IsInline() bool { return true }

// Clone implements Node.
func (l *Link) Clone() Node {
	return &Link{ElementBase: l.CloneElement(), attrs: l.attrs}
}

// Hyperlink is the inline link element used by current documents.
type Hyperlink struct {
	ElementBase
	attrs LinkAttrs
}

// NewHyperlink returns an empty hyperlink element.
func NewHyperlink(attrs LinkAttrs) *Hyperlink {
	return &Hyperlink{ElementBase: NewElementBase(TypeHyperlink), attrs: attrs}
}

// Attrs returns the link attributes.
func (h *Hyperlink) Attrs() LinkAttrs { return h.attrs }

// SetAttrs replaces the link attributes.
func (h *Hyperlink) SetAttrs(a LinkAttrs) {
	h.MustWritable()
	h.attrs = a
}

// IsInline implements Node.
func (h *Hyperlink) IsInline() bool { return true }

// Clone implements Node.
func (h *Hyperlink) Clone() Node {
	return &Hyperlink{ElementBase: h.CloneElement(), attrs: h.attrs}
}

// HyperlinkFromLink migrates a legacy link into a hyperlink. Children are
// not carried: the caller re-attaches them under the new node.
func HyperlinkFromLink(n Node) Node {
	l, ok := n.(*Link)
	if !ok {
		return n
	}
	h := NewHyperlink(l.attrs)
	h.direction = l.direction
	h.align = l.align
	h.indent = l.indent
	return h
}
